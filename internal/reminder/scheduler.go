// Package reminder schedules the daily jobs that keep the due set current:
// a rollover at local midnight and an optional review reminder.
package reminder

import (
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-co-op/gocron"

	"github.com/nhle/knowledge-tracker/internal/model"
)

// Kind identifies which job produced a TickMsg.
type Kind int

const (
	KindRollover Kind = iota // The calendar date changed.
	KindReminder             // The configured reminder hour was reached.
)

// String returns the job tag for k.
func (k Kind) String() string {
	switch k {
	case KindRollover:
		return "rollover"
	case KindReminder:
		return "reminder"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TickMsg is a tea.Msg sent each time a job fires.
type TickMsg struct {
	Kind Kind
	At   time.Time
	// Due is the number of cards due at At, when a counter is set.
	Due int
}

// Scheduler wraps a gocron scheduler and forwards job runs to the
// Bubble Tea runtime.
type Scheduler struct {
	cron    *gocron.Scheduler
	tickCh  chan TickMsg
	counter func() int

	mu      gosync.Mutex
	running bool
}

// New registers the rollover job and, when enabled, the reminder job at
// cfg.Hour:00 in loc. counter may be nil.
func New(cfg model.ReminderConfig, loc *time.Location, counter func() int) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}

	s := &Scheduler{
		cron:    gocron.NewScheduler(loc),
		tickCh:  make(chan TickMsg, 4),
		counter: counter,
	}

	if _, err := s.cron.Every(1).Day().At("00:00").Tag(KindRollover.String()).
		Do(s.fire, KindRollover); err != nil {
		return nil, fmt.Errorf("scheduling rollover: %w", err)
	}

	if cfg.Enabled {
		if cfg.Hour < 0 || cfg.Hour > 23 {
			return nil, fmt.Errorf("scheduling reminder: hour %d out of range", cfg.Hour)
		}
		at := fmt.Sprintf("%02d:00", cfg.Hour)
		if _, err := s.cron.Every(1).Day().At(at).Tag(KindReminder.String()).
			Do(s.fire, KindReminder); err != nil {
			return nil, fmt.Errorf("scheduling reminder: %w", err)
		}
	}

	return s, nil
}

// Start runs the jobs in the background and returns a tea.Cmd that
// waits for the first tick.
func (s *Scheduler) Start() tea.Cmd {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	s.cron.StartAsync()
	return s.WaitForNext()
}

// Stop halts all jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
}

// Jobs returns the tags of the registered jobs.
func (s *Scheduler) Jobs() []string {
	var tags []string
	for _, j := range s.cron.Jobs() {
		tags = append(tags, j.Tags()...)
	}
	return tags
}

// NextRun returns when the job of kind k runs next. It is only meaningful
// after Start.
func (s *Scheduler) NextRun(k Kind) (time.Time, bool) {
	for _, j := range s.cron.Jobs() {
		for _, tag := range j.Tags() {
			if tag == k.String() {
				return j.NextRun(), true
			}
		}
	}
	return time.Time{}, false
}

// WaitForNext returns a tea.Cmd that waits for the next tick. Call it
// again after handling a TickMsg to keep listening.
func (s *Scheduler) WaitForNext() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.tickCh
		if !ok {
			return nil
		}
		return msg
	}
}

// fire sends a TickMsg without blocking the job goroutine.
func (s *Scheduler) fire(k Kind) {
	msg := TickMsg{Kind: k, At: time.Now()}
	if s.counter != nil {
		msg.Due = s.counter()
	}

	select {
	case s.tickCh <- msg:
	default:
		// Drop if nobody is listening; the next tick recomputes anyway.
	}
}
