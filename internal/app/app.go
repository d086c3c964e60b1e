package app

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/knowledge-tracker/internal/keys"
	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/quiz"
	"github.com/nhle/knowledge-tracker/internal/reminder"
	"github.com/nhle/knowledge-tracker/internal/srs"
	"github.com/nhle/knowledge-tracker/internal/tracker"
	"github.com/nhle/knowledge-tracker/internal/ui"
	"github.com/nhle/knowledge-tracker/internal/ui/cardform"
	"github.com/nhle/knowledge-tracker/internal/ui/command"
	configview "github.com/nhle/knowledge-tracker/internal/ui/config"
	"github.com/nhle/knowledge-tracker/internal/ui/confirm"
	"github.com/nhle/knowledge-tracker/internal/ui/dashboard"
	helpview "github.com/nhle/knowledge-tracker/internal/ui/help"
	"github.com/nhle/knowledge-tracker/internal/ui/quizview"
	"github.com/nhle/knowledge-tracker/internal/ui/topicdetail"
	"github.com/nhle/knowledge-tracker/internal/ui/topicform"
	"github.com/nhle/knowledge-tracker/internal/ui/topiclist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewTopics
	ViewQuiz
	ViewTopicDetail
	ViewTopicForm
	ViewCardForm
	ViewConfirm
	ViewSettings
	ViewHelp
	ViewCommand
)

// tabs are the top-level views reachable with tab/shift+tab, in order.
var tabs = []struct {
	label string
	view  ViewState
}{
	{"Dashboard", ViewDashboard},
	{"Topics", ViewTopics},
	{"Quiz", ViewQuiz},
}

// recentTopics is how many topics the dashboard lists.
const recentTopics = 5

// Options configures the root model.
type Options struct {
	Config model.AppConfig
	// ConfigPath is where settings edited in the UI are saved.
	ConfigPath string
	LastVisit  time.Time

	// Reminder may be nil, in which case no day rollover is observed.
	Reminder *reminder.Scheduler
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the tracker.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	tracker      *tracker.Tracker
	reminder     *reminder.Scheduler
	keys         *keys.KeyMap
	lastVisit    time.Time
	cfg          model.AppConfig
	configPath   string

	dashboard   dashboard.Model
	topicList   topiclist.Model
	topicDetail topicdetail.Model
	topicForm   topicform.Model
	cardForm    cardform.Model
	quizView    quizview.Model
	confirmView confirm.Model
	configView  configview.Model
	helpView    helpview.Model
	commandView command.Model

	ready      bool
	notice     string
	errMessage string
}

// New creates a new root application model around a loaded tracker.
func New(t *tracker.Tracker, opts Options) Model {
	km := keys.DefaultKeyMap()

	mode, err := quiz.ParseMode(opts.Config.Quiz.DefaultMode)
	if err != nil {
		mode = quiz.ModeDue
	}

	m := Model{
		currentView: ViewDashboard,
		tracker:     t,
		reminder:    opts.Reminder,
		keys:        km,
		lastVisit:   opts.LastVisit,
		cfg:         opts.Config,
		configPath:  opts.ConfigPath,
		dashboard:   dashboard.New(80, 24),
		topicList:   topiclist.New(km, t.Categories(), 80, 24),
		topicDetail: topicdetail.New(km, 80, 24),
		topicForm:   topicform.New(t.Categories(), 80, 24),
		cardForm:    cardform.New(80, 24),
		quizView:    quizview.New(km, t, mode, 80, 24),
		confirmView: confirm.New(80),
		configView:  configview.New(80, 24),
		helpView:    helpview.New(km, 80, 24),
		commandView: command.New(80, 24),
	}
	m.refresh()
	return m
}

// Init starts the reminder jobs.
func (m Model) Init() tea.Cmd {
	if m.reminder == nil {
		return m.topicList.Init()
	}
	return tea.Batch(m.topicList.Init(), m.reminder.Start())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.dashboard.SetSize(w, h)
		m.topicList.SetSize(w, h)
		m.topicDetail.SetSize(w, h)
		m.topicForm.SetSize(w, h)
		m.cardForm.SetSize(w, h)
		m.quizView.SetSize(w, h)
		m.confirmView.SetSize(w, h)
		m.configView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case reminder.TickMsg:
		cmd := m.refresh()
		if !m.quizView.Active() {
			m.quizView.Start()
		}
		if msg.Kind == reminder.KindReminder && msg.Due > 0 {
			m.notice = fmt.Sprintf("%d cards are due for review", msg.Due)
		}
		return m, tea.Batch(cmd, m.reminder.WaitForNext())

	case topiclist.SelectedTopicMsg:
		m.openTopic(msg.TopicID)
		return m, nil

	case topicdetail.BackMsg:
		m.currentView = ViewTopics
		return m, nil

	case topicdetail.EditTopicMsg:
		return m, m.startEditTopic(msg.TopicID)

	case topicdetail.DeleteTopicMsg:
		return m, m.confirmDeleteTopic(msg.TopicID)

	case topicdetail.AddCardMsg:
		return m, m.startCreateCard(msg.TopicID)

	case topicdetail.EditCardMsg:
		return m, m.startEditCard(msg.Card)

	case topicdetail.DeleteCardMsg:
		return m, m.confirmDeleteCard(msg.CardID)

	case topicform.TopicCreatedMsg:
		m.currentView = m.previousView
		return m, m.createTopic(msg.Input)

	case topicform.TopicUpdatedMsg:
		m.currentView = m.previousView
		return m, m.updateTopic(msg.ID, msg.Input)

	case topicform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case cardform.CardCreatedMsg:
		m.currentView = m.previousView
		return m, m.createCard(msg.TopicID, msg.Question, msg.Answer)

	case cardform.CardUpdatedMsg:
		m.currentView = m.previousView
		return m, m.updateCard(msg.ID, msg.TopicID, msg.Question, msg.Answer)

	case cardform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case confirm.ResultMsg:
		m.currentView = m.previousView
		if !msg.Confirmed {
			return m, nil
		}
		switch a := msg.Action.(type) {
		case deleteTopicAction:
			return m, m.deleteTopic(a.id)
		case deleteCardAction:
			return m, m.deleteCard(a.id)
		}
		return m, nil

	case configview.ConfigSavedMsg:
		m.currentView = m.previousView
		return m, m.saveConfig(msg.Config)

	case configview.ConfigDoneMsg:
		m.currentView = m.previousView
		return m, nil

	case configSavedResultMsg:
		if msg.err != nil {
			m.errMessage = msg.err.Error()
			return m, nil
		}
		m.cfg = msg.cfg
		m.notice = "settings saved"
		return m, nil

	case quizview.RatedMsg:
		return m, m.recordReview(msg.Card, msg.Quality)

	case topicSavedResultMsg:
		if msg.err != nil {
			m.errMessage = msg.err.Error()
			return m, nil
		}
		if msg.created {
			m.notice = fmt.Sprintf("added %q", msg.topic.Title)
		}
		return m, m.refresh()

	case topicDeletedResultMsg:
		if msg.err != nil {
			m.errMessage = msg.err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("deleted %q and %d cards", msg.title, msg.cards)
		if m.currentView == ViewTopicDetail {
			m.currentView = ViewTopics
		}
		m.topicDetail.Clear()
		return m, m.refresh()

	case cardSavedResultMsg:
		if msg.err != nil {
			m.errMessage = msg.err.Error()
			return m, nil
		}
		return m, m.refresh()

	case cardDeletedResultMsg, reviewRecordedResultMsg:
		if err := resultErr(msg); err != nil {
			m.errMessage = err.Error()
			return m, nil
		}
		return m, m.refresh()

	case fileResultMsg:
		if msg.err != nil {
			m.errMessage = msg.err.Error()
			return m, nil
		}
		m.notice = msg.notice
		cmd := m.refresh()
		if !m.quizView.Active() {
			m.quizView.Start()
		}
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case tea.KeyMsg:
		m.notice = ""
		m.errMessage = ""

		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		if m.capturesInput() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.onTab() {
				return m, m.quit()
			}

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.openView(ViewHelp)
			return m, nil

		case key.Matches(msg, m.keys.Command):
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			m.openView(ViewCommand)
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Back):
			if m.currentView == ViewHelp || m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}

		case key.Matches(msg, m.keys.NextTab):
			if m.onTab() {
				return m, m.switchTab(1)
			}

		case key.Matches(msg, m.keys.PrevTab):
			if m.onTab() {
				return m, m.switchTab(-1)
			}

		case key.Matches(msg, m.keys.New):
			if m.currentView == ViewDashboard || m.currentView == ViewTopics {
				return m, m.startCreateTopic()
			}

		case key.Matches(msg, m.keys.Edit):
			if m.currentView == ViewTopics {
				if id := m.selectedTopicID(); id != "" {
					return m, m.startEditTopic(id)
				}
			}

		case key.Matches(msg, m.keys.Delete):
			if m.currentView == ViewTopics {
				if id := m.selectedTopicID(); id != "" {
					return m, m.confirmDeleteTopic(id)
				}
			}

		case key.Matches(msg, m.keys.AddCard):
			if m.currentView == ViewTopics {
				return m, m.startCreateCard(m.selectedTopicID())
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewTopics:
		m.topicList, cmd = m.topicList.Update(msg)
	case ViewTopicDetail:
		m.topicDetail, cmd = m.topicDetail.Update(msg)
	case ViewTopicForm:
		m.topicForm, cmd = m.topicForm.Update(msg)
	case ViewCardForm:
		m.cardForm, cmd = m.cardForm.Update(msg)
	case ViewQuiz:
		m.quizView, cmd = m.quizView.Update(msg)
	case ViewConfirm:
		m.confirmView, cmd = m.confirmView.Update(msg)
	case ViewSettings:
		m.configView, cmd = m.configView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Learning Journey", tabLabels(), m.activeTab(), m.headerStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.errMessage)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboard.View()
	case ViewTopics:
		return m.topicList.View()
	case ViewTopicDetail:
		return m.topicDetail.View()
	case ViewTopicForm:
		return m.topicForm.View()
	case ViewCardForm:
		return m.cardForm.View()
	case ViewQuiz:
		return m.quizView.View()
	case ViewConfirm:
		return m.confirmView.View()
	case ViewSettings:
		return m.configView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// headerStatus summarises the collection for the header.
func (m Model) headerStatus() string {
	due := m.tracker.DueCount()
	if due == 0 {
		return fmt.Sprintf("%d topics · all caught up", len(m.tracker.Topics()))
	}
	return fmt.Sprintf("%d topics · %d due", len(m.tracker.Topics()), due)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" {
		return m.notice
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewTopicDetail:
		return "esc back | e edit | d delete | a add card | E edit card | x delete card"
	case ViewTopicForm, ViewCardForm, ViewSettings:
		return "enter next/submit | esc cancel"
	case ViewConfirm:
		return "←/→ choose | enter confirm | esc cancel"
	case ViewQuiz:
		switch {
		case m.quizView.Session().Flipped():
			return "1 again | 2 hard | 3 good | 4 easy"
		case m.quizView.Active():
			return "space show answer | m due/all | tab next view"
		default:
			return "r review again | m due/all | tab next view"
		}
	case ViewTopics:
		if s := m.topicList.FilterSummary(); s != "" {
			return s + " | C clear"
		}
		return "enter open | n new | e edit | d delete | a add card | / search | c category | q quit"
	default:
		return "tab next view | n new topic | : command | ? help | q quit"
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case "dashboard":
		m.currentView = ViewDashboard
	case "topics":
		m.currentView = ViewTopics
	case "quiz":
		m.quizView.StartMode(quiz.ModeDue)
		m.currentView = ViewQuiz
	case "quiz-all":
		m.quizView.StartMode(quiz.ModeAll)
		m.currentView = ViewQuiz
	case "new":
		return m.startCreateTopic()
	case "card":
		return m.startCreateCard(m.selectedTopicID())
	case "category":
		m.currentView = ViewTopics
		return m.topicList.SetCategory(c.Args)
	case "clear":
		return m.topicList.ClearFilters()
	case "export":
		return m.exportData(c.Args)
	case "import":
		return m.importCards(c.Args)
	case "restore":
		return m.restoreBackup(c.Args)
	case "reload":
		return m.reload()
	case "settings":
		m.openView(ViewSettings)
		return m.configView.Start(m.cfg)
	case "quit", "q":
		return m.quit()
	default:
		m.errMessage = fmt.Sprintf("unknown command %q", c.Name)
	}
	return nil
}

// refresh pushes the tracker's current state into every read view.
func (m *Model) refresh() tea.Cmd {
	t := m.tracker
	now := t.Now()
	topics := t.Topics()
	cards := t.Flashcards()

	items := make([]topiclist.TopicItem, len(topics))
	for i, topic := range topics {
		items[i] = topiclist.TopicItem{Topic: topic}
	}
	index := make(map[string]int, len(topics))
	for i, topic := range topics {
		index[topic.ID] = i
	}
	for _, c := range cards {
		i, ok := index[c.TopicID]
		if !ok {
			continue
		}
		items[i].Cards++
		if srs.IsDue(c, now) {
			items[i].Due++
		}
	}

	recent := make([]model.Topic, len(topics))
	copy(recent, topics)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].DateAdded.After(recent[j].DateAdded)
	})
	if len(recent) > recentTopics {
		recent = recent[:recentTopics]
	}

	m.dashboard.SetData(dashboard.Data{
		Summary:    t.Stats(),
		Categories: t.CategoryBreakdown(),
		Recent:     recent,
		LastVisit:  m.lastVisit,
		Now:        now,
	})

	if id := m.topicDetail.TopicID(); id != "" {
		if topic, ok := t.Topic(id); ok {
			m.topicDetail.SetTopic(topic, t.CardsForTopic(id), now)
		} else {
			m.topicDetail.Clear()
		}
	}

	return m.topicList.SetTopics(items)
}

// openView remembers the current view and switches to v.
func (m *Model) openView(v ViewState) {
	if m.currentView != v {
		m.previousView = m.currentView
	}
	m.currentView = v
}

// switchTab moves delta tabs from the active one, wrapping around.
func (m *Model) switchTab(delta int) tea.Cmd {
	i := (m.activeTab() + delta + len(tabs)) % len(tabs)
	m.currentView = tabs[i].view
	if m.currentView == ViewQuiz && !m.quizView.Active() {
		m.quizView.Start()
	}
	return nil
}

// activeTab returns the index of the highlighted tab. The detail view
// belongs to the Topics tab.
func (m Model) activeTab() int {
	v := m.currentView
	if v == ViewTopicDetail {
		v = ViewTopics
	}
	for i, t := range tabs {
		if t.view == v {
			return i
		}
	}
	return -1
}

// onTab reports whether a top-level tab view is showing.
func (m Model) onTab() bool {
	switch m.currentView {
	case ViewDashboard, ViewTopics, ViewQuiz:
		return true
	}
	return false
}

// capturesInput reports whether the active view consumes every key,
// so global shortcuts must not fire.
func (m Model) capturesInput() bool {
	switch m.currentView {
	case ViewTopicForm, ViewCardForm, ViewConfirm, ViewSettings, ViewCommand:
		return true
	case ViewTopics:
		return m.topicList.Searching()
	}
	return false
}

func (m Model) quit() tea.Cmd {
	if m.reminder != nil {
		m.reminder.Stop()
	}
	return tea.Quit
}

func tabLabels() []string {
	labels := make([]string, len(tabs))
	for i, t := range tabs {
		labels[i] = t.label
	}
	return labels
}

// resultErr extracts the error from a result message.
func resultErr(msg tea.Msg) error {
	switch r := msg.(type) {
	case cardDeletedResultMsg:
		return r.err
	case reviewRecordedResultMsg:
		return r.err
	}
	return nil
}
