package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nhle/knowledge-tracker/internal/model"
)

// Backup key names. They match the browser-storage keys of the web app
// this tracker replaces, so its exports can be restored directly.
const (
	TopicsKey     = "ai-journey-topics"
	FlashcardsKey = "ai-journey-flashcards"
)

// Backup is the full-collection interchange document.
type Backup struct {
	Topics     []model.Topic     `json:"ai-journey-topics"`
	Flashcards []model.Flashcard `json:"ai-journey-flashcards"`
}

// Restorer replaces both collections at once.
type Restorer interface {
	Replace(ctx context.Context, topics []model.Topic, cards []model.Flashcard) error
}

// WriteBackup encodes topics and cards as an indented JSON document.
func WriteBackup(w io.Writer, topics []model.Topic, cards []model.Flashcard) error {
	b := Backup{Topics: topics, Flashcards: cards}
	if b.Topics == nil {
		b.Topics = []model.Topic{}
	}
	if b.Flashcards == nil {
		b.Flashcards = []model.Flashcard{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// ReadBackup decodes a backup document. Missing keys decode as empty
// collections. Cards without an ease factor get the initial value. Any
// entity still out of range after that rejects the whole document.
func ReadBackup(r io.Reader) (Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Backup{}, fmt.Errorf("decoding backup: %w", err)
	}
	if b.Topics == nil {
		b.Topics = []model.Topic{}
	}
	if b.Flashcards == nil {
		b.Flashcards = []model.Flashcard{}
	}
	for i := range b.Flashcards {
		if b.Flashcards[i].EaseFactor < model.MinEaseFactor {
			b.Flashcards[i].EaseFactor = model.InitialEaseFactor
		}
	}
	for i := range b.Topics {
		if b.Topics[i].Category == "" {
			b.Topics[i].Category = model.DefaultCategory
		}
		if err := b.Topics[i].Validate(); err != nil {
			return Backup{}, fmt.Errorf("decoding backup: %w", err)
		}
	}
	for _, c := range b.Flashcards {
		if err := c.Validate(); err != nil {
			return Backup{}, fmt.Errorf("decoding backup: %w", err)
		}
	}
	return b, nil
}

// Restore reads a backup from r and replaces the tracker's collections
// with it.
func Restore(ctx context.Context, target Restorer, r io.Reader) (Backup, error) {
	b, err := ReadBackup(r)
	if err != nil {
		return Backup{}, err
	}
	if err := target.Replace(ctx, b.Topics, b.Flashcards); err != nil {
		return Backup{}, fmt.Errorf("restoring backup: %w", err)
	}
	return b, nil
}
