package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/knowledge-tracker/internal/importer"
	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/theme"
)

// fileResultMsg is sent after an import, export, restore or reload.
type fileResultMsg struct {
	notice string
	err    error
}

// exportData writes every topic and card to path: a spreadsheet for
// .xlsx, a JSON backup otherwise.
func (m *Model) exportData(path string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		if path == "" {
			return fileResultMsg{err: fmt.Errorf("export: path required")}
		}
		topics, cards := t.Topics(), t.Flashcards()

		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			if err := importer.ExportSheet(path, topics, cards); err != nil {
				return fileResultMsg{err: err}
			}
		} else {
			f, err := os.Create(path)
			if err != nil {
				return fileResultMsg{err: fmt.Errorf("export: %w", err)}
			}
			defer f.Close()
			if err := importer.WriteBackup(f, topics, cards); err != nil {
				return fileResultMsg{err: err}
			}
		}
		return fileResultMsg{notice: fmt.Sprintf("exported %d topics, %d cards to %s",
			len(topics), len(cards), path)}
	}
}

// importCards adds cards from an .xlsx or .csv file.
func (m *Model) importCards(path string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		if path == "" {
			return fileResultMsg{err: fmt.Errorf("import: path required")}
		}
		res, err := importer.ImportFile(context.Background(), t, path, importer.DefaultSheetConfig())
		if err != nil {
			return fileResultMsg{err: fmt.Errorf("import: %w", err)}
		}
		notice := fmt.Sprintf("imported %d rows: %d new, %d updated, %d skipped",
			res.Processed, res.Created, res.Updated, res.Skipped)
		if len(res.Errors) > 0 {
			notice += fmt.Sprintf(", %d errors", len(res.Errors))
		}
		return fileResultMsg{notice: notice}
	}
}

// restoreBackup replaces all data with a JSON backup.
func (m *Model) restoreBackup(path string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		if path == "" {
			return fileResultMsg{err: fmt.Errorf("restore: path required")}
		}
		f, err := os.Open(path)
		if err != nil {
			return fileResultMsg{err: fmt.Errorf("restore: %w", err)}
		}
		defer f.Close()

		b, err := importer.Restore(context.Background(), t, f)
		if err != nil {
			return fileResultMsg{err: err}
		}
		return fileResultMsg{notice: fmt.Sprintf("restored %d topics, %d cards",
			len(b.Topics), len(b.Flashcards))}
	}
}

// reload re-reads both collections from the database.
func (m *Model) reload() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		if err := t.Load(context.Background()); err != nil {
			return fileResultMsg{err: err}
		}
		return fileResultMsg{notice: "reloaded"}
	}
}

// configSavedResultMsg is sent after settings are written.
type configSavedResultMsg struct {
	cfg model.AppConfig
	err error
}

// saveConfig validates and writes cfg, then applies the theme.
func (m *Model) saveConfig(cfg model.AppConfig) tea.Cmd {
	path := m.configPath
	return func() tea.Msg {
		if err := cfg.Validate(); err != nil {
			return configSavedResultMsg{err: err}
		}
		if path == "" {
			return configSavedResultMsg{err: fmt.Errorf("settings: no config path")}
		}
		if err := model.SaveConfig(path, &cfg); err != nil {
			return configSavedResultMsg{err: err}
		}
		if err := theme.Apply(cfg.Display.Theme); err != nil {
			return configSavedResultMsg{err: err}
		}
		return configSavedResultMsg{cfg: cfg}
	}
}
