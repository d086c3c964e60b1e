// Package importer moves topics and flashcards in and out of the tracker:
// bulk card import from spreadsheets and full JSON backups.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/tracker"
)

// SheetConfig describes where card fields live in a spreadsheet.
type SheetConfig struct {
	SheetName      string // Sheet to read from .xlsx files
	TopicColumn    string // Column with the topic title
	QuestionColumn string
	AnswerColumn   string
	CategoryColumn string // Optional; used when a topic is created
	StartRow       int    // First data row (1-based)
}

// DefaultSheetConfig returns the layout written by ExportSheet:
// Topic | Question | Answer | Category with a header row.
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{
		SheetName:      "Sheet1",
		TopicColumn:    "A",
		QuestionColumn: "B",
		AnswerColumn:   "C",
		CategoryColumn: "D",
		StartRow:       2,
	}
}

// Result summarizes an import run.
type Result struct {
	Processed     int
	TopicsCreated int
	Created       int
	Updated       int
	Skipped       int
	Errors        []string
}

// Target is the tracker surface the importer writes through.
type Target interface {
	Topics() []model.Topic
	CardsForTopic(topicID string) []model.Flashcard
	AddTopic(ctx context.Context, in tracker.TopicInput) (model.Topic, error)
	AddFlashcard(ctx context.Context, topicID, question, answer string) (model.Flashcard, error)
	EditFlashcard(ctx context.Context, id, topicID, question, answer string) (model.Flashcard, error)
}

var _ Target = (*tracker.Tracker)(nil)

var errSkipRow = errors.New("skipping row")

// ImportFile imports cards from an .xlsx or .csv file. Topics are matched
// by title, case-insensitively, and created when missing. A card whose
// question already exists under the same topic has its answer updated.
func ImportFile(ctx context.Context, target Target, path string, cfg SheetConfig) (*Result, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = readCSVFile(path)
	} else {
		rows, err = readSheet(path, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}
	return ImportRows(ctx, target, rows, cfg)
}

// ImportCSV imports cards from CSV data using cfg's column layout.
func ImportCSV(ctx context.Context, target Target, r io.Reader, cfg SheetConfig) (*Result, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return ImportRows(ctx, target, rows, cfg)
}

// ImportRows imports already-parsed rows. Row errors are collected in the
// result; only a failure to create data aborts the run.
func ImportRows(ctx context.Context, target Target, rows [][]string, cfg SheetConfig) (*Result, error) {
	result := &Result{Errors: make([]string, 0)}

	topicIDs := make(map[string]string)
	for _, t := range target.Topics() {
		topicIDs[strings.ToLower(t.Title)] = t.ID
	}

	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++

		err := processRow(ctx, target, row, cfg, topicIDs, result)
		switch {
		case errors.Is(err, errSkipRow):
			result.Skipped++
		case errors.Is(err, tracker.ErrMissingField):
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
		case err != nil:
			return result, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return result, nil
}

func processRow(ctx context.Context, target Target, row []string, cfg SheetConfig,
	topicIDs map[string]string, result *Result) error {
	topicTitle := cell(row, cfg.TopicColumn)
	question := cell(row, cfg.QuestionColumn)
	answer := cell(row, cfg.AnswerColumn)

	if topicTitle == "" && question == "" && answer == "" {
		return errSkipRow
	}
	if topicTitle == "" {
		return fmt.Errorf("%w: topic", tracker.ErrMissingField)
	}
	if question == "" || answer == "" {
		return fmt.Errorf("%w: question and answer", tracker.ErrMissingField)
	}

	topicID, err := topicFor(ctx, target, topicTitle, cell(row, cfg.CategoryColumn), topicIDs, result)
	if err != nil {
		return err
	}

	for _, c := range target.CardsForTopic(topicID) {
		if !strings.EqualFold(c.Question, question) {
			continue
		}
		if c.Answer == answer {
			return errSkipRow
		}
		if _, err := target.EditFlashcard(ctx, c.ID, topicID, c.Question, answer); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	if _, err := target.AddFlashcard(ctx, topicID, question, answer); err != nil {
		return err
	}
	result.Created++
	return nil
}

// topicFor returns the id of the topic titled title, creating it if needed.
func topicFor(ctx context.Context, target Target, title, category string,
	topicIDs map[string]string, result *Result) (string, error) {
	key := strings.ToLower(title)
	if id, ok := topicIDs[key]; ok {
		return id, nil
	}

	topic, err := target.AddTopic(ctx, tracker.TopicInput{Title: title, Category: category})
	if err != nil {
		return "", fmt.Errorf("creating topic %q: %w", title, err)
	}
	topicIDs[key] = topic.ID
	result.TopicsCreated++
	return topic.ID, nil
}

func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	if !hasSheet(f, sheet) {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func hasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv %s: %w", path, err)
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}

// cell returns the trimmed value of column (e.g. "B") in row, or "".
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx, err := excelize.ColumnNameToNumber(column)
	if err != nil || idx-1 >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx-1])
}

// ExportSheet writes every card to an .xlsx workbook using the
// DefaultSheetConfig layout, so the file can be imported again.
func ExportSheet(path string, topics []model.Topic, cards []model.Flashcard) error {
	cfg := DefaultSheetConfig()

	byID := make(map[string]model.Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
	}

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Topic", "Question", "Answer", "Category"}
	if err := f.SetSheetRow(cfg.SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range cards {
		t := byID[c.TopicID]
		row := []interface{}{t.Title, c.Question, c.Answer, t.Category}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(cfg.SheetName, addr, &row); err != nil {
			return fmt.Errorf("writing card %s: %w", c.ID, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}
