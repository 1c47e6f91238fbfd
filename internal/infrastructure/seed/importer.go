// Package seed loads completed session history from spreadsheets.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
)

// Columns every sheet must carry in its header row. "id" is optional.
var requiredColumns = []string{
	"user_id", "language", "session_type", "words_studied", "correct_answers",
	"total_answers", "time_spent_minutes", "started_at", "ended_at",
}

// Config selects the sheet to read.
type Config struct {
	SheetName string
	// BatchSize is the number of sessions written per transaction.
	BatchSize int
}

// Result summarizes an import.
type Result struct {
	Processed int
	Created   int
	Skipped   int
	Errors    []string
}

// Importer writes spreadsheet rows as completed sessions.
type Importer struct {
	tx       repository.Transactor
	sessions repository.SessionRepository
	logger   logrus.FieldLogger
}

// NewImporter wires an importer.
func NewImporter(tx repository.Transactor, sessions repository.SessionRepository, logger logrus.FieldLogger) *Importer {
	return &Importer{tx: tx, sessions: sessions, logger: logger}
}

// Import reads the workbook and stores one completed session per valid row. Invalid rows are
// reported in the result and skipped; storage errors abort the import.
func (im *Importer) Import(ctx context.Context, r io.Reader, cfg Config) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &Result{}, nil
	}
	header, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	result := &Result{}
	batch := make([]*entity.Session, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := im.tx.InTx(ctx, func(ctx context.Context) error {
			for _, s := range batch {
				if err := im.sessions.Create(ctx, s); err != nil {
					return fmt.Errorf("session %s: %w", s.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		result.Created += len(batch)
		batch = batch[:0]
		return nil
	}

	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		result.Processed++
		session, err := header.session(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		batch = append(batch, session)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := flush(); err != nil {
		return result, err
	}

	im.logger.WithFields(logrus.Fields{
		"sheet":     sheet,
		"processed": result.Processed,
		"created":   result.Created,
		"skipped":   result.Skipped,
	}).Info("session history imported")
	return result, nil
}

type columns map[string]int

func parseHeader(row []string) (columns, error) {
	cols := make(columns, len(row))
	for i, name := range row {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columns) cell(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columns) int(row []string, name string) (int, error) {
	raw := c.cell(row, name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, raw)
	}
	return v, nil
}

func (c columns) time(row []string, name string) (time.Time, error) {
	raw := c.cell(row, name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %q is not a timestamp", name, raw)
}

func (c columns) session(row []string) (*entity.Session, error) {
	userID, err := strconv.ParseInt(c.cell(row, "user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	sessionType, err := entity.ParseSessionType(c.cell(row, "session_type"))
	if err != nil {
		return nil, err
	}
	s := &entity.Session{
		ID:       c.cell(row, "id"),
		UserID:   userID,
		Language: entity.ParseLanguage(c.cell(row, "language")),
		Type:     sessionType,
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	} else if _, err := uuid.Parse(s.ID); err != nil {
		return nil, fmt.Errorf("id: %q is not a uuid", s.ID)
	}
	if s.WordsStudied, err = c.int(row, "words_studied"); err != nil {
		return nil, err
	}
	if s.CorrectAnswers, err = c.int(row, "correct_answers"); err != nil {
		return nil, err
	}
	if s.TotalAnswers, err = c.int(row, "total_answers"); err != nil {
		return nil, err
	}
	if s.TimeSpentMinutes, err = c.int(row, "time_spent_minutes"); err != nil {
		return nil, err
	}
	if s.StartedAt, err = c.time(row, "started_at"); err != nil {
		return nil, err
	}
	ended, err := c.time(row, "ended_at")
	if err != nil {
		return nil, err
	}
	if ended.Before(s.StartedAt) {
		return nil, errors.New("ended_at is before started_at")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.Complete(ended); err != nil {
		return nil, err
	}
	return s, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
