package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/repo"
)

const defaultSheet = "Sheet1"

// Apps sheet layout: header row, then one row per app with the five fixed
// columns app_id, name, availability ("true"/"false"), last_update, regions
// (comma-separated). Every further column is a custom field named by the
// header, order preserved.
const fixedColumns = 5

const timeLayout = "2006-01-02 15:04:05"

// AppSheet implements repo.AppStore over one spreadsheet.
type AppSheet struct {
	Client        *Client
	SpreadsheetID string
	Sheet         string
	Logger        *zap.Logger
}

func NewAppSheet(c *Client, spreadsheetID string, log *zap.Logger) *AppSheet {
	return &AppSheet{Client: c, SpreadsheetID: spreadsheetID, Sheet: defaultSheet, Logger: log}
}

func (s *AppSheet) List(ctx context.Context) ([]*domain.App, error) {
	rows, err := s.Client.GetValues(ctx, s.SpreadsheetID, s.Sheet+"!A:Z")
	if err != nil {
		return nil, fmt.Errorf("read apps sheet: %w", err)
	}
	if len(rows) == 0 {
		s.Logger.Warn("apps_sheet_empty", zap.String("spreadsheet", s.SpreadsheetID))
		return nil, nil
	}

	header := rows[0]
	var out []*domain.App
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue
		}
		app := &domain.App{
			AppID: strings.TrimSpace(cell(row, 0)),
			Name:  strings.TrimSpace(cell(row, 1)),
			Row:   i + 2, // 1-based plus header row
		}
		if app.Name == "" {
			app.Name = "Unknown App"
		}
		app.Available = strings.EqualFold(strings.TrimSpace(cell(row, 2)), "true")
		if ts := strings.TrimSpace(cell(row, 3)); ts != "" {
			if t, err := time.Parse(timeLayout, ts); err == nil {
				app.UpdatedAt = t
			}
		}
		for _, g := range strings.Split(cell(row, 4), ",") {
			if g = strings.TrimSpace(g); g != "" {
				app.Regions = append(app.Regions, g)
			}
		}
		for col := fixedColumns; col < len(header); col++ {
			key := strings.TrimSpace(header[col])
			if key == "" {
				continue
			}
			app.Fields = append(app.Fields, domain.Field{Key: key, Value: cell(row, col)})
		}
		out = append(out, app)
	}
	return out, nil
}

// UpdateAvailability writes only the availability and timestamp cells (C:D)
// of the app's row.
func (s *AppSheet) UpdateAvailability(ctx context.Context, app *domain.App, available bool, at time.Time) error {
	if app.Row < 2 {
		return fmt.Errorf("app %s has no row hint", app.AppID)
	}
	rng := fmt.Sprintf("%s!C%d:D%d", s.Sheet, app.Row, app.Row)
	values := [][]string{{fmt.Sprintf("%t", available), at.Format(timeLayout)}}
	if err := s.Client.UpdateValues(ctx, s.SpreadsheetID, rng, values); err != nil {
		return fmt.Errorf("update app %s: %w", app.AppID, err)
	}
	return nil
}

// DestSheet implements repo.DestinationStore over a (id, label) sheet.
// All rows are telegram chats; webhook destinations come from config.
type DestSheet struct {
	Client        *Client
	SpreadsheetID string
	Sheet         string
}

func NewDestSheet(c *Client, spreadsheetID string) *DestSheet {
	return &DestSheet{Client: c, SpreadsheetID: spreadsheetID, Sheet: defaultSheet}
}

func (s *DestSheet) List(ctx context.Context) ([]domain.Destination, error) {
	rows, err := s.Client.GetValues(ctx, s.SpreadsheetID, s.Sheet+"!A:B")
	if err != nil {
		return nil, fmt.Errorf("read destinations sheet: %w", err)
	}
	seen := make(map[string]bool)
	var out []domain.Destination
	for _, row := range rows {
		id := strings.TrimSpace(cell(row, 0))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, domain.Destination{
			Channel: domain.ChannelTelegram,
			ID:      id,
			Label:   strings.TrimSpace(cell(row, 1)),
		})
	}
	return out, nil
}

func (s *DestSheet) Append(ctx context.Context, d domain.Destination) error {
	err := s.Client.AppendValues(ctx, s.SpreadsheetID, s.Sheet+"!A:B", [][]string{{d.ID, d.Label}})
	if err != nil {
		return fmt.Errorf("append destination %s: %w", d.ID, err)
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

var _ repo.AppStore = (*AppSheet)(nil)
var _ repo.DestinationStore = (*DestSheet)(nil)
