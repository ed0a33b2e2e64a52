package sheets

import (
	"context"
	"strconv"

	"github.com/habitmaster/habitmaster/engine"
	"github.com/habitmaster/habitmaster/utils"
)

// Syncer pushes snapshot and incremental updates to a linked spreadsheet.
type Syncer struct {
	client *Client
}

// NewSyncer wraps a sheets client.
func NewSyncer(client *Client) *Syncer {
	return &Syncer{client: client}
}

// Client exposes the underlying API client.
func (s *Syncer) Client() *Client { return s.client }

// SyncSnapshot overwrites the four tabs with the full snapshot. Header
// formatting is best effort and never fails the sync.
func (s *Syncer) SyncSnapshot(ctx context.Context, token, spreadsheetID string, snap engine.Snapshot) error {
	if err := s.client.ValidateToken(ctx, token); err != nil {
		return err
	}
	if err := s.client.BatchUpdateValues(ctx, token, spreadsheetID, SnapshotRanges(snap)); err != nil {
		return err
	}
	if err := s.client.FormatHeaders(ctx, token, spreadsheetID); err != nil && utils.Sugar != nil {
		utils.Sugar.Debugf("sheet header formatting failed: %v", err)
	}
	return nil
}

// SyncHeaders reconciles the Completions tab header row with the current
// habit names, appending columns for habits the sheet has not seen yet.
func (s *Syncer) SyncHeaders(ctx context.Context, token, spreadsheetID string, habitNames []string) error {
	rows, err := s.client.ReadRange(ctx, token, spreadsheetID, TabCompletions+"!1:1")
	if err != nil {
		return err
	}
	var existing []string
	if len(rows) > 0 {
		existing = rows[0]
	}

	if len(existing) == 0 {
		header := []interface{}{"Date"}
		for _, name := range habitNames {
			header = append(header, name)
		}
		return s.client.UpdateRange(ctx, token, spreadsheetID, TabCompletions+"!A1", [][]interface{}{header})
	}

	missing := MissingHeaders(existing, habitNames)
	if len(missing) == 0 {
		return nil
	}
	start := ColumnLetter(len(existing))
	row := make([]interface{}, len(missing))
	for i, name := range missing {
		row[i] = name
	}
	return s.client.UpdateRange(ctx, token, spreadsheetID, TabCompletions+"!"+start+"1", [][]interface{}{row})
}

// SyncToggle writes one completion cell: the row addressed by date-key, the
// column addressed by habit name. A new date gets an appended row. Unknown
// habit names are skipped; SyncHeaders runs first in normal flows.
func (s *Syncer) SyncToggle(ctx context.Context, token, spreadsheetID, habitName, dateKey string, completed bool) error {
	dateRows, err := s.client.ReadRange(ctx, token, spreadsheetID, TabCompletions+"!A:A")
	if err != nil {
		return err
	}

	rowIndex := -1
	for i, row := range dateRows {
		if len(row) > 0 && row[0] == dateKey {
			rowIndex = i
			break
		}
	}
	if rowIndex == -1 {
		if err := s.client.AppendRows(ctx, token, spreadsheetID, TabCompletions+"!A:A",
			[][]interface{}{{dateKey}}); err != nil {
			return err
		}
		rowIndex = len(dateRows)
	}
	sheetRow := rowIndex + 1

	headerRows, err := s.client.ReadRange(ctx, token, spreadsheetID, TabCompletions+"!1:1")
	if err != nil {
		return err
	}
	colIndex := -1
	if len(headerRows) > 0 {
		for i, name := range headerRows[0] {
			if name == habitName {
				colIndex = i
				break
			}
		}
	}
	if colIndex == -1 {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("habit %q not in sheet headers, skipping cell sync", habitName)
		}
		return nil
	}

	mark := "❌"
	if completed {
		mark = "✅"
	}
	cell := TabCompletions + "!" + ColumnLetter(colIndex) + strconv.Itoa(sheetRow)
	return s.client.UpdateRange(ctx, token, spreadsheetID, cell, [][]interface{}{{mark}})
}
