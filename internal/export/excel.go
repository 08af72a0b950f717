// Package export renders the warehouse tables to a spreadsheet workbook,
// one worksheet per table.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/datakettle/superstore-etl/internal/db"
	"github.com/datakettle/superstore-etl/internal/logging"
)

// maxColumnWidth caps fitted column widths.
const maxColumnWidth = 30

// Workbook reads every listed table and writes one styled worksheet per
// table to path.
func Workbook(ctx context.Context, q db.Queryer, tables []string, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D7E4BC"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Vertical: "top",
			WrapText: true,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	exported := 0
	for _, table := range tables {
		n, err := exportTable(ctx, q, f, table, headerStyle)
		if err != nil {
			return fmt.Errorf("failed to export table %s: %w", table, err)
		}
		logging.Info().Str("table", table).Int("rows", n).Msg("Exported table")
		exported++
	}

	// The workbook starts with a default sheet; drop it once real sheets exist.
	if exported > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logging.Info().Str("file", path).Int("tables", exported).Msg("Workbook created")
	return nil
}

func exportTable(ctx context.Context, q db.Queryer, f *excelize.File, table string, headerStyle int) (int, error) {
	rows, err := q.Query(ctx, "SELECT * FROM "+table)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if _, err := f.NewSheet(table); err != nil {
		return 0, err
	}

	fields := rows.FieldDescriptions()
	widths := make([]int, len(fields))
	for i, fd := range fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(table, cell, fd.Name); err != nil {
			return 0, err
		}
		widths[i] = len(fd.Name)
	}

	rowNum := 1
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return 0, err
		}
		rowNum++
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return 0, err
			}
			rendered := renderValue(v)
			if err := f.SetCellValue(table, cell, rendered); err != nil {
				return 0, err
			}
			if w := len(fmt.Sprint(rendered)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	// Style the header row and fit column widths to content.
	if len(fields) > 0 {
		lastHeader, err := excelize.CoordinatesToCellName(len(fields), 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(table, "A1", lastHeader, headerStyle); err != nil {
			return 0, err
		}
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return 0, err
		}
		width := float64(w + 2)
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(table, col, col, width); err != nil {
			return 0, err
		}
	}

	return rowNum - 1, nil
}

func renderValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case nil:
		return ""
	default:
		return v
	}
}
