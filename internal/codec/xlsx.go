package codec

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/userdesk/backend/internal/domain"
)

const xlsxSheetName = "Users"

func encodeUsersXLSX(users []domain.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, title := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(xlsxSheetName, cell, title); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(xlsxSheetName, "A", "A", 12); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheetName, "B", "B", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheetName, "C", "D", 22); err != nil {
		return nil, err
	}

	for i, u := range users {
		row := i + 2
		values := []interface{}{
			u.ID,
			u.Name,
			u.CreatedAt.Format("2006-01-02 15:04:05"),
			u.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(xlsxSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseUsersXLSX(data []byte) ([]ImportRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid spreadsheet file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	headerIdx := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("empty spreadsheet")
	}

	nameIdx := findNameColumn(rows[headerIdx])
	if nameIdx < 0 {
		return nil, fmt.Errorf("no name column found in row %s (accepted: name, username, full_name)", strconv.Itoa(headerIdx+1))
	}

	var records []ImportRecord
	position := 0
	for _, row := range rows[headerIdx+1:] {
		if isBlankRow(row) {
			continue
		}
		position++
		name := ""
		if nameIdx < len(row) {
			name = row[nameIdx]
		}
		records = append(records, ImportRecord{Name: name, Position: position})
	}
	return records, nil
}
