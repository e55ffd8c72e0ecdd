package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/userdesk/backend/internal/domain"
)

// utf8BOM keeps spreadsheet applications from misreading the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"ID", "Name", "CreatedAt", "UpdatedAt"}

func encodeUsersCSV(users []domain.User) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, u := range users {
		row := []string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.Name,
			u.CreatedAt.Format("2006-01-02 15:04:05"),
			u.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseUsersCSV(data []byte) ([]ImportRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := readHeaderRow(r)
	if err != nil {
		return nil, err
	}

	nameIdx := findNameColumn(header)
	if nameIdx < 0 {
		return nil, fmt.Errorf("no name column found in header (accepted: name, username, full_name)")
	}

	var records []ImportRecord
	position := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV: %w", err)
		}
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

// readHeaderRow skips blank leading lines and returns the first
// non-blank row as the header.
func readHeaderRow(r *csv.Reader) ([]string, error) {
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("empty CSV file")
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV header: %w", err)
		}
		if !isBlankRow(row) {
			return row, nil
		}
	}
}

func findNameColumn(header []string) int {
	for i, col := range header {
		if isNameAlias(col) {
			return i
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
