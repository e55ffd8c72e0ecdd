package codec

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/userdesk/backend/internal/domain"
)

var templateNames = []string{"Alice Johnson", "Bob Smith", "Carol Williams"}

// GenerateTemplate renders a small sample import file so callers can
// see the expected shape before uploading their own.
func GenerateTemplate(format domain.TaskFormat) ([]byte, error) {
	switch format {
	case domain.TaskFormatJSON:
		return templateJSON()
	case domain.TaskFormatCSV:
		return templateCSV()
	case domain.TaskFormatXLSX:
		return templateXLSX()
	default:
		return nil, fmt.Errorf("unsupported template format %q", format)
	}
}

func templateJSON() ([]byte, error) {
	type row struct {
		Name string `json:"name"`
	}
	rows := make([]row, 0, len(templateNames))
	for _, name := range templateNames {
		rows = append(rows, row{Name: name})
	}
	return json.MarshalIndent(map[string]interface{}{"users": rows}, "", "  ")
}

func templateCSV() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"name"}); err != nil {
		return nil, err
	}
	for _, name := range templateNames {
		if err := w.Write([]string{name}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func templateXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", "name"); err != nil {
		return nil, err
	}
	for i, name := range templateNames {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
