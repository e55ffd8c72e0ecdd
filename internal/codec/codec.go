// Package codec encodes user records into downloadable json/csv/xlsx
// files and parses uploaded files back into candidate import records.
package codec

import (
	"fmt"
	"strings"

	"github.com/userdesk/backend/internal/domain"
)

// ImportRecord is one candidate row parsed from an uploaded file.
// Position is 1-based and refers to the record's place in the file
// (data row number for tabular formats, array index for JSON).
type ImportRecord struct {
	Name     string
	Position int
}

// nameAliases are the accepted spellings of the name column/key,
// matched case-insensitively.
var nameAliases = []string{"name", "username", "user_name", "fullname", "full_name"}

func isNameAlias(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, alias := range nameAliases {
		if k == alias {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type served for a stored format.
func ContentType(format domain.TaskFormat) string {
	switch format {
	case domain.TaskFormatJSON:
		return "application/json"
	case domain.TaskFormatCSV:
		return "text/csv; charset=utf-8"
	case domain.TaskFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FileExtension returns the on-disk extension for a format.
func FileExtension(format domain.TaskFormat) string {
	return "." + string(format)
}

// FormatFromFileName sniffs an upload's format from its extension.
func FormatFromFileName(fileName string) (domain.TaskFormat, error) {
	name := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(name, ".json"):
		return domain.TaskFormatJSON, nil
	case strings.HasSuffix(name, ".csv"):
		return domain.TaskFormatCSV, nil
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xls"):
		return domain.TaskFormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q: expected .json, .csv, .xlsx or .xls", fileName)
	}
}

// EncodeUsers serializes an export result set in the requested format.
func EncodeUsers(format domain.TaskFormat, users []domain.User) ([]byte, error) {
	switch format {
	case domain.TaskFormatJSON:
		return encodeUsersJSON(users)
	case domain.TaskFormatCSV:
		return encodeUsersCSV(users)
	case domain.TaskFormatXLSX:
		return encodeUsersXLSX(users)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ParseUsers parses an uploaded file into ordered candidate records.
// Structural problems (malformed file, no resolvable name column) are
// returned as errors; records whose resolved name is empty are kept so
// the importer can count them as per-record failures.
func ParseUsers(format domain.TaskFormat, data []byte) ([]ImportRecord, error) {
	switch format {
	case domain.TaskFormatJSON:
		return parseUsersJSON(data)
	case domain.TaskFormatCSV:
		return parseUsersCSV(data)
	case domain.TaskFormatXLSX:
		return parseUsersXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
}
