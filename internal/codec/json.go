package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/userdesk/backend/internal/domain"
)

type exportedUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type exportEnvelope struct {
	ExportedAt time.Time      `json:"exported_at"`
	Total      int            `json:"total"`
	Users      []exportedUser `json:"users"`
}

func encodeUsersJSON(users []domain.User) ([]byte, error) {
	envelope := exportEnvelope{
		ExportedAt: time.Now().UTC(),
		Total:      len(users),
		Users:      make([]exportedUser, 0, len(users)),
	}
	for _, u := range users {
		envelope.Users = append(envelope.Users, exportedUser{
			ID:        u.ID,
			Name:      u.Name,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}
	return json.MarshalIndent(envelope, "", "  ")
}

func parseUsersJSON(data []byte) ([]ImportRecord, error) {
	var elements []map[string]interface{}

	if err := json.Unmarshal(data, &elements); err != nil {
		var wrapper struct {
			Users []map[string]interface{} `json:"users"`
		}
		if err2 := json.Unmarshal(data, &wrapper); err2 != nil || wrapper.Users == nil {
			return nil, fmt.Errorf("invalid JSON: expected an array of users or an object with a \"users\" array")
		}
		elements = wrapper.Users
	}

	records := make([]ImportRecord, 0, len(elements))
	for i, element := range elements {
		name, found := resolveName(element)
		if !found {
			return nil, fmt.Errorf("record %d: no name field found (accepted keys: name, username, full_name)", i+1)
		}
		records = append(records, ImportRecord{Name: name, Position: i + 1})
	}
	return records, nil
}

// resolveName finds the first alias key present in the element and
// renders its value as a string. Aliases are tried in priority order
// so elements carrying several candidate keys resolve deterministically.
// Scalar values are accepted; nested structures resolve to empty.
func resolveName(element map[string]interface{}) (string, bool) {
	for _, alias := range nameAliases {
		for key, value := range element {
			if strings.ToLower(strings.TrimSpace(key)) != alias {
				continue
			}
			switch v := value.(type) {
			case string:
				return v, true
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64), true
			case bool:
				return strconv.FormatBool(v), true
			default:
				return "", true
			}
		}
	}
	return "", false
}
