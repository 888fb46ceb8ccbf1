package fields

import (
	"encoding/json"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
)

// ParseLiteral reads a value typed by a human. JSON scalar literals (numbers,
// true, false, null and quoted strings) keep their type; anything else is
// taken as a plain string.
func ParseLiteral(raw string) domain.Value {
	var v domain.Value
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err == nil {
		return v
	}
	return domain.String(raw)
}
