package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/fields"
)

// Op names an editing command.
type Op string

const (
	OpSet          Op = "set"
	OpReset        Op = "reset"
	OpReinitialize Op = "reinitialize"
	OpSave         Op = "save"
	OpShow         Op = "show"
	OpQuit         Op = "quit"
)

// ErrUnknownCommand is returned for input that names no known command.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one parsed line of input.
type Command struct {
	Op     Op                      `json:"op"`
	Key    string                  `json:"key,omitempty"`
	Value  domain.Value            `json:"value"`
	Values map[string]domain.Value `json:"values,omitempty"`
}

// ParseCommand reads the text syntax:
//
//	key=value               shorthand for set
//	set key=value
//	reinit key=value ...    rebase the given fields; quote values with spaces: name="Ada Lovelace"
//	save                    rebase every field to its current value
//	reset | show | quit
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(word) {
	case "":
		return Command{Op: OpShow}, nil
	case "show", "ls":
		return Command{Op: OpShow}, nil
	case "reset":
		return Command{Op: OpReset}, nil
	case "save":
		return Command{Op: OpSave}, nil
	case "quit", "exit", "q":
		return Command{Op: OpQuit}, nil
	case "set":
		key, value, err := parsePair(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpSet, Key: key, Value: value}, nil
	case "reinit", "reinitialize":
		pairs, err := splitPairs(rest)
		if err != nil {
			return Command{}, err
		}
		values := make(map[string]domain.Value)
		for _, pair := range pairs {
			key, value, err := parsePair(pair)
			if err != nil {
				return Command{}, err
			}
			values[key] = value
		}
		if len(values) == 0 {
			return Command{}, fmt.Errorf("reinit needs at least one key=value")
		}
		return Command{Op: OpReinitialize, Values: values}, nil
	}

	if strings.Contains(word, "=") {
		key, value, err := parsePair(line)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpSet, Key: key, Value: value}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, word)
}

// splitPairs splits on whitespace outside double quotes. Quotes are kept so
// that a quoted literal is still read as a string.
func splitPairs(s string) ([]string, error) {
	var (
		pairs   []string
		current strings.Builder
		quoted  bool
		escaped bool
	)
	flush := func() {
		if current.Len() > 0 {
			pairs = append(pairs, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case !quoted && unicode.IsSpace(r):
			flush()
			continue
		}
		current.WriteRune(r)
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	flush()
	return pairs, nil
}

func parsePair(pair string) (string, domain.Value, error) {
	key, raw, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", domain.Value{}, fmt.Errorf("invalid assignment %q (want key=value)", pair)
	}
	return key, fields.ParseLiteral(raw), nil
}

func (o Op) valid() bool {
	switch o {
	case OpSet, OpReset, OpReinitialize, OpSave, OpShow, OpQuit:
		return true
	}
	return false
}
