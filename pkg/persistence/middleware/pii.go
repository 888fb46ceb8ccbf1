package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
)

// Mask replaces the value of a field whose key matches a PII pattern.
var Mask = domain.String("***")

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the fields whose keys match
// the patterns before they reach the store.
//
// Masking keeps the changed/unchanged relation of each field, so a masked
// session restores with the same dirty and saveable flags.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	// Clone so the caller's session keeps the real values.
	cloned := sess.Clone()
	for key, field := range cloned.State.Data {
		if m.sensitive(key) {
			cloned.State.Data[key] = mask(field)
		}
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) sensitive(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func mask(field domain.FieldState) domain.FieldState {
	out := domain.FieldState{Value: Mask, InitialValue: Mask, InitialValueIsOk: field.InitialValueIsOk}
	if field.Changed() {
		out.InitialValue = domain.Null()
	}
	return out
}
