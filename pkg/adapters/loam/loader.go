package loam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/fields"
	"github.com/aretw0/loam"
)

// Document is the raw metadata of a definition file as read by Loam.
// It is validated and decoded by fields.DecodeDefinition.
type Document map[string]any

// Loader adapts a Loam repository of definition files to form definitions.
type Loader struct {
	Repo *loam.TypedRepository[Document]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[Document]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a read-only Loam repository over dir. Strict mode keeps
// JSON integers out of float64.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("failed to open definitions directory: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[Document](repo)), nil
}

// Definitions decodes every document of the repository, keyed by its ID
// without extension. Documents with no metadata (plain markdown notes) are
// skipped. All invalid documents are reported together.
func (l *Loader) Definitions(ctx context.Context) (map[string]domain.FormDefinition, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	defs := make(map[string]domain.FormDefinition, len(docs))
	seen := make(map[string]string, len(docs))
	var errs []error

	for _, doc := range docs {
		if len(doc.Data) == 0 {
			continue
		}
		id := trimExtension(doc.ID)
		if existing, ok := seen[id]; ok {
			errs = append(errs, fmt.Errorf("collision detected: definition '%s' is defined in both '%s' and '%s'", id, existing, doc.ID))
			continue
		}
		seen[id] = doc.ID

		def, err := decode(doc.Data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", doc.ID, err))
			continue
		}
		if def.Name == "" {
			def.Name = id
		}
		defs[id] = def
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return defs, nil
}

// Watch reports the ID of every definition file that changes under the
// repository until ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// decode drops the optional "id" attribute, which only names the document,
// and validates the rest as a form definition.
func decode(data Document) (domain.FormDefinition, error) {
	raw := make(map[string]any, len(data))
	for k, v := range data {
		raw[k] = v
	}

	id, _ := raw["id"].(string)
	delete(raw, "id")

	def, err := fields.DecodeDefinition(raw)
	if err != nil {
		return domain.FormDefinition{}, err
	}
	if def.Name == "" {
		def.Name = trimExtension(id)
	}
	return def, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
