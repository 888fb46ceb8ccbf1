package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/formstate/pkg/fields"
	"github.com/aretw0/formstate/pkg/schema"
)

// ErrInvalidDefinitions is returned by RunValidate when any file failed.
var ErrInvalidDefinitions = errors.New("invalid form definitions")

// RunValidate checks each definition file and reports every problem found.
func RunValidate(out io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		def, err := fields.LoadDefinition(path)
		if err == nil {
			fmt.Fprintf(out, "ok    %s (%s, %d fields)\n", path, def.Name, len(def.Fields))
			continue
		}

		failed++
		var agg *schema.AggregateError
		if errors.As(err, &agg) {
			fmt.Fprintf(out, "FAIL  %s\n", path)
			for _, e := range agg.Errors {
				fmt.Fprintf(out, "      - %v\n", e)
			}
			continue
		}
		fmt.Fprintf(out, "FAIL  %s: %v\n", path, err)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidDefinitions, failed, len(paths))
	}
	return nil
}
