// Package output formats check reports as JSON, plain text or a CycloneDX
// BOM. Cancelled checks are left out of every format.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/redhat-developer/openshift-checker/internal/batch"
	"github.com/redhat-developer/openshift-checker/internal/model"
)

// Formatter is the interface for outputting check reports.
type Formatter interface {
	Format(w io.Writer, reports []batch.Report) error
}

const (
	FormatJSON      = "json"
	FormatText      = "text"
	FormatCycloneDX = "cyclonedx"
)

// New returns the formatter for the format name.
func New(format string, info model.ProviderInfo) (Formatter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return JSON{}, nil
	case FormatText, "":
		return Text{Provider: info}, nil
	case FormatCycloneDX, "cdx":
		return CycloneDX{Provider: info}, nil
	default:
		return nil, fmt.Errorf("unknown format %q, expected %s, %s or %s", format, FormatJSON, FormatText, FormatCycloneDX)
	}
}

func visible(reports []batch.Report) []batch.Report {
	ret := make([]batch.Report, 0, len(reports))
	for _, r := range reports {
		if errors.Is(r.Err, model.ErrCancelled) {
			continue
		}
		ret = append(ret, r)
	}
	return ret
}
