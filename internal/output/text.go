package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/redhat-developer/openshift-checker/internal/batch"
	"github.com/redhat-developer/openshift-checker/internal/model"
)

// Text prints every check as "N - name (severity) [status]: description"
// with the markdown description rendered as plain text.
type Text struct {
	Provider model.ProviderInfo
}

func (f Text) Format(w io.Writer, reports []batch.Report) error {
	ew := &errWriter{w: w}
	for i, r := range visible(reports) {
		if i > 0 {
			ew.printf("\n")
		}
		ew.printf("%s: %s\n", f.Provider.Name, r.ImageID)
		if r.Err != nil {
			ew.printf("  Analyze error: %s\n", r.Err)
			continue
		}
		if len(r.Result.Checks) == 0 {
			ew.printf("  No issues reported.\n")
			continue
		}
		for n, check := range r.Result.Checks {
			desc := strings.ReplaceAll(plainText(check.MarkdownDescription), "\n", "\n      ")
			ew.printf("  %d - %s (%s) [%s]: %s\n", n+1, check.Name, check.Severity, check.Status, desc)
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
