package output

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/redhat-developer/openshift-checker/internal/batch"
	"github.com/redhat-developer/openshift-checker/internal/model"
)

type JSON struct{}

type jsonReport struct {
	Image  string         `json:"image"`
	Checks *[]model.Check `json:"checks,omitempty"` // nil on error, [] when nothing was found
	Error  *jsonError     `json:"error,omitempty"`
}

type jsonError struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	ExitCode *int   `json:"exit_code,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Output   string `json:"output,omitempty"`
}

func (JSON) Format(w io.Writer, reports []batch.Report) error {
	out := make([]jsonReport, 0, len(reports))
	for _, r := range visible(reports) {
		jr := jsonReport{Image: r.ImageID}
		if r.Err != nil {
			jr.Error = newJSONError(r.Err)
		} else {
			checks := r.Result.Checks
			if checks == nil {
				checks = []model.Check{}
			}
			jr.Checks = &checks
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}

func newJSONError(err error) *jsonError {
	je := &jsonError{
		Kind:    model.Kind(err),
		Message: err.Error(),
	}
	var pe *model.ProcessError
	if errors.As(err, &pe) {
		if pe.ExitCode >= 0 {
			code := pe.ExitCode
			je.ExitCode = &code
		}
		je.Stderr = pe.Stderr
	}
	var me *model.MalformedOutputError
	if errors.As(err, &me) {
		je.Output = me.Raw
	}
	return je
}
