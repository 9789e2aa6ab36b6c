package checker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redhat-developer/openshift-checker/internal/model"
)

// MaxRawOutput is the number of stdout bytes kept in a MalformedOutputError.
const MaxRawOutput = 4 << 10

// Decode parses the analyzer stdout, which must be a JSON array of
// objects with string fields.
func Decode(stdout []byte) (model.Result, error) {
	data := bytes.TrimSpace(stdout)
	if len(data) == 0 {
		return model.Result{}, malformed(stdout, errors.New("empty output"))
	}
	if data[0] != '[' {
		return model.Result{}, malformed(stdout, fmt.Errorf("expected a JSON array, got %q", truncate(data, 16)))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return model.Result{}, malformed(stdout, err)
	}

	raw := make([]model.RawFinding, len(items))
	for i, item := range items {
		if len(item) == 0 || item[0] != '{' {
			return model.Result{}, malformed(stdout, fmt.Errorf("element %d: expected a JSON object, got %q", i, truncate(item, 16)))
		}
		if err := json.Unmarshal(item, &raw[i]); err != nil {
			return model.Result{}, malformed(stdout, fmt.Errorf("element %d: %w", i, err))
		}
	}
	return model.NewResult(raw), nil
}

func malformed(stdout []byte, err error) *model.MalformedOutputError {
	return &model.MalformedOutputError{
		Raw: string(truncate(stdout, MaxRawOutput)),
		Err: err,
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
