package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pipecheck/pkg/errors"
)

// ReadJSON decodes a pipeline document from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "a", "type": "customInput", "position": {"x": 0, "y": 0}}],
//	  "edges": [{"id": "e1", "source": "a", "target": "b"}]
//	}
//
// Unknown fields are ignored so editor payloads can carry extra state.
// ReadJSON rejects malformed JSON and trailing data after the document but
// performs no structural validation; call [Pipeline.Validate] for that.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Pipeline, error) {
	dec := json.NewDecoder(r)

	var p Pipeline
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode pipeline")
	}
	if dec.More() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "trailing data after pipeline document")
	}
	return &p, nil
}

// ReadFile reads a pipeline document from the file at path.
//
// ReadFile opens the file, decodes it using [ReadJSON], and closes the
// file. A missing file is reported with ErrCodeFileNotFound so the CLI
// can distinguish it from malformed input.
func ReadFile(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no such file: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
