package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes and validates one workflow definition.
func LoadYAML(r io.Reader) (Workflow, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var wf Workflow
	if err := dec.Decode(&wf); err != nil {
		if errors.Is(err, io.EOF) {
			return Workflow{}, fmt.Errorf("empty workflow definition")
		}
		return Workflow{}, fmt.Errorf("decode workflow: %w", err)
	}
	if err := wf.Validate(); err != nil {
		return Workflow{}, err
	}
	return wf, nil
}

// LoadFile reads a workflow definition from path.
func LoadFile(path string) (Workflow, error) {
	f, err := os.Open(path)
	if err != nil {
		return Workflow{}, err
	}
	defer f.Close()
	return LoadYAML(f)
}
