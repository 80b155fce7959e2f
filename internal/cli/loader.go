package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/asaidimu/go-sieve/core/query"
	"gopkg.in/yaml.v3"
)

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// loadConditions decodes a YAML or JSON document of the form {conditions: [...]}.
func loadConditions(data []byte) ([]query.FilterCondition, error) {
	var doc struct {
		Conditions []query.FilterCondition `yaml:"conditions"`
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse conditions: %w", err)
	}
	return doc.Conditions, nil
}
