/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package modelconfig reads the model configuration document that declares
// the served model's inputs, outputs and backend.
package modelconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hep-ml/deeptau-serve/internal/tensor"
)

// TensorConfig declares one named input or output.
type TensorConfig struct {
	Name     string  `json:"name"`
	DataType string  `json:"data_type"`
	Dims     []int64 `json:"dims"`
}

// Type returns the parsed datatype.
func (tc TensorConfig) Type() (tensor.DataType, error) {
	dt, err := tensor.ParseDataType(tc.DataType)
	if err != nil {
		return tensor.Invalid, fmt.Errorf("tensor %q: %w", tc.Name, err)
	}
	return dt, nil
}

// Config is the model configuration document.
type Config struct {
	Name         string            `json:"name"`
	Backend      string            `json:"backend"`
	MaxBatchSize int               `json:"max_batch_size"`
	Inputs       []TensorConfig    `json:"input"`
	Outputs      []TensorConfig    `json:"output"`
	Parameters   map[string]string `json:"parameters,omitempty"`
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode model config: %w", err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("model config: missing name")
	}
	for _, tc := range append(append([]TensorConfig{}, c.Inputs...), c.Outputs...) {
		if _, err := tc.Type(); err != nil {
			return nil, fmt.Errorf("model config %q: %w", c.Name, err)
		}
	}
	return &c, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model config: %w", err)
	}
	return Parse(data)
}

// OutputByName resolves a declared output. A missing name is an error; the
// caller treats it as fatal to initialization.
func (c *Config) OutputByName(name string) (TensorConfig, error) {
	for _, tc := range c.Outputs {
		if tc.Name == name {
			return tc, nil
		}
	}
	return TensorConfig{}, fmt.Errorf("model %q declares no output named %q", c.Name, name)
}

// InputByName resolves a declared input.
func (c *Config) InputByName(name string) (TensorConfig, error) {
	for _, tc := range c.Inputs {
		if tc.Name == name {
			return tc, nil
		}
	}
	return TensorConfig{}, fmt.Errorf("model %q declares no input named %q", c.Name, name)
}

// Parameter returns a free-form string parameter, or an error naming the key
// when absent.
func (c *Config) Parameter(key string) (string, error) {
	if v, ok := c.Parameters[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("model %q: missing parameter %q", c.Name, key)
}
