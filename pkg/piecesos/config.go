package piecesos

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is where Pieces OS listens on a default install.
const DefaultBaseURL = "http://localhost:39300"

// EnvPrefix prefixes the environment overrides, e.g. PIECES_BASE_URL.
const EnvPrefix = "pieces"

// Config describes how to reach Pieces OS and which model the copilot uses.
type Config struct {
	BaseURL     string        `yaml:"base_url" split_words:"true" validate:"required,url"`
	Model       string        `yaml:"model,omitempty"`       // Model name or id; empty uses the Pieces OS default.
	Application string        `yaml:"application,omitempty"` // Registered application id sent with questions.
	Timeout     time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
}

// DefaultConfig returns the configuration of a stock local install.
func DefaultConfig() Config {
	return Config{BaseURL: DefaultBaseURL}
}

// LoadConfig builds a Config from defaults, the YAML file at path, and
// PIECES_* environment variables, in increasing precedence. Only the
// prefixed variables are read; a bare MODEL or TIMEOUT is ignored. An empty path
// skips the file. Environment variables referenced as ${VAR} or $VAR in the
// YAML are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
		if err != nil {
			return Config{}, fmt.Errorf("piecesos: load config: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("piecesos: parse config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("piecesos: env config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("piecesos: config: %w", err)
	}
	return nil
}

// SaveConfig writes cfg to path as YAML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("piecesos: create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("piecesos: marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config file, not secret
		return fmt.Errorf("piecesos: write config: %w", err)
	}

	return nil
}

// SaveModel sets the model key of the YAML file at path and leaves the rest
// of the file as written, so ${VAR} references and comments survive. A
// missing file is created from DefaultConfig.
func SaveModel(path, model string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		cfg.Model = model
		return SaveConfig(path, cfg)
	}
	if err != nil {
		return fmt.Errorf("piecesos: load config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("piecesos: parse config: %w", err)
	}

	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}

	root := doc.Content[0]
	if doc.Kind != yaml.DocumentNode || root.Kind != yaml.MappingNode {
		return fmt.Errorf("piecesos: parse config: %s is not a mapping", path)
	}

	setScalar(root, "model", model)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("piecesos: marshal config: %w", err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil { //nolint:gosec // config file, not secret
		return fmt.Errorf("piecesos: write config: %w", err)
	}

	return nil
}

// setScalar sets key to a string value in mapping, appending the key when it
// is absent.
func setScalar(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
			return
		}
	}

	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}
