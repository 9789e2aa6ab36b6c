package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/redhat-developer/openshift-checker/internal/platform"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAnalyzerName = "doa"
	DefaultTimeout      = 2 * time.Minute
	DefaultWaitDelay    = 5 * time.Second
	DefaultParallel     = 4
)

type Config struct {
	Version  int          `yaml:"version"` // fixed 0 for now
	Verbose  bool         `yaml:"verbose"`
	Provider ProviderInfo `yaml:"provider"`
	Analyzer Analyzer     `yaml:"analyzer"`
	Check    CheckConfig  `yaml:"check"`
}

// Analyzer describes where the analyzer is installed and how it is run.
type Analyzer struct {
	Root      string            `yaml:"root"`   // install root, empty => directory of the running executable
	Name      string            `yaml:"name"`   // base name of the binary
	Layout    string            `yaml:"layout"` // "variant" | "single"
	Timeout   time.Duration     `yaml:"timeout"`
	WaitDelay time.Duration     `yaml:"wait_delay"`
	Env       map[string]string `yaml:"env,omitempty"`
}

type CheckConfig struct {
	Parallel int `yaml:"parallel"`
}

func DefaultConfig() Config {
	return Config{
		Provider: ProviderInfo{
			ID:   "openshift-checker",
			Name: "OpenShift Checker",
			Icon: "./icon.png",
		},
		Analyzer: Analyzer{
			Name:      DefaultAnalyzerName,
			Layout:    string(platform.LayoutVariant),
			Timeout:   DefaultTimeout,
			WaitDelay: DefaultWaitDelay,
		},
		Check: CheckConfig{
			Parallel: DefaultParallel,
		},
	}
}

// LoadConfig decodes YAML from r on top of DefaultConfig and validates it.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Version != 0 {
		return fmt.Errorf("config version %d is not supported, expected 0", c.Version)
	}
	if c.Analyzer.Name == "" {
		return errors.New("analyzer.name: must not be empty")
	}
	if strings.ContainsAny(c.Analyzer.Name, `/\`) {
		return fmt.Errorf("analyzer.name: %q must be a base name", c.Analyzer.Name)
	}
	if _, err := platform.ParseLayout(c.Analyzer.Layout); err != nil {
		return fmt.Errorf("analyzer.layout: %w", err)
	}
	if c.Analyzer.Timeout < 0 {
		return fmt.Errorf("analyzer.timeout: negative value %s", c.Analyzer.Timeout)
	}
	if c.Analyzer.WaitDelay < 0 {
		return fmt.Errorf("analyzer.wait_delay: negative value %s", c.Analyzer.WaitDelay)
	}
	if c.Check.Parallel < 1 {
		return fmt.Errorf("check.parallel: must be at least 1, got %d", c.Check.Parallel)
	}
	if c.Provider.ID == "" {
		return errors.New("provider.id: must not be empty")
	}
	return nil
}

// Environ returns the configured environment in KEY=value form, sorted by key.
// Values starting with $ are expanded from the current environment.
func (a Analyzer) Environ() []string {
	keys := make([]string, 0, len(a.Env))
	for k := range a.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		v := a.Env[k]
		if strings.HasPrefix(v, "$") {
			v = os.ExpandEnv(v)
		}
		env = append(env, strings.ToUpper(k)+"="+v)
	}
	return env
}
