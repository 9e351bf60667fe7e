// pkg/config/config.go
package config

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/boxprint/boxprint/pkg/classifier"
)

var validate = validator.New()

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex // To protect currentConfig during runtime updates
}

// NewManager creates a Manager with its own koanf instance.
func NewManager() *Manager {
	return &Manager{koanfInstance: koanf.New(".")}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
// These serve as the baseline configuration if no other sources override them.
func DefaultConfig() Config {
	cls := classifier.DefaultConfig()
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Extract: ExtractConfig{KeepFinalNumber: false},
		Likelihood: LikelihoodConfig{
			SelectionThreshold: math.Log10(2),
			SaliencyThreshold:  1,
			OSSplit:            []string{"Android", "iOS"},
		},
		Classifier: ClassifierConfig{
			Backend:        cls.Backend,
			MinSamplesLeaf: cls.MinSamplesLeaf,
			MaxDepth:       cls.MaxDepth,
			Balanced:       cls.Balanced,
		},
		Experiment: ExperimentConfig{Concurrency: 1},
	}
}

// Load loads configuration from the default sources: defaults, the YAML file
// at customConfigFilePath, BOXPRINT_* environment variables and flags.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadWithSources(DefaultSources(customConfigFilePath, flags, debug))
}

// LoadWithSources loads sources in ascending priority, then unmarshals and
// validates the merged configuration.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := slices.Clone(sources)
	slices.SortStableFunc(ordered, func(a, b ConfigSource) int { return a.Priority() - b.Priority() })

	for _, src := range ordered {
		if err := src.Load(m.koanfInstance); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := Validate(newCfg); err != nil {
		return err
	}
	m.currentConfig = newCfg
	return nil
}

// Validate checks field constraints and that the classifier backend is registered.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !slices.Contains(classifier.Backends(), cfg.Classifier.Backend) {
		return fmt.Errorf("invalid configuration: classifier.backend %q (want one of %v)", cfg.Classifier.Backend, classifier.Backends())
	}
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := m.currentConfig
	cfg.Likelihood.OSSplit = slices.Clone(cfg.Likelihood.OSSplit)
	return cfg
}

// Koanf exposes the merged key space, e.g. for "config show".
func (m *Manager) Koanf() *koanf.Koanf {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance
}

// ClassifierConfig converts the classifier section for classifier.NewTrainer.
func (c Config) ClassifierConfig() classifier.Config {
	cfg := classifier.DefaultConfig()
	cfg.Backend = c.Classifier.Backend
	cfg.MinSamplesLeaf = c.Classifier.MinSamplesLeaf
	cfg.MaxDepth = c.Classifier.MaxDepth
	cfg.Balanced = c.Classifier.Balanced
	return cfg
}

// DefaultConfigAsMap converts the DefaultConfig struct to a map[string]interface{}
// for Koanf's confmap.Provider. This is a bit manual but ensures Koanf knows all keys.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,

		"workspace.dir": def.Workspace.Dir,
		"taxonomy.file": def.Taxonomy.File,

		"extract.keep_final_number": def.Extract.KeepFinalNumber,

		"likelihood.selection_threshold": def.Likelihood.SelectionThreshold,
		"likelihood.saliency_threshold":  def.Likelihood.SaliencyThreshold,
		"likelihood.os_split":            def.Likelihood.OSSplit,

		"classifier.backend":          def.Classifier.Backend,
		"classifier.min_samples_leaf": def.Classifier.MinSamplesLeaf,
		"classifier.max_depth":        def.Classifier.MaxDepth,
		"classifier.balanced":         def.Classifier.Balanced,

		"experiment.concurrency": def.Experiment.Concurrency,
		"experiment.telemetry":   def.Experiment.Telemetry,
	}
}

// BindFlags defines command-line flags corresponding to configuration settings.
// Flag names equal koanf keys so posflag maps them directly.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()

	var debug bool
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.String("log.level", defaults.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log.format", defaults.Log.Format, "Log format (console, json)")
	flags.String("workspace.dir", defaults.Workspace.Dir, "Workspace root directory")
	flags.String("taxonomy.file", defaults.Taxonomy.File, "Taxonomy YAML file overriding the embedded one")
}
