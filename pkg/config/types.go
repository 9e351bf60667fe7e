// pkg/config/types.go
package config

// Config is the root configuration structure for boxprint.
type Config struct {
	Log        LogConfig        `description:"Logging configuration" koanf:"log"`
	Workspace  WorkspaceConfig  `description:"Workspace configuration" koanf:"workspace"`
	Taxonomy   TaxonomyConfig   `description:"Dataset taxonomy" koanf:"taxonomy"`
	Extract    ExtractConfig    `description:"Symbol extraction" koanf:"extract"`
	Likelihood LikelihoodConfig `description:"Likelihood-ratio engine" koanf:"likelihood"`
	Classifier ClassifierConfig `description:"Classifier backend" koanf:"classifier"`
	Experiment ExperimentConfig `description:"Cross-validation harness" koanf:"experiment"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level (trace, debug, info, warn, error)" koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `description:"Log format: console | json" koanf:"format" validate:"oneof=console json"`
}

// WorkspaceConfig locates the workspace holding corpora, ratio tables and results.
type WorkspaceConfig struct {
	Dir string `description:"Workspace root directory (empty: platform default)" koanf:"dir"`
}

// TaxonomyConfig overrides the embedded dataset taxonomy.
type TaxonomyConfig struct {
	File string `description:"Taxonomy YAML file (empty: embedded)" koanf:"file"`
}

// ExtractConfig tunes symbol extraction.
type ExtractConfig struct {
	KeepFinalNumber bool `description:"Keep trailing -<digits> suffixes on box keys" koanf:"keep_final_number"`
}

// LikelihoodConfig tunes the ratio engine.
type LikelihoodConfig struct {
	SelectionThreshold float64  `description:"Minimum |log10 ratio| for vocabulary selection" koanf:"selection_threshold" validate:"gte=0"`
	SaliencyThreshold  float64  `description:"Minimum |log10 ratio| for saliency reports" koanf:"saliency_threshold" validate:"gte=0"`
	OSSplit            []string `description:"Operating systems crossed with cells in OS mode" koanf:"os_split" validate:"min=1,dive,required"`
}

// ClassifierConfig selects and tunes the classifier backend.
type ClassifierConfig struct {
	Backend        string `description:"Classifier backend: tree | bayes" koanf:"backend" validate:"required"`
	MinSamplesLeaf int    `description:"Tree: minimum rows per leaf" koanf:"min_samples_leaf" validate:"gte=1"`
	MaxDepth       int    `description:"Tree: maximum depth (0: unlimited)" koanf:"max_depth" validate:"gte=0"`
	Balanced       bool   `description:"Tree: weight classes inversely to frequency" koanf:"balanced"`
}

// ExperimentConfig tunes the cross-validation harness.
type ExperimentConfig struct {
	Concurrency int    `description:"Folds evaluated in parallel" koanf:"concurrency" validate:"gte=1"`
	Telemetry   string `description:"JSONL file receiving one event per fold (empty: disabled)" koanf:"telemetry"`
}
