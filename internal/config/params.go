package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"pitchflow/internal/spec"
)

const SupportedSchema = "v1"

const envPrefix = "PITCHFLOW_"

const (
	DefaultTestSize     = 0.2
	DefaultTrainPath    = "data/processed_train.csv"
	DefaultTestPath     = "data/processed_test.csv"
	DefaultPipelinePath = "data/pipeline.pkl"
	DefaultReportPath   = "data/prepare_report.yml"
)

var ErrInvalidParams = errors.New("invalid params")

// LoadParams reads the `features` section of a params YAML and overlays
// env-vars (prefix `PITCHFLOW_`, nesting `__`, e.g.
// PITCHFLOW_FEATURES__CHI2PERCENTILE=50).
func LoadParams(path string) (spec.Features, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return spec.Features{}, fmt.Errorf("params %s: %w", path, err)
	}
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return spec.Features{}, fmt.Errorf("params schema_version %q not supported (want %q)", sv, SupportedSchema)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return spec.Features{}, err
	}
	// a zero percentile is valid, so absence has to be checked on the raw keys
	if !k.Exists("features.chi2percentile") {
		return spec.Features{}, fmt.Errorf("%w: features.chi2percentile is required", ErrInvalidParams)
	}

	var f spec.File
	if err := k.Unmarshal("", &f); err != nil {
		return spec.Features{}, fmt.Errorf("params %s: %w", path, err)
	}
	cfg := f.Features
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func applyDefaults(c *spec.Features) {
	if c.TestSize == 0 {
		c.TestSize = DefaultTestSize
	}
	if c.Remainder == "" {
		c.Remainder = spec.RemainderDrop
	}
	if c.TrainPath == "" {
		c.TrainPath = DefaultTrainPath
	}
	if c.TestPath == "" {
		c.TestPath = DefaultTestPath
	}
	if c.PipelinePath == "" {
		c.PipelinePath = DefaultPipelinePath
	}
	if c.ReportPath == "" {
		c.ReportPath = DefaultReportPath
	}
	if len(c.Sinks) == 0 {
		c.Sinks = []string{"csv"}
	}
	if c.Kafka.TrainTopic == "" {
		c.Kafka.TrainTopic = "processed_train"
	}
	if c.Kafka.TestTopic == "" {
		c.Kafka.TestTopic = "processed_test"
	}
	if c.Stdout.MaxRows == 0 {
		c.Stdout.MaxRows = 5
	}
}

func Validate(c spec.Features) error {
	if c.DataPath == "" {
		return fmt.Errorf("%w: features.data_path is required", ErrInvalidParams)
	}
	if c.Chi2Percentile < 0 || c.Chi2Percentile > 100 {
		return fmt.Errorf("%w: features.chi2percentile %v outside [0,100]", ErrInvalidParams, c.Chi2Percentile)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("%w: features.test_size %v outside (0,1)", ErrInvalidParams, c.TestSize)
	}
	switch c.Remainder {
	case spec.RemainderPassthrough, spec.RemainderDrop:
	default:
		return fmt.Errorf("%w: features.remainder %q (want passthrough|drop)", ErrInvalidParams, c.Remainder)
	}
	for _, s := range c.Sinks {
		if s == "kafka" && len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("%w: kafka sink needs features.kafka.brokers", ErrInvalidParams)
		}
	}
	return nil
}
