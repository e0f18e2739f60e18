package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pitchflow/internal/preprocess"
	"pitchflow/internal/spec"
)

type ColumnScore struct {
	Name     string  `yaml:"name"`
	Score    float64 `yaml:"score"`
	PValue   float64 `yaml:"pvalue"`
	Selected bool    `yaml:"selected"`
}

// Report summarises a run; it is written next to the outputs.
type Report struct {
	DataPath       string        `yaml:"data_path"`
	Chi2Percentile float64       `yaml:"chi2percentile"`
	TestSize       float64       `yaml:"test_size"`
	Seed           uint64        `yaml:"seed"`
	Seeded         bool          `yaml:"seeded"`
	Rows           int           `yaml:"rows"`
	TrainRows      int           `yaml:"train_rows"`
	TestRows       int           `yaml:"test_rows"`
	Columns        []string      `yaml:"columns"`
	Categorical    []ColumnScore `yaml:"categorical"`
	Outputs        Outputs       `yaml:"outputs"`
	FinishedAt     time.Time     `yaml:"finished_at"`
}

type Outputs struct {
	Train    string `yaml:"train"`
	Test     string `yaml:"test"`
	Pipeline string `yaml:"pipeline"`
}

func newReport(params spec.Features, seed uint64, rows int, out *Output, pipe *preprocess.Pipeline) Report {
	rep := Report{
		DataPath:       params.DataPath,
		Chi2Percentile: params.Chi2Percentile,
		TestSize:       params.TestSize,
		Seed:           seed,
		Seeded:         params.RandomState != nil,
		Rows:           rows,
		TrainRows:      out.Train.Len(),
		TestRows:       out.Test.Len(),
		Columns:        out.Train.Header[1:],
		FinishedAt:     time.Now().UTC(),
	}
	for k, name := range pipe.Categorical {
		rep.Categorical = append(rep.Categorical, ColumnScore{
			Name:     name,
			Score:    pipe.Selector.Scores[k],
			PValue:   pipe.Selector.PValues[k],
			Selected: pipe.Selector.Mask[k],
		})
	}
	rep.Outputs = Outputs{Train: params.TrainPath, Test: params.TestPath, Pipeline: params.PipelinePath}
	return rep
}

func (r Report) Write(path string) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
