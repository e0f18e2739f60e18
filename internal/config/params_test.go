package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchflow/internal/spec"
)

func writeParams(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "params.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write params: %v", err)
	}
	return p
}

func TestLoadParams_Defaults(t *testing.T) {
	p := writeParams(t, `features:
  data_path: data/final_dataset.csv
  chi2percentile: 50
`)
	cfg, err := LoadParams(p)
	require.NoError(t, err)

	assert.Equal(t, "data/final_dataset.csv", cfg.DataPath)
	assert.Equal(t, 50.0, cfg.Chi2Percentile)
	assert.Equal(t, DefaultTestSize, cfg.TestSize)
	assert.Equal(t, spec.RemainderDrop, cfg.Remainder)
	assert.Equal(t, DefaultTrainPath, cfg.TrainPath)
	assert.Equal(t, DefaultTestPath, cfg.TestPath)
	assert.Equal(t, DefaultPipelinePath, cfg.PipelinePath)
	assert.Equal(t, []string{"csv"}, cfg.Sinks)
	assert.Nil(t, cfg.RandomState)
}

func TestLoadParams_SeedAndEnvOverride(t *testing.T) {
	p := writeParams(t, `schema_version: v1
features:
  data_path: in.csv
  chi2percentile: 10
  random_state: 42
`)
	t.Setenv("PITCHFLOW_FEATURES__CHI2PERCENTILE", "75")
	t.Setenv("PITCHFLOW_FEATURES__TEST_SIZE", "0.25")

	cfg, err := LoadParams(p)
	require.NoError(t, err)
	require.NotNil(t, cfg.RandomState)
	assert.Equal(t, uint64(42), *cfg.RandomState)
	assert.Equal(t, 75.0, cfg.Chi2Percentile)
	assert.Equal(t, 0.25, cfg.TestSize)
}

func TestLoadParams_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing data_path":      "features:\n  chi2percentile: 50\n",
		"missing chi2percentile": "features:\n  data_path: a.csv\n",
		"percentile range":       "features:\n  data_path: a.csv\n  chi2percentile: 150\n",
		"remainder":              "features:\n  data_path: a.csv\n  chi2percentile: 5\n  remainder: keep\n",
		"kafka brokers":          "features:\n  data_path: a.csv\n  chi2percentile: 5\n  sinks: [kafka]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadParams(writeParams(t, body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams), "want ErrInvalidParams, got %v", err)
		})
	}
}

func TestLoadParams_ZeroPercentileIsExplicit(t *testing.T) {
	cfg, err := LoadParams(writeParams(t, "features:\n  data_path: a.csv\n  chi2percentile: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Chi2Percentile)

	t.Setenv("PITCHFLOW_FEATURES__CHI2PERCENTILE", "30")
	cfg, err = LoadParams(writeParams(t, "features:\n  data_path: a.csv\n"))
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Chi2Percentile)
}

func TestLoadParams_InvalidSchema(t *testing.T) {
	p := writeParams(t, "schema_version: v999\nfeatures:\n  data_path: a.csv\n")
	if _, err := LoadParams(p); err == nil {
		t.Fatal("expected error for invalid schema_version")
	}
}

func TestLoadParams_MissingFile(t *testing.T) {
	if _, err := LoadParams(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing params file")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	p := writeParams(t, "features:\n  data_path: a.csv\n  chi2percentile: 5\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan spec.Features, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, p, func(f spec.Features) { got <- f }) }()

	// give the watcher a moment to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(p, []byte("features:\n  data_path: b.csv\n  chi2percentile: 5\n"), 0o644))

	select {
	case f := <-got:
		assert.Equal(t, "b.csv", f.DataPath)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestWatch_ReloadsOnRenameSave(t *testing.T) {
	p := writeParams(t, "features:\n  data_path: a.csv\n  chi2percentile: 5\n")
	dir := filepath.Dir(p)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan spec.Features, 16)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, p, func(f spec.Features) { got <- f }) }()
	time.Sleep(100 * time.Millisecond)

	// two saves in a row: the second one must still be seen
	for i, data := range []string{"b.csv", "c.csv"} {
		tmp := filepath.Join(dir, ".params.yml.tmp")
		body := "features:\n  data_path: " + data + "\n  chi2percentile: 5\n"
		require.NoError(t, os.WriteFile(tmp, []byte(body), 0o644))
		require.NoError(t, os.Rename(tmp, p))

		deadline := time.After(5 * time.Second)
	wait:
		for {
			select {
			case f := <-got:
				if f.DataPath == data {
					break wait
				}
			case <-deadline:
				t.Fatalf("save %d: no reload after rename", i)
			}
		}
	}
	cancel()
	require.NoError(t, <-done)
}
