package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchflow/internal/dataset"
	"pitchflow/internal/preprocess"
	"pitchflow/internal/spec"
	"pitchflow/internal/transform"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBranchCmd(t *testing.T) {
	out, err := run(t, "branch")
	require.NoError(t, err)
	assert.Equal(t, "Count from add_one - 1\nCount from add_two - 2\nThe creature is dog\nThe final count is 2\n", out)
}

func TestPrepareCmd(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "matches.csv")
	csv := ",HomeTeam,FTHG,FTAG,HM1,HM2,HM3,HM4,HM5,AM1,AM2,AM3,AM4,AM5,HTFormPtsStr,ATFormPtsStr\n" +
		"0,A,2,1,W,W,L,D,W,L,L,W,D,D,WWLDW,LLWDD\n" +
		"1,B,0,0,D,L,W,W,W,W,W,W,W,L,DLWWW,WWWWL\n" +
		"2,A,1,3,L,L,L,D,W,W,D,W,L,W,LLLDW,WDWLW\n" +
		"3,C,4,0,W,W,W,W,W,L,L,L,L,L,WWWWW,LLLLL\n" +
		"4,B,1,2,M,D,L,W,D,W,W,L,D,W,MDLWD,WWLDW\n"
	require.NoError(t, os.WriteFile(data, []byte(csv), 0o644))

	params := filepath.Join(dir, "params.yml")
	yml := "features:\n" +
		"  data_path: " + data + "\n" +
		"  chi2percentile: 50\n" +
		"  random_state: 7\n" +
		"  train_path: " + filepath.Join(dir, "train.csv") + "\n" +
		"  test_path: " + filepath.Join(dir, "test.csv") + "\n" +
		"  pipeline_path: " + filepath.Join(dir, "pipeline.pkl") + "\n" +
		"  report_path: " + filepath.Join(dir, "report.yml") + "\n"
	require.NoError(t, os.WriteFile(params, []byte(yml), 0o644))

	out, err := run(t, "prepare", "--params", params)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "prepared 5 rows: 4 train, 1 test"), out)

	for _, name := range []string{"train.csv", "test.csv", "pipeline.pkl", "report.yml"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestPrepareCmd_MissingParams(t *testing.T) {
	_, err := run(t, "prepare", "--params", filepath.Join(t.TempDir(), "none.yml"))
	require.Error(t, err)
}

func TestApplyAll(t *testing.T) {
	train := dataset.New([]string{"Form", "HomeWins"}, [][]string{{"W", "3"}, {"L", "0"}})
	p := preprocess.New(100, spec.RemainderPassthrough)
	require.NoError(t, p.Fit(train, []string{"H", "A"}))

	in := dataset.New([]string{"Form", "HomeWins"}, [][]string{{"L", "2"}, {"W", "5"}})
	out, err := applyAll(context.Background(), transform.NewInProcessClient(p), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"Form", "HomeWins"}, out.Header)
	assert.Equal(t, [][]string{{"0", "2"}, {"1", "5"}}, out.Rows)
}
