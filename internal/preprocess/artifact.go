package preprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"pitchflow/internal/spec"
)

const (
	artifactKind    = "pitchflow.preprocess.Pipeline"
	artifactVersion = 1
)

// Marshal encodes a fitted pipeline as a binary google.protobuf.Struct.
func (p *Pipeline) Marshal() ([]byte, error) {
	if !p.Fitted() {
		return nil, ErrNotFitted
	}
	cats := make([]any, len(p.Categorical))
	for k, name := range p.Categorical {
		cats[k] = map[string]any{
			"name":     name,
			"classes":  strs(p.Encoders[k].Classes),
			"score":    p.Selector.Scores[k],
			"pvalue":   p.Selector.PValues[k],
			"selected": p.Selector.Mask[k],
		}
	}
	st, err := structpb.NewStruct(map[string]any{
		"kind":        artifactKind,
		"version":     artifactVersion,
		"percentile":  p.Selector.Percentile,
		"remainder":   string(p.Remainder),
		"fitted_at":   p.FittedAt.Format(time.RFC3339Nano),
		"numeric":     strs(p.Numeric),
		"categorical": cats,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func Unmarshal(b []byte) (*Pipeline, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("pipeline artifact: %w", err)
	}
	f := st.GetFields()
	if k := f["kind"].GetStringValue(); k != artifactKind {
		return nil, fmt.Errorf("pipeline artifact: unexpected kind %q", k)
	}
	if v := int(f["version"].GetNumberValue()); v != artifactVersion {
		return nil, fmt.Errorf("pipeline artifact: version %d not supported (want %d)", v, artifactVersion)
	}
	at, err := time.Parse(time.RFC3339Nano, f["fitted_at"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("pipeline artifact: fitted_at: %w", err)
	}

	p := New(f["percentile"].GetNumberValue(), spec.Remainder(f["remainder"].GetStringValue()))
	p.FittedAt = at
	p.Numeric = fromList(f["numeric"])
	for _, v := range f["categorical"].GetListValue().GetValues() {
		c := v.GetStructValue().GetFields()
		p.Categorical = append(p.Categorical, c["name"].GetStringValue())
		enc := &LabelEncoder{Classes: fromList(c["classes"])}
		enc.reindex()
		p.Encoders = append(p.Encoders, enc)
		p.Selector.Scores = append(p.Selector.Scores, c["score"].GetNumberValue())
		p.Selector.PValues = append(p.Selector.PValues, c["pvalue"].GetNumberValue())
		p.Selector.Mask = append(p.Selector.Mask, c["selected"].GetBoolValue())
	}
	return p, nil
}

// Save writes the artifact to path, creating parent directories.
func (p *Pipeline) Save(path string) error {
	b, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func Load(path string) (*Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(b)
}

func strs(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func fromList(v *structpb.Value) []string {
	vals := v.GetListValue().GetValues()
	out := make([]string, 0, len(vals))
	for _, x := range vals {
		out = append(out, x.GetStringValue())
	}
	return out
}
