package spec

// Remainder controls what happens to numeric columns the categorical
// pipeline does not touch.
type Remainder string

const (
	RemainderPassthrough Remainder = "passthrough"
	RemainderDrop        Remainder = "drop"
)

type KafkaSink struct {
	Brokers    []string `koanf:"brokers"`
	TrainTopic string   `koanf:"train_topic"`
	TestTopic  string   `koanf:"test_topic"`
	Acks       int16    `koanf:"required_acks"` // 0,1,-1
}

type StdoutSink struct {
	PrintRows bool `koanf:"print_rows"`
	MaxRows   int  `koanf:"max_rows"`
}

// Features is the `features` section of params.yml.
type Features struct {
	DataPath       string  `koanf:"data_path"`
	Chi2Percentile float64 `koanf:"chi2percentile"`

	TestSize float64 `koanf:"test_size"`
	// RandomState seeds the shuffle; nil draws a fresh seed per run.
	RandomState *uint64   `koanf:"random_state"`
	Remainder   Remainder `koanf:"remainder"`

	TrainPath    string `koanf:"train_path"`
	TestPath     string `koanf:"test_path"`
	PipelinePath string `koanf:"pipeline_path"`
	ReportPath   string `koanf:"report_path"`

	Sinks  []string   `koanf:"sinks"`
	Kafka  KafkaSink  `koanf:"kafka"`
	Stdout StdoutSink `koanf:"stdout"`
}

type File struct {
	SchemaVersion string   `koanf:"schema_version"`
	Features      Features `koanf:"features"`
}
