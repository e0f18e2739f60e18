package pipeline

import (
	"fmt"

	"pitchflow/internal/config"
	"pitchflow/internal/spec"
	"pitchflow/sink"
	"pitchflow/sink/csvfile"
	"pitchflow/sink/kafka"
	"pitchflow/sink/stdout"
	"pitchflow/source"
	srccsv "pitchflow/source/csvfile"
)

// Compile loads params.yml and builds a runner with its source and sinks.
func Compile(path string) (*Runner, error) {
	params, err := config.LoadParams(path)
	if err != nil {
		return nil, err
	}
	return Build(params)
}

func Build(params spec.Features) (*Runner, error) {
	r := NewRunner(params)

	src, err := source.NewAdapter("csv")
	if err != nil {
		return nil, err
	}
	if err := src.Configure(srccsv.Config{Path: params.DataPath}); err != nil {
		return nil, err
	}
	r.SetSource(src)

	for _, name := range params.Sinks {
		s, err := sink.NewAdapter(name)
		if err != nil {
			return nil, err
		}
		switch name {
		case "csv":
			err = s.Configure(csvfile.Config{Paths: map[string]string{
				sink.Train: params.TrainPath,
				sink.Test:  params.TestPath,
			}})
		case "stdout":
			err = s.Configure(stdout.Config{
				PrintRows: params.Stdout.PrintRows,
				MaxRows:   params.Stdout.MaxRows,
			})
		case "kafka":
			err = s.Configure(kafka.Config{
				Brokers: params.Kafka.Brokers,
				Topics: map[string]string{
					sink.Train: params.Kafka.TrainTopic,
					sink.Test:  params.Kafka.TestTopic,
				},
				Acks: params.Kafka.Acks,
			})
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("sink %s: %w", name, err)
		}
		r.AddSink(name, s)
	}
	return r, nil
}
