package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"pitchflow/sink"
)

type Config struct {
	Brokers []string
	// Topics maps partition names to topics.
	Topics map[string]string
	Acks   int16 // 0,1,-1
}

// driver publishes one JSON object per row. A leading unnamed index column
// becomes the message key.
type driver struct {
	cfg Config
	p   sarama.SyncProducer
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config")
	}
	d.cfg = cfg

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	var err error
	d.p, err = sarama.NewSyncProducer(cfg.Brokers, sc)
	return err
}

func (d *driver) Push(p sink.Partition) error {
	topic, ok := d.cfg.Topics[p.Name]
	if !ok {
		return fmt.Errorf("kafka-sink: no topic for partition %q", p.Name)
	}
	keyed := len(p.Frame.Header) > 0 && p.Frame.Header[0] == ""

	msgs := make([]*sarama.ProducerMessage, 0, p.Frame.Len())
	for i, row := range p.Frame.Rows {
		rec := p.Frame.Record(i)
		delete(rec, "")
		val, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		m := &sarama.ProducerMessage{Topic: topic, Value: sarama.ByteEncoder(val)}
		if keyed {
			m.Key = sarama.StringEncoder(row[0])
		}
		msgs = append(msgs, m)
	}
	if len(msgs) == 0 {
		return nil
	}
	return d.p.SendMessages(msgs)
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	err := d.p.Close()
	d.p = nil
	return err
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
