package ingest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"venuepipe/internal/config"
)

// KafkaSource reads from a consumer group. Offsets are committed by the
// reader as messages are handed out, independently of persistence.
type KafkaSource struct {
	reader *kafka.Reader
}

func NewKafkaSource(cfg config.KafkaConfig) (*KafkaSource, error) {
	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, err
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		Dialer:      dialer,
		StartOffset: startOffset(cfg.AutoOffsetReset),
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     cfg.PollTimeout,
	})
	return &KafkaSource{reader: reader}, nil
}

func (s *KafkaSource) Poll(ctx context.Context, timeout time.Duration) (*Message, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	m, err := s.reader.ReadMessage(pollCtx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}
	return &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
	}, nil
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

func startOffset(policy string) int64 {
	switch strings.ToLower(policy) {
	case "earliest", "smallest", "beginning":
		return kafka.FirstOffset
	default:
		return kafka.LastOffset
	}
}

func newDialer(cfg config.KafkaConfig) (*kafka.Dialer, error) {
	dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	protocol := strings.ToUpper(cfg.SecurityProtocol)
	if protocol == "SSL" || protocol == "SASL_SSL" {
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if strings.HasPrefix(protocol, "SASL_") {
		mech, err := saslMechanism(cfg.SASLMechanism, cfg.Username, cfg.Password)
		if err != nil {
			return nil, err
		}
		dialer.SASLMechanism = mech
	}
	return dialer, nil
}

func saslMechanism(name, username, password string) (sasl.Mechanism, error) {
	switch strings.ToUpper(name) {
	case "", "PLAIN":
		return plain.Mechanism{Username: username, Password: password}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, username, password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, username, password)
	default:
		return nil, fmt.Errorf("unsupported sasl mechanism: %q", name)
	}
}
