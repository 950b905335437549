package auditsink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SentinelMesh/AccessGate/pkg/domain/audit"
	"github.com/SentinelMesh/AccessGate/pkg/domain/playbook"
	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// KafkaSink publishes audit records to a Kafka topic for downstream SIEM
// consumption. Records are keyed by user id so one user's trail stays
// ordered within a partition.
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

type envelope struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

func NewKafkaSink(host, port, topic string) (*KafkaSink, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": fmt.Sprintf("%s:%s", host, port),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaSink{
		producer: producer,
		topic:    topic,
	}, nil
}

func (s *KafkaSink) AppendDecision(_ context.Context, record audit.DecisionRecord) error {
	return s.produce(envelope{Kind: "decision", Payload: record}, record.UserID)
}

func (s *KafkaSink) AppendExecution(_ context.Context, result playbook.ExecutionResult) error {
	return s.produce(envelope{Kind: "execution", Payload: result}, result.Playbook)
}

func (s *KafkaSink) produce(evt envelope, key string) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = s.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &s.topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          data,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce audit event: %w", err)
	}

	e := <-deliveryChan
	m, ok := e.(*kafka.Message)
	if !ok {
		return fmt.Errorf("unexpected delivery event %T", e)
	}
	if m.TopicPartition.Error != nil {
		return fmt.Errorf("audit delivery failed: %w", m.TopicPartition.Error)
	}
	return nil
}

func (s *KafkaSink) Close() {
	if s.producer != nil {
		s.producer.Flush(5000)
		s.producer.Close()
	}
}
