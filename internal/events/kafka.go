package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const deliveryTimeout = 5 * time.Second

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Producer{writer: w}, nil
}

func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// EnsureTopics creates the forum topics through the cluster controller found via broker.
// Topics that already exist are left as they are.
func EnsureTopics(ctx context.Context, broker string, topics ...string) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("kafka: dial: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka: controller: %w", err)
	}

	admin, err := kafka.DialContext(ctx, "tcp", controllerAddr(controller))
	if err != nil {
		return fmt.Errorf("kafka: dial controller: %w", err)
	}
	defer admin.Close()

	return ignoreExisting(admin.CreateTopics(topicConfigs(topics)...))
}

func controllerAddr(b kafka.Broker) string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

func topicConfigs(topics []string) []kafka.TopicConfig {
	cfgs := make([]kafka.TopicConfig, 0, len(topics))
	for _, t := range topics {
		cfgs = append(cfgs, kafka.TopicConfig{Topic: t, NumPartitions: 1, ReplicationFactor: 1})
	}
	return cfgs
}

func ignoreExisting(err error) error {
	if err == nil || errors.Is(err, kafka.TopicAlreadyExists) {
		return nil
	}
	return fmt.Errorf("kafka: create topics: %w", err)
}
