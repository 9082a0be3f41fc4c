package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
)

type StatusProducer interface {
	PublishStatus(ctx context.Context, message *StatusMessage) error
	Close() error
}

type statusProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewStatusProducer(brokers []string, topic string) (StatusProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &statusProducer{producer: p, topic: topic}, nil
}

func (p *statusProducer) PublishStatus(ctx context.Context, message *StatusMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(message.BlobID),
		Value: sarama.ByteEncoder(data),
	}

	_, _, err = p.producer.SendMessage(msg)
	return err
}

func (p *statusProducer) Close() error {
	return p.producer.Close()
}
