package kafka

import (
	"UniMarket/internal/api/config"
	"UniMarket/internal/pkg/es"
	"UniMarket/internal/repository"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	listingConsumer sarama.ConsumerGroup
	listingHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	listingDBRepo repository.ListingRepo,
	listingESRepo es.ListingRepo,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	listingConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaListingConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	listingHandler := NewListingsHandler(listingDBRepo, listingESRepo)

	return &ConsumerManager{
		listingConsumer: listingConsumer,
		listingHandler:  listingHandler,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaListingConsumer.Topic
		log.Info("Listing consumer started", "topic", topic)
		for {
			if err := m.listingConsumer.Consume(ctx, []string{topic}, m.listingHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.listingConsumer.Close(); err != nil {
		log.Error("Failed to close listing consumer", "err", err)
	}

	return nil
}
