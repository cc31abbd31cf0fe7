package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/adapters/publisher"
	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
)

// PublisherFactory creates result publishers based on configuration
type PublisherFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPublisherFactory creates a new publisher factory
func NewPublisherFactory(cfg *config.Config, logger *zap.Logger) *PublisherFactory {
	return &PublisherFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePublisher creates the publisher selected by publisher.type
func (f *PublisherFactory) CreatePublisher() (core.ResultPublisher, error) {
	publisherType := f.cfg.GetString("publisher.type")

	switch publisherType {
	case "log":
		return publisher.NewLogPublisher(f.logger.Named("results")), nil
	case "kafka":
		kafkaCfg := f.cfg.GetKafka()
		f.logger.Info("Publishing results to Kafka",
			zap.Strings("brokers", kafkaCfg.Brokers),
			zap.String("topic", kafkaCfg.Topic))
		pub, err := publisher.NewKafkaPublisher(kafkaCfg.Brokers, kafkaCfg.Topic, f.logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported publisher type: %s", publisherType)
	}
}
