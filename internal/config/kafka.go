package config

import (
	"time"
)

// KafkaConfig configures the rating change feed. Publishing is disabled when
// no brokers are configured.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	RatingTopic  string        `yaml:"rating_topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

func (k *KafkaConfig) Enabled() bool {
	return k != nil && len(k.Brokers) > 0
}

func loadKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		Brokers:      getEnvAsSlice("KAFKA_BROKERS", []string{}),
		RatingTopic:  getEnv("KAFKA_RATING_TOPIC", "ratings"),
		WriteTimeout: getEnvAsDuration("KAFKA_WRITE_TIMEOUT", 5*time.Second),
	}
}
