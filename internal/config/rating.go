package config

import (
	"time"
)

type RatingConfig struct {
	// StatsCacheDuration is how long per-user rating stats stay cached.
	StatsCacheDuration time.Duration `yaml:"stats_cache_ttl"`
	// ResetEmptyAggregate zeroes a tutor's average and count once their last
	// parent rating is deleted instead of leaving the previous values.
	ResetEmptyAggregate bool `yaml:"reset_empty_aggregate"`
}

func loadRatingConfig() *RatingConfig {
	return &RatingConfig{
		StatsCacheDuration:  getEnvAsDuration("RATING_STATS_CACHE_TTL", 10*time.Minute),
		ResetEmptyAggregate: getEnvAsBool("RATING_RESET_EMPTY_AGGREGATE", true),
	}
}
