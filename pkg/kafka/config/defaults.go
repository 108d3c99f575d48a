package kafka_config

import "time"

const (
	// Empty means event publishing is disabled.
	DefaultKafkaBrokers = ""
	DefaultKafkaTopic   = "reservation-events"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)
