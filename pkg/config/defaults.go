package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "reservio"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisConnTimeout = 5 * time.Second

	DefaultPort = "8080"

	// An order of magnitude above the typical guarded-section latency, so a
	// lease does not expire under a holder that is still mid-operation.
	DefaultLockTTL = 10 * time.Second

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTimezone           = "Europe/Warsaw"
	DefaultOpenOfDay          = "12:00"
	DefaultCloseOfDay         = "22:00"
	DefaultSlotStepMin        = 15
	DefaultDefaultDurationMin = 60

	DefaultPaginationLimit = 100
)
