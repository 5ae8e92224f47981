package config

import "time"

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

const (
	DefaultEnvironment = EnvironmentDevelopment
	DefaultLogLevel    = "info"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "voyageiq"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 1 * time.Hour
	DefaultMaxRequestSize    = 10 * 1024 // 10KB, JSON bodies only

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPageLimit = 10
	MaxPageLimit     = 100

	DefaultJWTCookieName = "jwt"

	DefaultCORSAllowedOrigins = "http://localhost:5173"
	DefaultKafkaTopic         = "voyageiq.resource-events"
)
