package config

const (
	EnvEnvironment = "APP_ENV"
	EnvLogLevel    = "LOG_LEVEL"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort = "PORT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvMaxRequestSize    = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultPageLimit = "DEFAULT_PAGE_LIMIT"
	EnvMaxPageLimit     = "MAX_PAGE_LIMIT"

	EnvJWTSecret     = "JWT_SECRET"
	EnvJWTCookieName = "JWT_COOKIE_NAME"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TOPIC"
)
