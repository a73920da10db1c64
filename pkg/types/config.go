package types

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Remote record gateway
	GatewayURL        string `envconfig:"GATEWAY_URL"`
	GatewayTimeoutSec uint   `envconfig:"GATEWAY_TIMEOUT_SEC" default:"30"`

	ServerPort      uint `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	// Evidence images. ImageBackend is "gateway" or "s3".
	ImageBackend    string `envconfig:"IMAGE_BACKEND" default:"gateway"`
	MaxUploadBytes  int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"` // 5 MiB
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3KeyPrefix     string `envconfig:"S3_KEY_PREFIX" default:"evidence"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`

	// Accounts
	BcryptCost           int  `envconfig:"BCRYPT_COST" default:"10"`
	AllowLegacyPasswords bool `envconfig:"ALLOW_LEGACY_PASSWORDS" default:"false"`

	// Shared in-flight guard. Empty RedisAddr keeps tokens in process.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	GuardTTLSec   uint   `envconfig:"GUARD_TTL_SEC" default:"60"`

	// Complaint events. Empty AMQPURL disables publishing.
	AMQPURL        string `envconfig:"AMQP_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"barangay.events"`

	// Auth Configuration
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"barangay_session"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}

const (
	ImageBackendGateway = "gateway"
	ImageBackendS3      = "s3"
)
