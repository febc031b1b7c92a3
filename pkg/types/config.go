package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Auth Configuration
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"session_id"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Notifications. With no server token, emails are only logged.
	PostmarkServerToken string `envconfig:"POSTMARK_SERVER_TOKEN"`
	EmailSender         string `envconfig:"EMAIL_SENDER" default:"no-reply@donationhub.local"`
	AdminNotifyEmail    string `envconfig:"ADMIN_NOTIFY_EMAIL"`
	NotifyTimeoutSec    uint   `envconfig:"NOTIFY_TIMEOUT_SEC" default:"10"`

	// Pickup dates and times arrive without a zone and are read in this one.
	PickupTimezone string `envconfig:"PICKUP_TIMEZONE" default:"Local"`

	// Donation exports
	S3BucketName   string `envconfig:"S3_BUCKET_NAME"`
	S3ExportPrefix string `envconfig:"S3_EXPORT_PREFIX" default:"exports"`
}
