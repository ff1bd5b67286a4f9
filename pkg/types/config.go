package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Session verification. The JWKS endpoint belongs to the external
	// identity provider; this service only verifies.
	IssuerURL string `envconfig:"ISSUER_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Media storage. Uploads happen elsewhere; the service resolves and
	// verifies already-uploaded object keys.
	MediaBucket    string `envconfig:"MEDIA_BUCKET" default:"helplink-media"`
	MediaBaseURL   string `envconfig:"MEDIA_BASE_URL"`
	MediaRegion    string `envconfig:"MEDIA_REGION" default:"us-east-1"`
	MediaVerifyRef bool   `envconfig:"MEDIA_VERIFY_REF" default:"false"`
}
