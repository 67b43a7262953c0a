package webhook

// SecurityConfig holds webhook security settings.
type SecurityConfig struct {
	SecretToken     string // shared secret Telegram echoes back on each update
	RateLimitPerMin int    // max requests per minute per source
}
