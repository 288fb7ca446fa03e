package config

// DefaultUserAgent is sent when neither the config nor the command line sets one.
const DefaultUserAgent = "request/dev"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		UserAgent:       DefaultUserAgent,
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Proxy:           "",
		Headers:         nil,
		Output:          "console",
		NoColor:         BoolPtr(false),
		History:         "",
	}
}
