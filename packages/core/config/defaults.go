package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30000, // 30 seconds
		ValidateSSL: BoolPtr(true),
		Proxy:       "",
		Headers:     nil,
		HistoryPath: "",
		NoColor:     BoolPtr(false),
		Verbose:     BoolPtr(false),
	}
}
