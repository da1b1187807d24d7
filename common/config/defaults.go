package config

func NewDefaultMainConfig() MainConfig {
	return MainConfig{
		General: GeneralConfig{
			BindAddress:     "127.0.0.1",
			Port:            8000,
			LogDirectory:    "logs",
			LogColors:       false,
			JsonLogs:        false,
			LogLevel:        "info",
			TrustAnyForward: false,
		},
		Resolver: NewDefaultResolverConfig(),
		Metrics: MetricsConfig{
			Enabled:     false,
			BindAddress: "localhost",
			Port:        9000,
		},
		Sentry: SentryConfig{
			Enabled:     false,
			Dsn:         "",
			Environment: "",
			Debug:       false,
		},
	}
}

func NewDefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		TimeoutSeconds:   10,
		MaxRedirects:     10,
		MaxPageSizeBytes: 10485760, // 10mb
		UserAgent:        "", // build user agent
		DefaultLanguage:  "en-US,en",
		NumWords:         50,
		NumTitleWords:    30,
		MaxLength:        200,
		MaxTitleLength:   150,
		DisallowedNetworks: []string{
			"127.0.0.1/8",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"100.64.0.0/10",
			"169.254.0.0/16",
			"::1/128",
			"fe80::/64",
			"fc00::/7",
		},
		AllowedNetworks: []string{
			"0.0.0.0/0", // "Everything"
		},
		ProxyURL:           "",
		UnsafeCertificates: false,
		DnsCacheSeconds:    60,
	}
}
