package config

type ResolverConfig struct {
	TimeoutSeconds     int      `yaml:"timeoutSeconds"`
	MaxRedirects       int      `yaml:"maxRedirects"`
	MaxPageSizeBytes   int64    `yaml:"maxPageSizeBytes"`
	UserAgent          string   `yaml:"userAgent"`
	DefaultLanguage    string   `yaml:"defaultLanguage"`
	NumWords           int      `yaml:"numWords"`
	NumTitleWords      int      `yaml:"numTitleWords"`
	MaxLength          int      `yaml:"maxLength"`
	MaxTitleLength     int      `yaml:"maxTitleLength"`
	DisallowedNetworks []string `yaml:"disallowedNetworks,flow"`
	AllowedNetworks    []string `yaml:"allowedNetworks,flow"`
	ProxyURL           string   `yaml:"proxyUrl"`
	UnsafeCertificates bool     `yaml:"previewUnsafeCertificates"`
	DnsCacheSeconds    int      `yaml:"dnsCacheSeconds"`
}
