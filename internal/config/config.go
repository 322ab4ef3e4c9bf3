package config

type Config interface {
	EnvConfig
	OAuthConfig
	CatalogConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAppURL() string
	GetCachePath() string
	GetEnv() string
}

type OAuthConfig interface {
	GetClientID() string
	GetLoginURL() string
	GetOIDCIssuer() string
}

type CatalogConfig interface {
	GetAPIBase() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Catalog
}

func New() Config {
	return mainConfig{}
}
