package config

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetClientID() string {
	return GetEnv("CLIENT_ID", "")
}

// GetLoginURL returns the identity provider's authorize endpoint. When
// empty, the endpoint is resolved from the OIDC issuer instead.
func (OAuth) GetLoginURL() string {
	return GetEnv("LOGIN_URL", "")
}

func (OAuth) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}
