package session

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ResolveAuthorizeEndpoint discovers the identity provider's authorize
// endpoint from its OIDC issuer URL. Use it to fill Endpoints.Authorize
// when the deployment configures an issuer instead of a login URL.
func ResolveAuthorizeEndpoint(ctx context.Context, issuer string) (string, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", errors.Wrap(err, "[ResolveAuthorizeEndpoint] oidc.NewProvider")
	}

	var endpoint oauth2.Endpoint = provider.Endpoint()
	if endpoint.AuthURL == "" {
		return "", errors.New("[ResolveAuthorizeEndpoint] issuer advertises no authorization endpoint")
	}
	return endpoint.AuthURL, nil
}
