package common

const (
	// AuthorizationHeaderName is the HTTP header (and gRPC metadata key) that
	// carries the session bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the token in the Authorization header value.
	BearerScheme = "Bearer"

	// ProviderGoogle is the federated provider name that triggers the token exchange.
	ProviderGoogle = "google"

	// ProviderCredentials names the local identifier/secret login.
	ProviderCredentials = "credentials"
)

// BearerValue formats token as an Authorization header value.
func BearerValue(token string) string {
	return BearerScheme + " " + token
}
