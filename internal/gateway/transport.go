package gateway

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ventureops/eventadmin/internal/apperror"
)

// loginPath is the only gateway operation reachable without a stored
// credential.
const loginPath = "/login"

// authTransport injects the stored bearer credential and a correlation id
// into every outgoing request.
//
// The login endpoint is excluded so a logged-out client can still obtain a
// token. Every other request fails closed when no credential is stored:
// there is deliberately no fallback literal token.
type authTransport struct {
	creds CredentialSource
	next  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("X-Request-Id", uuid.NewString())

	if !strings.HasSuffix(req.URL.Path, loginPath) {
		token, ok := t.creds.Token()
		if !ok {
			return nil, apperror.Authentication("no credential stored, login required")
		}
		out.Header.Set("Authorization", token)
	}
	return t.next.RoundTrip(out)
}
