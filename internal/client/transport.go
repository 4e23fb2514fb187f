package client

import "net/http"

var _ http.RoundTripper = (*BearerTransport)(nil)

// BearerTransport decorates outbound requests with the stored bearer
// token. Requests pass through untouched when no session is held, so
// login and register work over the same http.Client.
type BearerTransport struct {
	Base    http.RoundTripper
	Session *SessionStore
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.Session.Token()
	if token != "" {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
