package oidc

// AuthorizationCode is the code returned on the callback together with
// the values remembered at redirect time.
type AuthorizationCode struct {
	client   string
	Code     string
	Verifier string
	Nonce    string
}

func (a *AuthorizationCode) ClientName() string { return a.client }

// IDToken is an id_token presented directly on the callback.
type IDToken struct {
	client string
	Raw    string
	Nonce  string
}

func (t *IDToken) ClientName() string { return t.client }
