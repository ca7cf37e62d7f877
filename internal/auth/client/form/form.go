// Package form is an identity client for a username/password HTML form
// posted to the callback.
package form

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"

	"authbridge/internal/auth"
	"authbridge/internal/auth/client"
	"authbridge/internal/auth/credentials"
	"authbridge/internal/logger"
)

const (
	Name = "form"

	usernameParameter = "username"
	passwordParameter = "password"
	errorParameter    = "error"
)

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="{{.Action}}">
<input type="text" name="username" value="{{.Username}}" autofocus>
<input type="password" name="password">
<button type="submit">Sign in</button>
</form>
</body>
</html>
`))

type Config struct {
	// CallbackURL must carry the client name parameter.
	CallbackURL string

	// LoginURL is an external login page. When empty the client serves
	// its own form from the callback.
	LoginURL string
}

type Client struct {
	cfg  Config
	auth credentials.Authenticator
}

func New(cfg Config, authenticator credentials.Authenticator) *Client {
	return &Client{cfg: cfg, auth: authenticator}
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) RedirectAction(_ context.Context, _ client.WebContext) (client.RedirectAction, error) {
	if c.cfg.LoginURL != "" {
		return client.RedirectAction{Location: c.cfg.LoginURL}, nil
	}
	return client.RedirectAction{Location: c.cfg.CallbackURL}, nil
}

// loginAction sends the user back to the login page, carrying errMsg.
func (c *Client) loginAction(username, errMsg string) (*client.HTTPAction, error) {
	if c.cfg.LoginURL != "" {
		u, err := url.Parse(c.cfg.LoginURL)
		if err != nil {
			return nil, fmt.Errorf("form: parse login url: %w", err)
		}
		if errMsg != "" {
			q := u.Query()
			q.Set(errorParameter, errMsg)
			q.Set(usernameParameter, username)
			u.RawQuery = q.Encode()
		}
		return client.TemporaryRedirect(u.String()), nil
	}

	var buf bytes.Buffer
	err := loginPage.Execute(&buf, struct {
		Action, Username, Error string
	}{c.cfg.CallbackURL, username, errMsg})
	if err != nil {
		return nil, fmt.Errorf("form: render login page: %w", err)
	}
	return client.OK("text/html; charset=utf-8", buf.String()), nil
}

// ExtractCredentials validates the posted username and password. Missing
// or wrong values send the user back to the login page.
func (c *Client) ExtractCredentials(ctx context.Context, wc client.WebContext) (client.CredentialsResult, error) {
	username := wc.RequestParameter(usernameParameter)
	password := wc.RequestParameter(passwordParameter)

	if username == "" || password == "" {
		action, err := c.loginAction(username, "")
		if err != nil {
			return client.CredentialsResult{}, err
		}
		return client.RequireAction(action), nil
	}

	acct, err := c.auth.Authenticate(ctx, username, password)
	if errors.Is(err, credentials.ErrInvalidCredentials) {
		logger.Info("form login rejected", map[string]any{"client": Name})
		action, err := c.loginAction(username, "Invalid username or password")
		if err != nil {
			return client.CredentialsResult{}, err
		}
		return client.RequireAction(action), nil
	}
	if err != nil {
		return client.CredentialsResult{}, fmt.Errorf("form: authenticate: %w", err)
	}

	return client.Found(&Credentials{Username: username, Account: acct}), nil
}

func (c *Client) Profile(_ context.Context, creds client.Credentials, _ client.WebContext) (*auth.Profile, error) {
	cr, ok := creds.(*Credentials)
	if !ok {
		return nil, fmt.Errorf("form: unexpected credentials %T", creds)
	}
	return ProfileFromAccount(Name, cr.Username, cr.Account), nil
}

// Credentials are an already validated username/password pair.
type Credentials struct {
	Username string
	Account  credentials.Account
}

func (*Credentials) ClientName() string { return Name }

// ProfileFromAccount builds the profile shared by password based clients.
func ProfileFromAccount(clientName, username string, acct credentials.Account) *auth.Profile {
	email := acct.Email
	if email == "" {
		email = username
	}
	return &auth.Profile{
		ID:            username,
		ClientName:    clientName,
		UserID:        acct.UserID,
		Email:         email,
		EmailVerified: acct.EmailVerified,
		DisplayName:   username,
	}
}
