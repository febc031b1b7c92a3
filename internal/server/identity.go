package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"donationhub/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Authenticator resolves the caller of a request. It returns nil and no
// error for a request without credentials.
type Authenticator interface {
	Authenticate(r *http.Request) (*types.Principal, error)
}

type PrincipalStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
}

// CognitoIdentity verifies Cognito access tokens, sent as a bearer token or
// in the encrypted session cookie, and reads the caller's role from the
// users table.
type CognitoIdentity struct {
	cookie     *securecookie.SecureCookie
	cookieName string
	issuer     string
	clientID   string

	jwksCache *jwk.Cache
	jwksURL   string

	users PrincipalStore
}

func NewCognitoIdentity(config *types.Config, cookie *securecookie.SecureCookie, jwksCache *jwk.Cache, jwksURL string, users PrincipalStore) *CognitoIdentity {
	return &CognitoIdentity{
		cookie:     cookie,
		cookieName: config.CookieName,
		issuer:     config.CognitoIssuerURL,
		clientID:   config.CognitoClientID,
		jwksCache:  jwksCache,
		jwksURL:    jwksURL,
		users:      users,
	}
}

func (c *CognitoIdentity) Authenticate(r *http.Request) (*types.Principal, error) {
	accessToken := c.accessToken(r)
	if accessToken == "" {
		return nil, nil
	}

	set, err := c.jwksCache.Lookup(r.Context(), c.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, types.Unauthenticatedf("Invalid access token.")
	}

	if c.issuer != "" {
		if issuer, ok := token.Issuer(); !ok || issuer != c.issuer {
			return nil, types.Unauthenticatedf("Invalid access token.")
		}
	}

	if c.clientID != "" {
		var clientID string
		if err := token.Get("client_id", &clientID); err != nil || clientID != c.clientID {
			return nil, types.Unauthenticatedf("Invalid access token.")
		}
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return nil, types.Unauthenticatedf("Invalid access token.")
	}

	user, err := c.users.User(r.Context(), userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, types.Unauthenticatedf("Account not found. Please log in again.")
		}
		return nil, err
	}

	return &types.Principal{ID: user.ID, Role: user.Role, Email: user.Email}, nil
}

func (c *CognitoIdentity) accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		return ""
	}

	var token string
	if err := c.cookie.Decode(c.cookieName, cookie.Value, &token); err != nil {
		return ""
	}

	return token
}
