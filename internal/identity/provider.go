package identity

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mewisme/private-chats/internal/infrastructure/configs"
)

const (
	CookieNameClientToken = "client_token"
	HeaderClientToken     = "X-Client-Token"
)

// Provider mints and verifies pseudonymous client identities. An identity is
// a random UUID signed into an HS256 JWT; it carries no account and no
// profile, only continuity across requests until the cookie is cleared.
type Provider struct {
	secret    []byte
	cookieTTL time.Duration
}

func NewProvider(cfg configs.IdentityConfig) *Provider {
	ttl := cfg.CookieTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Provider{
		secret:    []byte(cfg.JWTSecret),
		cookieTTL: ttl,
	}
}

// Ensure returns the request's client id, minting and setting a fresh one
// when the request carries none. The id is guaranteed non-empty.
func (p *Provider) Ensure(w http.ResponseWriter, r *http.Request) string {
	if id := p.FromRequest(r); id != "" {
		return id
	}

	id := uuid.NewString()
	token, err := p.sign(id)
	if err != nil {
		// Signing only fails on a broken secret; the id still works for this
		// request, it just will not persist.
		return id
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieNameClientToken,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(p.cookieTTL),
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	})

	return id
}

// FromRequest extracts and verifies the client id. Header first for API
// clients, cookie fallback for browsers and WebSocket upgrades. Returns ""
// when the request carries no valid identity.
func (p *Provider) FromRequest(r *http.Request) string {
	if token := r.Header.Get(HeaderClientToken); token != "" {
		if id, err := p.verify(token); err == nil {
			return id
		}
		return ""
	}

	cookie, err := r.Cookie(CookieNameClientToken)
	if err != nil {
		return ""
	}

	id, err := p.verify(cookie.Value)
	if err != nil {
		return ""
	}
	return id
}

// Clear expires the identity cookie. The next request mints a fresh id, which
// is the replacement-not-mutation contract: identities are never edited in
// place.
func (p *Provider) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieNameClientToken,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(-24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	})
}

func (p *Provider) sign(clientID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.cookieTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *Provider) verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid identity token")
	}

	return claims.Subject, nil
}
