package config

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 30 * 24 * time.Hour

type PlayerClaims struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewPlayerClaims(playerId int64, username string) *PlayerClaims {
	return &PlayerClaims{PlayerId: playerId, Username: username}
}

/*
Auth signs and verifies the player token and moves it through a cookie
pair: the claims half is readable by the frontend, the signature half is
HttpOnly. Keys are RS256, loaded from JWT_PRIVATE_KEY/JWT_PUBLIC_KEY or
their *_FILE variants.
*/
type Auth struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	domain     string
	secure     bool
}

func NewAuth() (*Auth, error) {
	privatePEM, err := env("JWT_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT private key: %w", err)
	}

	publicPEM, err := env("JWT_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT public key: %w", err)
	}

	domain, err := env("COOKIES_DOMAIN")
	if err != nil {
		return nil, err
	}

	return &Auth{
		privateKey: privateKey,
		publicKey:  publicKey,
		domain:     domain,
		secure:     !Development(),
	}, nil
}

func (a *Auth) Sign(claims *PlayerClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).
		SignedString(a.privateKey)
}

func (a *Auth) Refresh(w http.ResponseWriter, token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	expires := time.Now().Add(tokenLifetime)
	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     "/",
		Value:    parts[0] + "." + parts[1],
		Expires:  expires,
		Domain:   a.domain,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "sign",
		Path:     "/",
		Value:    parts[2],
		Expires:  expires,
		HttpOnly: true,
		Domain:   a.domain,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (a *Auth) Clear(w http.ResponseWriter) {
	for _, name := range []string{"auth", "sign"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Path:     "/",
			Value:    "delete",
			MaxAge:   -1,
			HttpOnly: name == "sign",
			Domain:   a.domain,
			Secure:   a.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (a *Auth) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, err
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, err
	}
	token, err := jwt.ParseWithClaims(
		authCookie.Value+"."+signCookie.Value,
		&PlayerClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return a.publicKey, nil
		},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
