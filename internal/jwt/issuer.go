// Package jwt issues and verifies the HS256 session tokens handed out by a
// successful login. API keys and licenses are opaque secrets validated
// against the store; only interactive sessions use JWT.
package jwt

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

type Issuer struct {
	Iss       string
	AccessTTL time.Duration

	secret []byte
}

func NewIssuer(iss, secret string, accessTTL time.Duration) *Issuer {
	return &Issuer{Iss: iss, AccessTTL: accessTTL, secret: []byte(secret)}
}

// IssueAccess signs an access token for sub. Extra claims in std override
// nothing reserved (iss/sub/iat/nbf/exp always come from the issuer).
func (i *Issuer) IssueAccess(sub string, std map[string]any) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := jwtv5.MapClaims{}
	for k, v := range std {
		claims[k] = v
	}
	claims["iss"] = i.Iss
	claims["sub"] = sub
	claims["iat"] = now.Unix()
	claims["nbf"] = now.Unix()
	claims["exp"] = exp.Unix()

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates signature, issuer and expiry and returns the claims.
func (i *Issuer) Parse(raw string) (jwtv5.MapClaims, error) {
	tk, err := jwtv5.Parse(raw, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwtv5.WithIssuer(i.Iss), jwtv5.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok || !tk.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Subject is a convenience for the common "who is calling" extraction.
func (i *Issuer) Subject(raw string) (string, error) {
	claims, err := i.Parse(raw)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("missing sub claim")
	}
	return sub, nil
}
