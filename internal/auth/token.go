// Package auth implements token minting/verification, password hashing,
// and the register/login/guest/upgrade/google account flows.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	GuestExpirySeconds    = 86400
	NonGuestExpirySeconds = 604800
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
)

// Claims is the token payload.
type Claims struct {
	Sub   string `json:"sub"`
	IAT   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
	Guest bool   `json:"guest"`
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// TokenIssuer mints and verifies the hand-rolled three-part token: this
// project intentionally does not pull in a JWT library, mirroring the
// original backend's own "no external deps" token module.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

func b64encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func b64decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

func (t *TokenIssuer) sign(payload string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(payload))
	return b64encode(mac.Sum(nil))
}

// Mint issues a token for subject userID, applying guest or non-guest
// expiry.
func (t *TokenIssuer) Mint(userID string, guest bool) (string, error) {
	now := time.Now().Unix()
	expiry := int64(NonGuestExpirySeconds)
	if guest {
		expiry = GuestExpirySeconds
	}
	claims := Claims{Sub: userID, IAT: now, Exp: now + expiry, Guest: guest}

	headerJSON, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	bodyJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerPart := b64encode(headerJSON)
	bodyPart := b64encode(bodyJSON)
	signature := t.sign(headerPart + "." + bodyPart)
	return fmt.Sprintf("%s.%s.%s", headerPart, bodyPart, signature), nil
}

// Verify checks the signature (constant-time) and expiry, returning the
// decoded claims.
func (t *TokenIssuer) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}
	headerPart, bodyPart, sig := parts[0], parts[1], parts[2]

	expectedSig := t.sign(headerPart + "." + bodyPart)
	if !hmac.Equal([]byte(sig), []byte(expectedSig)) {
		return Claims{}, ErrInvalidToken
	}

	bodyJSON, err := b64decode(bodyPart)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(bodyJSON, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Exp < time.Now().Unix() {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}
