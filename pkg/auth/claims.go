package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenPayload captures the identity carried by a JWT.
type AccessTokenPayload struct {
	UID   string
	Email string
}

// AccessTokenClaims represents the typed JWT presented by clients. The uid is
// the opaque identifier issued by the identity provider.
type AccessTokenClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
