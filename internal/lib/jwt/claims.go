package jwt

import "github.com/golang-jwt/jwt/v5"

// CustomClaims carries the user identity inside the token. The user id
// lives in the registered Subject claim.
type CustomClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *CustomClaims) UserID() string {
	return c.Subject
}
