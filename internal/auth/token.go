package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

const tokenTTL = 72 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is what a session token asserts about its holder.
type Claims struct {
	Subject  string
	Username string
	Role     model.Role
}

// signs a token embedding the account id in the "sub" claim.
func GenerateJWT(identity model.Identity, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      identity.AccountID,
		"username": identity.Username,
		"role":     string(identity.Role()),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// verifies the JWT and returns its claims.
func ParseToken(tokenString, secret string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mc["role"].(string)
	username, _ := mc["username"].(string)
	switch model.Role(role) {
	case model.RoleAdmin, model.RoleUser:
	default:
		return Claims{}, ErrInvalidToken
	}
	return Claims{Subject: sub, Username: username, Role: model.Role(role)}, nil
}

// ClaimsResolver trusts the token as-is and never touches the store. It
// suits endpoints that read the account themselves.
type ClaimsResolver struct{}

func (ClaimsResolver) Resolve(_ context.Context, claims Claims) (model.Identity, error) {
	return model.Identity{AccountID: claims.Subject, Username: claims.Username, IsAdmin: claims.Role == model.RoleAdmin}, nil
}
