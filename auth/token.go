package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of every issued access token. Tokens are
// stateless; expiry is the only revocation mechanism.
const TokenTTL = 30 * time.Minute

// ErrInvalidToken is returned for every verification failure. Bad signature,
// expiry, missing claims and malformed input are deliberately not
// distinguished.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated-identity value produced by Verify and passed
// to every ownership-scoped operation.
type Identity struct {
	UserID   int
	Username string
}

type Claims struct {
	UserID int `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens signed with a
// process-wide secret supplied by configuration.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue creates a signed token carrying the username as subject, the user id
// and an absolute expiry of now + TokenTTL.
func (s *TokenService) Issue(userID int, username string) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded identity.
// It fails closed: any problem yields ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	// jwt.Parse accepts tokens without an exp claim; a token that never
	// expires is treated as invalid here.
	if claims.ExpiresAt == nil || claims.Subject == "" || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Username: claims.Subject}, nil
}
