// internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mtofleet/fleet-backend/internal/logger"
)

var (
	ErrTokenMalformed          = errors.New("malformed token")
	ErrTokenExpired            = errors.New("token is expired or not valid yet")
	ErrTokenInvalid            = errors.New("invalid token")
	ErrTokenClaimsInvalid      = errors.New("invalid token claims")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrUnexpectedSigningMethod = errors.New("unexpected token signing method")
	customLog                  = logger.NewLogger()
)

// refreshSecretSuffix keeps refresh tokens from validating as access tokens.
const refreshSecretSuffix = "_refresh"

// Claims carries the authenticated identity inside a signed token.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the decoded token payload attached to a request context.
type Identity struct {
	UserID   int64
	Username string
	Role     string
	Email    string
}

// --- Password Utilities ---

// HashPassword generates a bcrypt hash for the given password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		customLog.Warnf("Error generating bcrypt hash: %v", err)
		return "", fmt.Errorf("failed to hash password")
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		customLog.Warnf("Unexpected error comparing password hash: %v", err)
	}
	return err == nil
}

// --- JWT Utilities ---

// GenerateToken creates a signed access token for the given identity.
func GenerateToken(id Identity, jwtSecret string, expiration time.Duration) (string, error) {
	return signToken(id, jwtSecret, expiration)
}

// GenerateRefreshToken creates a long-lived refresh token. Refresh tokens are
// signed with a derived secret so the two token kinds are not interchangeable.
func GenerateRefreshToken(id Identity, jwtSecret string, expiration time.Duration) (string, error) {
	return signToken(id, jwtSecret+refreshSecretSuffix, expiration)
}

func signToken(id Identity, secret string, expiration time.Duration) (string, error) {
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     id.Role,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "fleet-backend",
			// Timestamps are second-granular, so without a unique id two
			// tokens issued in the same second would be byte-identical.
			// Rotation depends on every issued token being distinct.
			ID: uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		customLog.Warnf("Error signing JWT for user %d: %v", id.UserID, err)
		return "", fmt.Errorf("failed to generate token")
	}

	return signedToken, nil
}

// ValidateToken parses and validates an access token, returning the identity if valid.
func ValidateToken(tokenString, jwtSecret string) (*Identity, error) {
	return parseToken(tokenString, jwtSecret)
}

// ValidateRefreshToken parses and validates a refresh token.
func ValidateRefreshToken(tokenString, jwtSecret string) (*Identity, error) {
	return parseToken(tokenString, jwtSecret+refreshSecretSuffix)
}

func parseToken(tokenString, secret string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			customLog.Warnf("ValidateToken: Unexpected signing method: %v", token.Header["alg"])
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		customLog.Warnf("ValidateToken: Token parsing error: %v", err)
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenExpired
		case errors.Is(err, ErrUnexpectedSigningMethod):
			return nil, err
		default:
			return nil, ErrTokenInvalid
		}
	}

	if !token.Valid {
		customLog.Warnf("ValidateToken: Invalid token marked by library")
		return nil, ErrTokenInvalid
	}

	if claims.UserID == 0 {
		customLog.Warnf("ValidateToken: UserID missing or invalid in token claims")
		return nil, ErrTokenClaimsInvalid
	}

	return &Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		Email:    claims.Email,
	}, nil
}
