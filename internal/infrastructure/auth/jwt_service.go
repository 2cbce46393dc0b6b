package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/peekpark/peekpark/domain"
)

// JWTServiceImpl implements domain.TokenService with HS256 ID tokens
type JWTServiceImpl struct {
	secretKey  []byte
	issuer     string
	idTokenTTL time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, issuer string, idTokenTTL time.Duration) domain.TokenService {
	return &JWTServiceImpl{
		secretKey:  []byte(secretKey),
		issuer:     issuer,
		idTokenTTL: idTokenTTL,
	}
}

// generateJTI creates a unique JWT ID
func (j *JWTServiceImpl) generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (j *JWTServiceImpl) TTL() time.Duration { return j.idTokenTTL }

// GenerateIDToken implements domain.TokenService
func (j *JWTServiceImpl) GenerateIDToken(session *domain.ProviderSession) (string, error) {
	now := time.Now()
	expiresAt := session.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(j.idTokenTTL)
	}
	claims := jwt.MapClaims{
		"sub":   session.Subject,
		"sid":   session.ID,
		"phone": session.Phone,
		"iss":   j.issuer,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   j.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// ValidateIDToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateIDToken(tokenString string) (*domain.TokenClaims, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if time.Unix(claims.ExpiresAt, 0).Before(time.Now()) {
		return nil, domain.ErrTokenExpired
	}
	return claims, nil
}

// ParseIDToken implements domain.TokenService
func (j *JWTServiceImpl) ParseIDToken(tokenString string) (*domain.TokenClaims, error) {
	return j.parse(tokenString)
}

// parse checks the signature and issuer but leaves expiry to the caller
func (j *JWTServiceImpl) parse(tokenString string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return j.secretKey, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, domain.ErrTokenMalformed
		}
		return nil, domain.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	if iss, _ := claims["iss"].(string); iss != j.issuer {
		return nil, domain.ErrTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, domain.ErrTokenMalformed
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return nil, domain.ErrTokenMalformed
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	phone, _ := claims["phone"].(string)

	return &domain.TokenClaims{
		Subject:   sub,
		SessionID: sid,
		Phone:     phone,
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}, nil
}
