package api

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret           []byte
	jwtExpiresIn        time.Duration
	jwtRefreshExpiresIn time.Duration
)

const (
	// TokenTypeAccess 访问令牌
	TokenTypeAccess = "access"
	// TokenTypeRefresh 刷新令牌
	TokenTypeRefresh = "refresh"
)

// TokenInit Initialize JWT configuration
func TokenInit(secret, expiresIn, refreshExpiresIn string) error {
	if secret == "" {
		return errors.New("JWT secret must not be empty")
	}
	jwtSecret = []byte(secret)

	duration, err := time.ParseDuration(expiresIn)
	if err != nil {
		return fmt.Errorf("invalid JWT expiration duration: %s", expiresIn)
	}
	jwtExpiresIn = duration

	refreshDuration, err := time.ParseDuration(refreshExpiresIn)
	if err != nil {
		return fmt.Errorf("invalid JWT refresh expiration duration: %s", refreshExpiresIn)
	}
	jwtRefreshExpiresIn = refreshDuration

	log.Printf("JWT Config loaded - Access: %v, Refresh: %v", jwtExpiresIn, jwtRefreshExpiresIn)

	return nil
}

// GenerateTokens Generate access token and refresh token
func GenerateTokens(userID, email string) (accessToken, refreshToken string, accessTokenExpiry time.Time, err error) {
	if len(jwtSecret) == 0 {
		err = errors.New("JWT secret is not initialized")
		return
	}

	accessTokenExpiry = time.Now().Add(jwtExpiresIn)
	accessToken, err = signToken(userID, email, TokenTypeAccess, accessTokenExpiry)
	if err != nil {
		err = fmt.Errorf("failed to generate access token: %w", err)
		accessToken = ""
		accessTokenExpiry = time.Time{}
		return
	}

	refreshToken, err = signToken(userID, email, TokenTypeRefresh, time.Now().Add(jwtRefreshExpiresIn))
	if err != nil {
		err = fmt.Errorf("failed to generate refresh token: %w", err)
		accessToken = ""
		refreshToken = ""
		accessTokenExpiry = time.Time{}
		return
	}

	return
}

func signToken(userID, email, tokenType string, expiry time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"type":    tokenType,
		"exp":     expiry.Unix(),
		"iat":     time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// Parse Parse and validate JWT token
func Parse(tokenString string) (jwt.MapClaims, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("JWT secret is not initialized")
	}

	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	// 解析令牌
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	// 验证令牌有效性
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ParseTyped 解析令牌并要求指定的 type 声明
func ParseTyped(tokenString, wantType string) (userID, email string, err error) {
	claims, err := Parse(tokenString)
	if err != nil {
		return "", "", err
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != wantType {
		return "", "", fmt.Errorf("unexpected token type %q", tokenType)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", errors.New("user_id not found in token claims")
	}
	email, _ = claims["email"].(string)

	return userID, email, nil
}
