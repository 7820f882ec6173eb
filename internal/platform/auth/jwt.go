package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ogurasousui/shiftboard/internal/core/apperr"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
)

var (
	// ErrInvalidToken はトークンの署名・期限・クレームが不正な場合に返却されます。
	ErrInvalidToken = apperr.New(apperr.ErrUnauthorized, "auth: invalid token")
	// ErrInvalidHeader は authorization ヘッダーが Bearer 形式でない場合に返却されます。
	ErrInvalidHeader = apperr.New(apperr.ErrUnauthorized, "auth: invalid authorization header")
)

// Claims は管理者・マネージャー・社員向けトークンのクレームです。
type Claims struct {
	CompanyID  string `json:"company_id"`
	EmployeeID string `json:"employee_id,omitempty"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager は HS256 トークンの発行と検証を行います。
type TokenManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenManager は TokenManager を生成します。
func NewTokenManager(secret, issuer string) *TokenManager {
	if issuer == "" {
		issuer = "shiftboard"
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// GenerateToken は呼び出し元を表すトークンを発行します。
func (tm *TokenManager) GenerateToken(caller identity.Caller, expiresIn time.Duration) (string, error) {
	if caller.CompanyID == "" || !caller.Role.Valid() {
		return "", fmt.Errorf("auth: company_id and role required")
	}
	if caller.Subject == "" && caller.EmployeeID == "" {
		return "", fmt.Errorf("auth: subject or employee_id required")
	}

	now := tm.now()
	claims := Claims{
		CompanyID:  caller.CompanyID,
		EmployeeID: caller.EmployeeID,
		Role:       string(caller.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// ValidateToken はトークンを検証し呼び出し元へ変換します。
func (tm *TokenManager) ValidateToken(tokenString string) (identity.Caller, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		return identity.Caller{}, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return identity.Caller{}, ErrInvalidToken
	}

	caller := identity.Caller{
		CompanyID:  claims.CompanyID,
		EmployeeID: claims.EmployeeID,
		Subject:    claims.Subject,
		Role:       identity.Role(claims.Role),
	}
	if !caller.Authenticated() {
		return identity.Caller{}, ErrInvalidToken
	}
	return caller, nil
}

// ExtractToken は "Bearer <token>" 形式のヘッダー値からトークンを取り出します。
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidHeader
	}
	return parts[1], nil
}
