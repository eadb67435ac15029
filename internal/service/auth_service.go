package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/shiptrack-next/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 运营后台认证服务
type AuthService struct {
	cfg *config.Config
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// JWTClaims JWT 声明
type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(username string) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的 token")
}

// Login 运营账号登录。账号来自配置而非数据库：优先校验 bcrypt 哈希，
// 未配置哈希时退化为明文常量时间比较（仅用于开发环境）。
func (s *AuthService) Login(username, password string) (string, time.Time, error) {
	operator := s.cfg.Security.Operator
	if operator.Username == "" {
		return "", time.Time{}, ErrOperatorCredentials
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(operator.Username)) != 1 {
		return "", time.Time{}, ErrOperatorCredentials
	}

	if operator.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
			return "", time.Time{}, ErrOperatorCredentials
		}
	} else if subtle.ConstantTimeCompare([]byte(password), []byte(operator.Password)) != 1 {
		return "", time.Time{}, ErrOperatorCredentials
	}

	return s.GenerateJWT(username)
}
