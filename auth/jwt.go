package auth

import (
	"context"
	stdErrors "errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"goeasy/errors"
	"goeasy/logging"
)

// JWTAuthorizer 使用 HS256 签名的令牌，受众为用户编号
type JWTAuthorizer struct {
	secret []byte
	now    func() time.Time
	logger logging.Logger
}

// NewJWTAuthorizer 创建 JWT 令牌校验器
func NewJWTAuthorizer(secret string) (*JWTAuthorizer, error) {
	if secret == "" {
		return nil, errors.NewError(errors.ErrCodeConfiguration, "secret key required for HS256")
	}
	return &JWTAuthorizer{
		secret: []byte(secret),
		now:    time.Now,
		logger: logging.ComponentLogger("auth.jwt"),
	}, nil
}

// Token 为用户签发令牌，expire 后过期
func (j *JWTAuthorizer) Token(id int64, expire time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{strconv.FormatInt(id, 10)},
		ExpiresAt: jwt.NewNumericDate(j.now().Add(expire)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrCodeInternal, "failed to sign token")
	}
	return token, nil
}

// CheckToken 实现 ITokenChecker
func (j *JWTAuthorizer) CheckToken(token string) int64 {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		if stdErrors.Is(err, jwt.ErrTokenExpired) {
			j.logger.Warn(context.Background(), "access token expired", logging.Error(err))
			return Expired
		}
		j.logger.Error(context.Background(), "access token rejected", logging.Error(err))
		return Invalid
	}
	if len(claims.Audience) == 0 {
		return Invalid
	}
	id, err := strconv.ParseInt(claims.Audience[0], 10, 64)
	if err != nil {
		return Invalid
	}
	return id
}
