package security

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type JwtClient struct {
	secret     []byte
	expireTime time.Duration
}

func NewJwtClient(secret []byte, expireTime time.Duration) *JwtClient {
	if expireTime <= 0 {
		expireTime = 24 * time.Hour
	}
	return &JwtClient{
		secret:     secret,
		expireTime: expireTime,
	}
}

func (c *JwtClient) CreateToken(claims *AdminClaims) (string, int64, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(c.expireTime))
	claims.IssuedAt = jwt.NewNumericDate(time.Now())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString(c.secret)
	return signedString, claims.ExpiresAt.Unix(), err
}

func (c *JwtClient) ParseToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func (c *JwtClient) SaveToContext(ctx *fiber.Ctx, claims *AdminClaims) {
	ctx.Locals("user_id", claims.ID)
	if claims.Account != "" {
		ctx.Locals("account", claims.Account)
	}
	if len(claims.AdminType) > 0 {
		ctx.Locals("roles", claims.AdminType)
	}
	if claims.TenantID != "" {
		ctx.Locals("admin_tenant_id", claims.TenantID)
	}

	for _, s := range claims.AdminType {
		if s == SuperAdmin {
			ctx.Locals("is_super", true)
			break
		}
	}

	userCtx := context.WithValue(ctx.UserContext(), AdminKey, claims)
	ctx.SetUserContext(userCtx)
}

func (c *JwtClient) ValidateRoles(ctx *fiber.Ctx, requiredRoles []string) error {
	if len(requiredRoles) == 0 {
		return nil
	}

	userRoles, _ := ctx.Locals("roles").([]string)
	for _, required := range requiredRoles {
		hasRole := false
		for _, userRole := range userRoles {
			if required == userRole {
				hasRole = true
				break
			}
		}
		if !hasRole {
			return fiber.ErrForbidden
		}
	}
	return nil
}
