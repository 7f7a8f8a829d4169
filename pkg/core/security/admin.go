package security

import (
	"context"
	"strings"
	"time"

	errorc "monicore/pkg/core/err"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type AdminAuth struct {
	jwtClient *JwtClient
}

const (
	AdminKey   = "admin"
	SuperAdmin = "SuperAdmin"
)

type AdminClaims struct {
	jwt.RegisteredClaims
	ID        int64    `json:"id"`
	Account   string   `json:"account,omitempty"`
	AdminType []string `json:"admin_type"`
	// TenantID 非空时该管理员只能管理本租户的告警
	TenantID string `json:"tenant_id,omitempty"`
}

func NewAdminAuth(secret []byte, expireTime time.Duration) *AdminAuth {
	return &AdminAuth{
		jwtClient: NewJwtClient(secret, expireTime),
	}
}

// CreateAdminToken 创建管理员token
func (a *AdminAuth) CreateAdminToken(claims *AdminClaims) (string, int64, error) {
	return a.jwtClient.CreateToken(claims)
}

// RequireAdminAuth 管理员权限校验中间件
func (a *AdminAuth) RequireAdminAuth(requiredRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			return errorc.New("authorization header is required", nil).NoAuth()
		}

		claims, err := a.jwtClient.ParseToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return errorc.New("invalid token", err).NoAuth()
		}

		a.jwtClient.SaveToContext(c, claims)

		// 超级管理员跳过权限校验
		if IsAdminSuper(c) {
			return c.Next()
		}

		if err := a.jwtClient.ValidateRoles(c, requiredRoles); err != nil {
			return errorc.New("permission denied", err).Forbidden()
		}
		return c.Next()
	}
}

// ParseToken 解析管理员令牌
func (a *AdminAuth) ParseToken(token string) (*AdminClaims, error) {
	return a.jwtClient.ParseToken(token)
}

// IsAdminSuper 判断是否为超级管理员
func IsAdminSuper(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}
	isSuper, _ := c.Locals("is_super").(bool)
	return isSuper
}

// AdminTenant 返回管理员绑定的租户，超级管理员或未绑定时为空
func AdminTenant(c *fiber.Ctx) string {
	if IsAdminSuper(c) {
		return ""
	}
	tenant, _ := c.Locals("admin_tenant_id").(string)
	return tenant
}

func GetAdminClaimsByCtx(ctx context.Context) (*AdminClaims, error) {
	claims, ok := ctx.Value(AdminKey).(*AdminClaims)
	if !ok {
		return nil, errorc.New("admin claims not found or invalid", nil).NoAuth()
	}
	return claims, nil
}

func GetAdminAccountByCtx(ctx context.Context) (string, error) {
	claims, err := GetAdminClaimsByCtx(ctx)
	if err != nil {
		return "", err
	}
	return claims.Account, nil
}
