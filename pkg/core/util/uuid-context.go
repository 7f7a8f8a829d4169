package util

import (
	"context"

	"monicore/pkg/core/consts"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/satori/go.uuid"
)

// Context 取出请求上下文，没有追踪ID时补一个
func Context(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx.Value(consts.TraceKey) == nil {
		return context.WithValue(ctx, consts.TraceKey, uuid.NewV4().String())
	}
	return ctx
}

// TenantID 依次从 Locals 和请求头中取租户ID
func TenantID(c *fiber.Ctx) string {
	if tenant, ok := c.Locals(consts.TenantLocalKey).(string); ok && tenant != "" {
		return tenant
	}
	return c.Get(consts.TenantHeaderName)
}
