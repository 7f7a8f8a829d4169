package fiber_handle

import (
	"strings"

	"monicore/pkg/core/consts"
	"monicore/pkg/core/tracer"

	"github.com/gofiber/fiber/v2"
)

type TracerConfig struct {
	Tracer  tracer.Tracer
	AppName string
}

// NewApiTracer 为每个请求建立追踪ID，上游带了 X-Trace-Id 时沿用
func NewApiTracer(config TracerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := strings.TrimPrefix(strings.SplitN(c.OriginalURL(), "?", 2)[0], "/")
		ctx := c.UserContext()

		var (
			traceID string
			finish  func()
		)
		if parent := c.Get(consts.TraceHeaderName); parent != "" {
			var err error
			ctx, traceID, finish, err = config.Tracer.StartTraceWithParent(ctx, name, parent)
			if err != nil {
				ctx, traceID, finish = config.Tracer.StartTrace(c.UserContext(), name)
			}
		} else {
			ctx, traceID, finish = config.Tracer.StartTrace(ctx, name)
		}
		defer finish()

		c.SetUserContext(ctx)
		c.Locals(consts.TraceKey, traceID)
		c.Set(consts.TraceHeaderName, traceID)
		return c.Next()
	}
}
