package logger

import (
	"strings"
	"time"

	"monicore/pkg/core/consts"
	errorc "monicore/pkg/core/err"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	Logger *Log
	// SkipPrefixes 这些前缀的请求由其他日志中间件记录
	SkipPrefixes []string
}

// NewApiLogger creates a new middleware handler
func NewApiLogger(config Config) fiber.Handler {
	log := config.Logger.WithEntryName("API")

	return func(c *fiber.Ctx) (err error) {
		for _, prefix := range config.SkipPrefixes {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}
		url := strings.SplitN(c.OriginalURL(), "?", 2)[0]
		start := time.Now()

		err = c.Next()

		cLog := log.WithField("status", c.Response().StatusCode()).
			WithField("latency", time.Since(start).Round(time.Millisecond)).
			WithField("method", c.Method()).
			WithField("path", url).
			WithField("TraceId", c.Locals(consts.TraceKey))

		if err != nil {
			errc := errorc.ParseError(err)
			errc.ToLog(log.WithTrace(c.UserContext()).GetLogger())
			cLog = cLog.WithField("Err", errc.RootCause())
		}

		cLog.Debug("请求处理完毕")
		return err
	}
}
