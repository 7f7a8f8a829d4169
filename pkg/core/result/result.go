package result

import (
	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/util"

	"github.com/gofiber/fiber/v2"
)

func OK(c *fiber.Ctx, v interface{}) error {
	return c.Status(200).JSON(fiber.Map{"status": 200, "data": v})
}

// Page 分页结果
func Page(c *fiber.Ctx, list interface{}, total int64) error {
	return OK(c, fiber.Map{"list": list, "total": total})
}

func BadRequestNormal(c *fiber.Ctx, message string, err error) error {
	return errorc.New(message, err).ValidWithCtx().WithTraceID(util.Context(c))
}

func Once(c *fiber.Ctx, v interface{}, err error) error {
	if err != nil {
		return err
	}
	return OK(c, v)
}
