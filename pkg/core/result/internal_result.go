package result

import (
	"github.com/gofiber/fiber/v2"
)

// InternalOK 不包信封，直接返回结构体本身
func InternalOK(c *fiber.Ctx, v interface{}) error {
	return c.Status(200).JSON(v)
}

func InternalOnce(c *fiber.Ctx, v interface{}, err error) error {
	if err != nil {
		return err
	}
	return InternalOK(c, v)
}
