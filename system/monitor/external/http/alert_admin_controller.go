package http

import (
	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/logger"
	"monicore/pkg/core/mvc"
	"monicore/pkg/core/result"
	"monicore/pkg/core/security"
	"monicore/pkg/core/util"
	"monicore/system/monitor/api/dto"
	internalapp "monicore/system/monitor/internal/app"
	"monicore/utils"

	"github.com/gofiber/fiber/v2"
)

// AlertAdminController 告警后台管理控制器
type AlertAdminController struct {
	app  *internalapp.App
	auth *security.AdminAuth
	err  *errorc.ErrorBuilder
	log  *logger.Log
}

// NewAlertAdminController 创建告警后台管理控制器
func NewAlertAdminController(app *internalapp.App, auth *security.AdminAuth) *AlertAdminController {
	return &AlertAdminController{
		app:  app,
		auth: auth,
		err:  errorc.NewErrorBuilder("AlertAdminController"),
		log:  logger.GetLogger().WithEntryName("AlertAdminController"),
	}
}

// RegisterRoutes 注册路由
func (c *AlertAdminController) RegisterRoutes(admin fiber.Router) {
	r := admin.Group("/monitor/alerts")
	r.Post("/", c.auth.RequireAdminAuth("admin:monitor:alert:create"), c.CreateAlert)
	r.Get("/", c.auth.RequireAdminAuth("admin:monitor:alert:read"), c.ListAlerts)
	// 必须在 /:id 之前注册
	r.Get("/active", c.auth.RequireAdminAuth("admin:monitor:alert:read"), c.ActiveAlerts)
	r.Get("/:id", c.auth.RequireAdminAuth("admin:monitor:alert:read"), c.GetAlert)
	r.Put("/:id", c.auth.RequireAdminAuth("admin:monitor:alert:update"), c.UpdateAlert)
	r.Delete("/:id", c.auth.RequireAdminAuth("admin:monitor:alert:delete"), c.DeleteAlert)
	r.Get("/:id/history", c.auth.RequireAdminAuth("admin:monitor:alert:read"), c.AlertHistory)
}

// CreateAlert 创建告警
func (c *AlertAdminController) CreateAlert(ctx *fiber.Ctx) error {
	var req dto.CreateAlertReq
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).ValidWithCtx().WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
	}
	if errMsg, err := utils.Validate(&req); err != nil {
		return c.err.New(errMsg, err).ValidWithCtx().WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
	}

	alert, err := c.app.CreateAlert(util.Context(ctx), security.AdminTenant(ctx), req.ToAlert())
	return result.Once(ctx, alert, err)
}

// ListAlerts 查询告警列表
func (c *AlertAdminController) ListAlerts(ctx *fiber.Ctx) error {
	alerts, err := c.app.ListAlerts(util.Context(ctx), security.AdminTenant(ctx), ctx.Query("tenantId"))
	if err != nil {
		return err
	}
	return result.Page(ctx, alerts, int64(len(alerts)))
}

// ActiveAlerts 正在触发的告警
func (c *AlertAdminController) ActiveAlerts(ctx *fiber.Ctx) error {
	return result.OK(ctx, c.app.ActiveAlerts(util.Context(ctx), security.AdminTenant(ctx)))
}

// GetAlert 查询告警详情
func (c *AlertAdminController) GetAlert(ctx *fiber.Ctx) error {
	alert, err := c.app.GetAlert(util.Context(ctx), security.AdminTenant(ctx), ctx.Params("id"))
	return result.Once(ctx, alert, err)
}

// UpdateAlert 部分更新告警
func (c *AlertAdminController) UpdateAlert(ctx *fiber.Ctx) error {
	var req dto.UpdateAlertReq
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).ValidWithCtx().WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
	}
	if errMsg, err := utils.Validate(&req); err != nil {
		return c.err.New(errMsg, err).ValidWithCtx().WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
	}

	alert, err := c.app.UpdateAlert(util.Context(ctx), security.AdminTenant(ctx), ctx.Params("id"), req.ToUpdate())
	return result.Once(ctx, alert, err)
}

// DeleteAlert 删除告警
func (c *AlertAdminController) DeleteAlert(ctx *fiber.Ctx) error {
	if err := c.app.DeleteAlert(util.Context(ctx), security.AdminTenant(ctx), ctx.Params("id")); err != nil {
		return err
	}
	return result.OK(ctx, nil)
}

// AlertHistory 分页查询告警历史
func (c *AlertAdminController) AlertHistory(ctx *fiber.Ctx) error {
	page := mvc.Page{PageNum: ctx.QueryInt("pageNum", 1), Size: ctx.QueryInt("size", 20)}
	page.Normalize()
	list, total, err := c.app.History(util.Context(ctx), security.AdminTenant(ctx), ctx.Params("id"), page.PageNum, page.Size)
	if err != nil {
		return err
	}
	return result.Page(ctx, list, total)
}
