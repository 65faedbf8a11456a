package controller

import (
	"strconv"

	"citizen-helpdesk-be/internal/pkg/logger"
	"citizen-helpdesk-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// IDebugController exposes the operator debug viewer over the structured
// log file. Pipeline traces land there, so this is the first stop when a
// suggestion looks wrong.
type IDebugController interface {
	RegisterRoutes(r fiber.Router)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type debugController struct {
	logger logger.ILogger
}

func NewDebugController(log logger.ILogger) IDebugController {
	return &debugController{
		logger: log,
	}
}

func (c *debugController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assist/v1/debug")
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *debugController) GetLogs(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	level := ctx.Query("level", "")

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	logs, err := c.logger.GetLogs(level, limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *debugController) GetLogDetail(ctx *fiber.Ctx) error {
	logId := ctx.Params("id") // Log ID is a content hash, not a UUID

	l, err := c.logger.GetLogById(logId)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Log not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}
