package controller

import (
	"citizen-helpdesk-be/internal/dto"
	"citizen-helpdesk-be/internal/pkg/serverutils"
	"citizen-helpdesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAssistController interface {
	RegisterRoutes(r fiber.Router)
	CustomerMessage(ctx *fiber.Ctx) error
	AgentMessage(ctx *fiber.Ctx) error
	GetSuggestion(ctx *fiber.Ctx) error
	PollSuggestion(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	GenerateAnswer(ctx *fiber.Ctx) error
	SetMode(ctx *fiber.Ctx) error
	GetMode(ctx *fiber.Ctx) error
}

type assistController struct {
	assistService service.IAssistService
}

func NewAssistController(assistService service.IAssistService) IAssistController {
	return &assistController{
		assistService: assistService,
	}
}

func (c *assistController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assist/v1")
	h.Post("conversation/:id/customer-message", c.CustomerMessage)
	h.Post("conversation/:id/agent-message", c.AgentMessage)
	h.Get("conversation/:id/suggestion", c.GetSuggestion)
	h.Get("conversation/:id/suggestion/poll", c.PollSuggestion)
	h.Get("conversation/:id/history", c.GetHistory)
	h.Post("answer", c.GenerateAnswer)
	h.Put("mode", c.SetMode)
	h.Get("mode", c.GetMode)
}

func conversationIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}
	return id, nil
}

func (c *assistController) CustomerMessage(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.CustomerMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistService.OnCustomerMessage(ctx.Context(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record customer message", res))
}

func (c *assistController) AgentMessage(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.AgentMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistService.OnAgentMessage(ctx.Context(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record agent message", res))
}

// GetSuggestion answers the single read-time check. A missing suggestion is
// a normal outcome, not an error, so data is simply null.
func (c *assistController) GetSuggestion(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistService.GetSuggestion(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.JSON(serverutils.SuccessResponse[any]("No suggestion available", nil))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get suggestion", res))
}

func (c *assistController) PollSuggestion(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistService.PollSuggestion(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.JSON(serverutils.SuccessResponse[any]("No suggestion available", nil))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success poll suggestion", res))
}

func (c *assistController) GetHistory(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistService.GetHistory(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *assistController) GenerateAnswer(ctx *fiber.Ctx) error {
	var req dto.GenerateAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistService.GenerateAnswer(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate answer", res))
}

func (c *assistController) SetMode(ctx *fiber.Ctx) error {
	var req dto.SetModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.assistService.SetMode(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success set mode", nil))
}

func (c *assistController) GetMode(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get mode", c.assistService.GetMode(ctx.Context())))
}
