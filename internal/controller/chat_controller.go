package controller

import (
	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/dto"
	"healthbridge-be/internal/pkg/serverutils"
	"healthbridge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	jwtSecret   string
}

func NewChatController(chatService service.IChatService, jwtSecret string) IChatController {
	return &chatController{
		chatService: chatService,
		jwtSecret:   jwtSecret,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Delete(":id", c.Delete)
	h.Get(":id/messages", c.Messages)
}

func (c *chatController) Create(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uuid.UUID)

	var req dto.CreateChatRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.chatService.CreateChat(ctx.Context(), userID, &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, "Chat created", res)
}

func (c *chatController) List(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uuid.UUID)

	res, err := c.chatService.GetChats(ctx.Context(), userID)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Chats retrieved", res)
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uuid.UUID)

	chatID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid chat id")
	}

	if err := c.chatService.DeleteChat(ctx.Context(), userID, chatID); err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Chat deleted", nil)
}

func (c *chatController) Messages(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(uuid.UUID)

	chatID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid chat id")
	}

	res, err := c.chatService.GetMessages(ctx.Context(), userID, chatID)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Messages retrieved", res)
}
