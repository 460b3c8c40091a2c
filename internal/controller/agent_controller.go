package controller

import (
	"healthbridge-be/internal/dto"
	"healthbridge-be/internal/pkg/serverutils"
	"healthbridge-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Retrieve(ctx *fiber.Ctx) error
}

type agentController struct {
	agentService service.IAgentService
	jwtSecret    string
}

func NewAgentController(agentService service.IAgentService, jwtSecret string) IAgentController {
	return &agentController{
		agentService: agentService,
		jwtSecret:    jwtSecret,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("retrieve", c.Retrieve)
}

// Retrieve answers one turn without touching any stored conversation.
// It is the same contract the relay uses against a remote agent.
func (c *agentController) Retrieve(ctx *fiber.Ctx) error {
	var req dto.AgentRetrieveRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.agentService.Retrieve(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
