package controller

import (
	"healthbridge-be/internal/config"
	"healthbridge-be/internal/dto"
	"healthbridge-be/internal/pkg/serverutils"
	"healthbridge-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Ingest(ctx *fiber.Ctx) error
	Rebuild(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
	cfg              *config.Config
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService, cfg *config.Config) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
		cfg:              cfg,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Use(serverutils.JwtMiddleware(c.cfg.Auth.JWTSecret))
	h.Post("search", c.Search)
	h.Get("stats", c.Stats)
	h.Post("ingest", c.Ingest)
	h.Post("rebuild", c.Rebuild)
}

func (c *knowledgeController) Search(ctx *fiber.Ctx) error {
	var req dto.KnowledgeSearchRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Search(ctx.Context(), req.Query, req.K)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Search complete", res)
}

func (c *knowledgeController) Stats(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Stats retrieved", res)
}

// Ingest queues the document directory for background ingestion. Unlike
// Rebuild it returns as soon as the batches are on the queue; the
// consumer embeds and stores them without holding the request open.
func (c *knowledgeController) Ingest(ctx *fiber.Ctx) error {
	queued, err := c.knowledgeService.PublishDocuments(ctx.Context(), c.cfg.Knowledge.DocumentDir)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusAccepted, "Documents queued for ingestion", dto.KnowledgeIngestResponse{
		Collection: c.cfg.Knowledge.Collection,
		Queued:     queued,
	})
}

func (c *knowledgeController) Rebuild(ctx *fiber.Ctx) error {
	chunks, err := c.knowledgeService.RebuildCollection(ctx.Context(), c.cfg.Knowledge.DocumentDir)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Index rebuilt", dto.KnowledgeRebuildResponse{
		Collection: c.cfg.Knowledge.Collection,
		Chunks:     chunks,
	})
}
