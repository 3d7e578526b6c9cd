package controller

import (
	"viralizaai-be/internal/dto"
	"viralizaai-be/internal/pkg/serverutils"
	"viralizaai-be/internal/service"
	"viralizaai-be/pkg/entitlement"

	"github.com/gofiber/fiber/v2"
)

type IAccessController interface {
	RegisterRoutes(r fiber.Router)
	CheckTool(ctx *fiber.Ctx) error
	ListAccess(ctx *fiber.Ctx) error
}

type accessController struct {
	service service.IAccessService
	auth    fiber.Handler
}

func NewAccessController(service service.IAccessService, auth fiber.Handler) IAccessController {
	return &accessController{service: service, auth: auth}
}

func (c *accessController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/access", c.auth)
	h.Get("/", c.ListAccess)
	h.Get("/tools/:toolName", c.CheckTool)
}

func (c *accessController) CheckTool(ctx *fiber.Ctx) error {
	principal, ok := serverutils.PrincipalFrom(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	toolName := ctx.Params("toolName")
	has, err := c.service.HasAccess(ctx.UserContext(), principal, toolName)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Access checked", dto.ToolAccessCheckResponse{
		ToolId:    entitlement.ToolID(toolName),
		HasAccess: has,
	}))
}

func (c *accessController) ListAccess(ctx *fiber.Ctx) error {
	principal, ok := serverutils.PrincipalFrom(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	grants, err := c.service.ListAccess(ctx.UserContext(), principal)
	if err != nil {
		return err
	}
	res := make([]dto.ToolAccessResponse, len(grants))
	for i, g := range grants {
		res[i] = dto.ToolAccessResponse{
			ToolId:     g.ToolId,
			ToolName:   g.ToolName,
			HasAccess:  g.HasAccess,
			AccessType: string(g.AccessType),
			ExpiresAt:  g.ExpiresAt,
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Access retrieved", res))
}
