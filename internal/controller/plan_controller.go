package controller

import (
	"viralizaai-be/internal/pkg/serverutils"
	"viralizaai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PlanController interface {
	RegisterRoutes(api fiber.Router)
}

type planController struct {
	paymentService service.IPaymentService
}

func NewPlanController(paymentService service.IPaymentService) PlanController {
	return &planController{paymentService: paymentService}
}

func (c *planController) RegisterRoutes(api fiber.Router) {
	api.Get("/plans", c.GetAllPlans)
	api.Get("/tools", c.GetTools)
}

// GetAllPlans returns every plan for sale with the tools it unlocks.
// @Router /api/plans [get]
func (c *planController) GetAllPlans(ctx *fiber.Ctx) error {
	plans, err := c.paymentService.GetPlans(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

// GetTools returns the tools that can be bought on their own.
// @Router /api/tools [get]
func (c *planController) GetTools(ctx *fiber.Ctx) error {
	tools, err := c.paymentService.GetTools(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Tools retrieved", tools))
}
