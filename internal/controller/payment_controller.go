package controller

import (
	"viralizaai-be/internal/dto"
	"viralizaai-be/internal/pkg/serverutils"
	"viralizaai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Checkout(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	ListPayments(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
	auth    fiber.Handler
}

func NewPaymentController(service service.IPaymentService, auth fiber.Handler) IPaymentController {
	return &paymentController{service: service, auth: auth}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payments")
	h.Post("/midtrans/notification", c.Webhook)

	h.Post("/checkout", c.auth, c.Checkout)
	h.Get("/", c.auth, c.ListPayments)
	h.Get("/:id/status", c.auth, c.GetStatus)
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	principal, ok := serverutils.PrincipalFrom(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Checkout(ctx.UserContext(), principal, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Checkout created", res))
}

// GetStatus is polled by the client until the payment reaches a terminal state.
func (c *paymentController) GetStatus(ctx *fiber.Ctx) error {
	principal, ok := serverutils.PrincipalFrom(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payment ID")
	}

	res, err := c.service.GetStatus(ctx.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment status", res))
}

func (c *paymentController) ListPayments(ctx *fiber.Ctx) error {
	principal, ok := serverutils.PrincipalFrom(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var query dto.ListPaymentsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.ListPayments(ctx.UserContext(), principal, query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payments retrieved", res))
}

// Webhook receives Midtrans notifications. It is unauthenticated; the
// signature in the body is checked by the service.
func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid notification body")
	}

	if err := c.service.HandleNotification(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("OK", nil))
}
