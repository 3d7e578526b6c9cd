package controller

import (
	"viralizaai-be/internal/dto"
	"viralizaai-be/internal/pkg/serverutils"
	"viralizaai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetTransactions(ctx *fiber.Ctx) error
	ConfirmPayment(ctx *fiber.Ctx) error
	FailPayment(ctx *fiber.Ctx) error
	PurgeExpiredAccess(ctx *fiber.Ctx) error
}

type adminController struct {
	paymentService service.IPaymentService
	accessService  service.IAccessService
	auth           fiber.Handler
}

func NewAdminController(paymentService service.IPaymentService, accessService service.IAccessService, auth fiber.Handler) IAdminController {
	return &adminController{
		paymentService: paymentService,
		accessService:  accessService,
		auth:           auth,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin", c.auth, serverutils.RequireAdmin)
	h.Get("/payments", c.GetTransactions)
	h.Post("/payments/:id/confirm", c.ConfirmPayment)
	h.Post("/payments/:id/fail", c.FailPayment)
	h.Post("/access/purge", c.PurgeExpiredAccess)
}

func (c *adminController) GetTransactions(ctx *fiber.Ctx) error {
	principal, _ := serverutils.PrincipalFrom(ctx)

	var query dto.ListPaymentsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.paymentService.ListPayments(ctx.UserContext(), principal, query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transactions retrieved", res))
}

// ConfirmPayment settles an instant payment by hand, e.g. after checking the bank statement.
func (c *adminController) ConfirmPayment(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payment ID")
	}

	var req dto.ConfirmPaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.paymentService.MarkPaid(ctx.UserContext(), id, req.TransactionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment confirmed", res))
}

func (c *adminController) FailPayment(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payment ID")
	}

	var req dto.FailPaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.paymentService.MarkFailed(ctx.UserContext(), id, req.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment marked as failed", res))
}

func (c *adminController) PurgeExpiredAccess(ctx *fiber.Ctx) error {
	n, err := c.accessService.PurgeExpired(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Expired access revoked", fiber.Map{"revoked": n}))
}
