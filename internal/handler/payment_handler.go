package handler

import (
	"errors"

	"fasalbajar-api/internal/gateway"
	"fasalbajar-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Initiate builds the signed gateway form for an online-payment order
// POST /api/payment/initiate/:orderId
func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	buyerID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orderID, err := parseUUID(c.Params("orderId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	form, txn, err := h.paymentService.Initiate(buyerID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotOrderBuyer):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"form": form, "transaction": txn})
}

// Callback handles the gateway redirect after a payment attempt
// GET /api/payment/callback?data=<base64>
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	data := c.Query("data")
	if data == "" {
		return c.Status(400).JSON(fiber.Map{"error": "data parameter is required"})
	}

	txn, err := h.paymentService.HandleCallback(data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTamperedPayment), errors.Is(err, service.ErrAmountMismatch):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, gateway.ErrMalformedPayload):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
	}

	return c.JSON(fiber.Map{"message": "Payment processed", "transaction": txn})
}

// CheckStatus re-queries the gateway for a pending transaction
// GET /api/payment/status/:orderId
func (h *PaymentHandler) CheckStatus(c *fiber.Ctx) error {
	buyerID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orderID, err := parseUUID(c.Params("orderId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	txn, err := h.paymentService.CheckStatus(c.Context(), buyerID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotOrderBuyer):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(502).JSON(fiber.Map{"error": "gateway status lookup failed"})
		}
	}

	return c.JSON(txn)
}

// CompleteCOD settles a cash-on-delivery order (admin only)
// POST /api/payment/cod/:orderId/complete
func (h *PaymentHandler) CompleteCOD(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("orderId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	txn, err := h.paymentService.CompleteCashOnDelivery(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Payment completed", "transaction": txn})
}

// Refund moves a completed transaction to Refunded (admin only)
// POST /api/payment/:id/refund
func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	txnID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	txn, err := h.paymentService.Refund(txnID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotRefundable):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
	}

	return c.JSON(fiber.Map{"message": "Payment refunded", "transaction": txn})
}

// ListByOrder lists payment attempts for an order
// GET /api/payment/order/:orderId
func (h *PaymentHandler) ListByOrder(c *fiber.Ctx) error {
	buyerID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orderID, err := parseUUID(c.Params("orderId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	txns, err := h.paymentService.ListByOrder(buyerID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotOrderBuyer):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
	}
	return c.JSON(txns)
}
