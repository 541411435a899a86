package handler

import (
	"errors"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create places an order for the authenticated buyer
// POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	buyerID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orderService.Create(buyerID, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Order placed", "data": order})
}

// ItemStatusRequest is the farmer's accept/decline decision.
type ItemStatusRequest struct {
	Status      model.ItemStatus `json:"status"`
	FarmerNotes string           `json:"farmer_notes"`
}

// UpdateItemStatus accepts or declines one order item
// PUT /api/orders/items/:id/status
func (h *OrderHandler) UpdateItemStatus(c *fiber.Ctx) error {
	farmerID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req ItemStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.orderService.UpdateItemStatus(farmerID, itemID, req.Status, req.FarmerNotes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderItemNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotItemOwner):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidTransition):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"message": "Item status updated", "data": item})
}

// Get returns one order for a participant (buyer or involved farmer)
// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.orderService.Get(userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotOrderParticipant):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
	}
	return c.JSON(order)
}

// ListMine lists the authenticated buyer's orders
// GET /api/orders
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	buyerID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orders, err := h.orderService.ListBuyerOrders(buyerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(orders)
}

// ListIncoming lists order items addressed to the authenticated farmer
// GET /api/orders/incoming
func (h *OrderHandler) ListIncoming(c *fiber.Ctx) error {
	farmerID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	items, err := h.orderService.ListFarmerItems(farmerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(items)
}
