package handler

import (
	"errors"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SupplierLocationHandler struct {
	locationService service.SupplierLocationService
}

func NewSupplierLocationHandler(locationService service.SupplierLocationService) *SupplierLocationHandler {
	return &SupplierLocationHandler{locationService: locationService}
}

// Create adds a service location for the authenticated supplier
// POST /api/supplier-location
func (h *SupplierLocationHandler) Create(c *fiber.Ctx) error {
	supplierID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var loc model.SupplierLocation
	if err := c.BodyParser(&loc); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.locationService.Create(supplierID, &loc); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Location created", "data": loc})
}

// List returns locations, optionally filtered by district (public)
// GET /api/supplier-location
func (h *SupplierLocationHandler) List(c *fiber.Ctx) error {
	locs, err := h.locationService.List(c.Query("district"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(locs)
}

// ListMine returns the authenticated supplier's locations
// GET /api/supplier-location/mine
func (h *SupplierLocationHandler) ListMine(c *fiber.Ctx) error {
	supplierID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	locs, err := h.locationService.ListBySupplier(supplierID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(locs)
}

// Update edits an owned location
// PUT /api/supplier-location/:id
func (h *SupplierLocationHandler) Update(c *fiber.Ctx) error {
	supplierID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid location ID"})
	}

	var loc model.SupplierLocation
	if err := c.BodyParser(&loc); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.locationService.Update(id, supplierID, &loc)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLocationNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotLocationOwner):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "Location updated", "data": updated})
}

// Delete removes an owned location
// DELETE /api/supplier-location/:id
func (h *SupplierLocationHandler) Delete(c *fiber.Ctx) error {
	supplierID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid location ID"})
	}

	if err := h.locationService.Delete(id, supplierID); err != nil {
		switch {
		case errors.Is(err, service.ErrLocationNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotLocationOwner):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
	}
	return c.JSON(fiber.Map{"message": "Location deleted"})
}
