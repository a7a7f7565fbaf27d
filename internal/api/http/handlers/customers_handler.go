package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/support-desk/internal/api/dto"
	"github.com/crmkit/support-desk/internal/repository"
	"github.com/crmkit/support-desk/internal/service"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// CustomersHandler manages customer endpoints.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// Create POST /customers. Open registration endpoint.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customer, err := h.service.Create(c.UserContext(), dto.ToCustomerCreateInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromCustomer(customer)})
}

// List GET /customers. An email query narrows to a single exact match; a
// name query matches first or last name fragments.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	if email := c.Query("email"); email != "" {
		customer, err := h.service.GetByEmail(c.UserContext(), email)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": []dto.CustomerResponse{dto.FromCustomer(customer)}})
	}

	customers, err := h.service.Find(c.UserContext(), repository.CustomerFilter{Name: c.Query("name")})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCustomers(customers)})
}

// Get GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	customer, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCustomer(customer)})
}

// Update PUT /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customer, err := h.service.Update(c.UserContext(), c.Params("id"), dto.ToCustomerUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCustomer(customer)})
}

// Delete DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
