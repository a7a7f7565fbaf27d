package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/support-desk/internal/api/dto"
	"github.com/crmkit/support-desk/internal/service"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// DepartmentsHandler manages department endpoints.
type DepartmentsHandler struct {
	service *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService}
}

// Create POST /departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	department, err := h.service.Create(c.UserContext(), dto.ToDepartmentCreateInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromDepartment(department)})
}

// List GET /departments. An optional name query switches to a substring
// search.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	if name := c.Query("name"); name != "" {
		departments, err := h.service.SearchByName(c.UserContext(), name)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.FromDepartments(departments)})
	}

	departments, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromDepartments(departments)})
}

// Get GET /departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	department, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromDepartment(department)})
}

// Update PUT /departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	department, err := h.service.Update(c.UserContext(), c.Params("id"), dto.ToDepartmentUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromDepartment(department)})
}

// Delete DELETE /departments/:id.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
