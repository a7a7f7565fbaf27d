package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/support-desk/internal/api/dto"
	"github.com/crmkit/support-desk/internal/repository"
	"github.com/crmkit/support-desk/internal/service"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// AgentsHandler manages agent endpoints.
type AgentsHandler struct {
	service *service.AgentService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(agentService *service.AgentService) *AgentsHandler {
	return &AgentsHandler{service: agentService}
}

// Create POST /agents.
func (h *AgentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	agent, err := h.service.Create(c.UserContext(), dto.ToAgentCreateInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromAgent(agent)})
}

// List GET /agents. Supports name and department query filters.
func (h *AgentsHandler) List(c *fiber.Ctx) error {
	filter := repository.AgentFilter{
		Name:           c.Query("name"),
		DepartmentName: c.Query("department"),
	}

	agents, err := h.service.Find(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAgents(agents)})
}

// Get GET /agents/:id.
func (h *AgentsHandler) Get(c *fiber.Ctx) error {
	agent, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAgent(agent)})
}

// Update PUT /agents/:id.
func (h *AgentsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	agent, err := h.service.Update(c.UserContext(), c.Params("id"), dto.ToAgentUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAgent(agent)})
}

// Delete DELETE /agents/:id.
func (h *AgentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
