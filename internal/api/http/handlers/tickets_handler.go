package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/support-desk/internal/api/dto"
	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/repository"
	"github.com/crmkit/support-desk/internal/service"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service  *service.TicketService
	resolver *service.Resolver
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, resolver *service.Resolver) *TicketsHandler {
	return &TicketsHandler{service: ticketService, resolver: resolver}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), dto.ToTicketCreateInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// List GET /tickets. Supports customer_id, department_id, agent_id, status
// and priority query filters; all are combined with AND.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}

	tickets, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// Get GET /tickets/:id. Returns the ticket with display fields on its
// relationship references.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	customer, err := h.resolver.Customer(c.UserContext(), ticket.CustomerID)
	if err != nil {
		return err
	}
	department, err := h.resolver.Department(c.UserContext(), ticket.DepartmentID)
	if err != nil {
		return err
	}
	var agent *domain.Agent
	if ticket.AssignedAgentID != nil {
		agent, err = h.resolver.Agent(c.UserContext(), *ticket.AssignedAgentID)
		if err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"data": dto.FromTicketDetail(ticket, customer, department, agent)})
}

// Update PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Update(c.UserContext(), c.Params("id"), dto.ToTicketUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Assign PATCH /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}

	ticket, err := h.service.AssignAgent(c.UserContext(), c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, error) {
	var filter repository.TicketFilter

	if v := c.Query("customer_id"); v != "" {
		filter.CustomerID = &v
	}
	if v := c.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := c.Query("agent_id"); v != "" {
		filter.AssignedAgentID = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.TicketStatus(v)
		if !domain.ValidStatus(status) {
			return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": v})
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.TicketPriority(v)
		if !domain.ValidPriority(priority) {
			return filter, apperrors.NewValidationError("unknown priority", map[string]any{"priority": v})
		}
		filter.Priority = &priority
	}
	return filter, nil
}
