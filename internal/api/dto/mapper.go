package dto

import (
	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/service"
)

// The functions below form the boundary between transport shapes and the
// entity graph. Inbound conversions never carry server-assigned fields and
// outbound conversions never carry credentials. References stay lightweight
// in both directions; turning an id into a live entity is resolver work.

// ToDepartmentCreateInput maps a create request to the service input.
func ToDepartmentCreateInput(req CreateDepartmentRequest) service.DepartmentCreateInput {
	return service.DepartmentCreateInput{
		Name:        req.Name,
		Description: req.Description,
	}
}

// ToDepartmentUpdateInput maps an update request to the service input.
func ToDepartmentUpdateInput(req UpdateDepartmentRequest) service.DepartmentUpdateInput {
	return service.DepartmentUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
	}
}

// FromDepartment maps a department to its response shape.
func FromDepartment(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// FromDepartments maps a department slice.
func FromDepartments(items []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(items))
	for i := range items {
		out = append(out, FromDepartment(&items[i]))
	}
	return out
}

// RefFromDepartment builds a lightweight department reference.
func RefFromDepartment(d *domain.Department) DepartmentRef {
	return DepartmentRef{ID: d.ID, Name: d.Name}
}

// ToAgentCreateInput maps a create request to the service input.
func ToAgentCreateInput(req CreateAgentRequest) service.AgentCreateInput {
	return service.AgentCreateInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		DepartmentID: req.DepartmentID,
	}
}

// ToAgentUpdateInput maps an update request to the service input.
func ToAgentUpdateInput(req UpdateAgentRequest) service.AgentUpdateInput {
	return service.AgentUpdateInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		DepartmentID: req.DepartmentID,
		Version:      req.Version,
	}
}

// FromAgent maps an agent to its response shape.
func FromAgent(a *domain.Agent) AgentResponse {
	return AgentResponse{
		ID:         a.ID,
		FirstName:  a.User.FirstName,
		LastName:   a.User.LastName,
		Email:      a.User.Email,
		Role:       a.User.Role,
		Department: DepartmentRef{ID: a.DepartmentID},
		Version:    a.Version,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// FromAgents maps an agent slice.
func FromAgents(items []domain.Agent) []AgentResponse {
	out := make([]AgentResponse, 0, len(items))
	for i := range items {
		out = append(out, FromAgent(&items[i]))
	}
	return out
}

// RefFromAgent builds a lightweight agent reference.
func RefFromAgent(a *domain.Agent) AgentRef {
	return AgentRef{ID: a.ID, FirstName: a.User.FirstName, LastName: a.User.LastName}
}

// ToCustomerCreateInput maps a create request to the service input.
func ToCustomerCreateInput(req CreateCustomerRequest) service.CustomerCreateInput {
	return service.CustomerCreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	}
}

// ToCustomerUpdateInput maps an update request to the service input.
func ToCustomerUpdateInput(req UpdateCustomerRequest) service.CustomerUpdateInput {
	return service.CustomerUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Version:   req.Version,
	}
}

// FromCustomer maps a customer to its response shape.
func FromCustomer(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		FirstName: c.User.FirstName,
		LastName:  c.User.LastName,
		Email:     c.User.Email,
		Phone:     c.Phone,
		Role:      c.User.Role,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// FromCustomers maps a customer slice.
func FromCustomers(items []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(items))
	for i := range items {
		out = append(out, FromCustomer(&items[i]))
	}
	return out
}

// RefFromCustomer builds a lightweight customer reference.
func RefFromCustomer(c *domain.Customer) CustomerRef {
	return CustomerRef{ID: c.ID, FirstName: c.User.FirstName, LastName: c.User.LastName}
}

// ToTicketCreateInput maps a create request to the service input.
func ToTicketCreateInput(req CreateTicketRequest) service.TicketCreateInput {
	return service.TicketCreateInput{
		Subject:      req.Subject,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		CustomerID:   req.CustomerID,
		DepartmentID: req.DepartmentID,
		AgentID:      req.AgentID,
	}
}

// ToTicketUpdateInput maps an update request to the service input.
func ToTicketUpdateInput(req UpdateTicketRequest) service.TicketUpdateInput {
	return service.TicketUpdateInput{
		Subject:      req.Subject,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DepartmentID: req.DepartmentID,
		AgentID:      req.AgentID,
		ClearAgent:   req.ClearAgent,
		Version:      req.Version,
	}
}

// FromTicket maps a ticket to its response shape with id-only references.
func FromTicket(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Customer:    CustomerRef{ID: t.CustomerID},
		Department:  DepartmentRef{ID: t.DepartmentID},
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedAgentID != nil {
		resp.AssignedAgent = &AgentRef{ID: *t.AssignedAgentID}
	}
	return resp
}

// FromTicketDetail maps a ticket together with its already-resolved
// relationships; nil entities fall back to id-only references.
func FromTicketDetail(t *domain.Ticket, customer *domain.Customer, department *domain.Department, agent *domain.Agent) TicketResponse {
	resp := FromTicket(t)
	if customer != nil {
		resp.Customer = RefFromCustomer(customer)
	}
	if department != nil {
		resp.Department = RefFromDepartment(department)
	}
	if agent != nil {
		ref := RefFromAgent(agent)
		resp.AssignedAgent = &ref
	}
	return resp
}

// FromTickets maps a ticket slice.
func FromTickets(items []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(items))
	for i := range items {
		out = append(out, FromTicket(&items[i]))
	}
	return out
}

// FromComment maps a comment to its response shape.
func FromComment(c *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:           c.ID,
		TicketID:     c.TicketID,
		AuthorUserID: c.AuthorUserID,
		Body:         c.Body,
		Version:      c.Version,
		CreatedAt:    c.CreatedAt,
	}
}

// FromComments maps a comment slice.
func FromComments(items []domain.TicketComment) []CommentResponse {
	out := make([]CommentResponse, 0, len(items))
	for i := range items {
		out = append(out, FromComment(&items[i]))
	}
	return out
}

// FromUser maps a user to its response shape.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Version:   u.Version,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
