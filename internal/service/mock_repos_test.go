package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/crmkit/support-desk/internal/config"
	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/events"
	"github.com/crmkit/support-desk/internal/repository"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %s, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError with code %s, got %v", code, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected error code %s, got %s (%v)", code, domainErr.Code, err)
	}
}

// In-memory repositories mirroring the Postgres implementations, including
// the version guard: an update whose version does not match the stored row
// fails with ErrVersionConflict, and a missing row fails with pgx.ErrNoRows.

func advance(old time.Time) time.Time {
	now := time.Now()
	if !now.After(old) {
		now = old.Add(time.Microsecond)
	}
	return now
}

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	stored, ok := m.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != user.Version {
		return repository.ErrVersionConflict
	}
	user.Version++
	user.UpdatedAt = advance(stored.UpdatedAt)
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) insert(user *domain.User) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Version == 0 {
		user.Version = 1
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	m.users[user.ID] = &clone
}

type mockDepartmentRepo struct {
	departments map[string]*domain.Department
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{departments: make(map[string]*domain.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	dept.ID = uuid.NewString()
	dept.Version = 1
	now := time.Now()
	dept.CreatedAt = now
	dept.UpdatedAt = now
	clone := *dept
	m.departments[dept.ID] = &clone
	return nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	stored, ok := m.departments[dept.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != dept.Version {
		return repository.ErrVersionConflict
	}
	dept.Version++
	dept.UpdatedAt = advance(stored.UpdatedAt)
	clone := *dept
	m.departments[dept.ID] = &clone
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := m.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *dept
	return &clone, nil
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, name string) (*domain.Department, error) {
	for _, dept := range m.departments {
		if strings.EqualFold(dept.Name, name) {
			clone := *dept
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	out := make([]domain.Department, 0, len(m.departments))
	for _, dept := range m.departments {
		out = append(out, *dept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockDepartmentRepo) SearchByName(_ context.Context, name string) ([]domain.Department, error) {
	needle := strings.ToLower(name)
	var out []domain.Department
	for _, dept := range m.departments {
		if strings.Contains(strings.ToLower(dept.Name), needle) {
			out = append(out, *dept)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.departments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.departments, id)
	return nil
}

func (m *mockDepartmentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.departments[id]
	return ok, nil
}

type mockAgentRepo struct {
	agents      map[string]*domain.Agent
	users       *mockUserRepo
	departments *mockDepartmentRepo
}

func newMockAgentRepo(users *mockUserRepo, departments *mockDepartmentRepo) *mockAgentRepo {
	return &mockAgentRepo{
		agents:      make(map[string]*domain.Agent),
		users:       users,
		departments: departments,
	}
}

func (m *mockAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	m.users.insert(&agent.User)
	agent.ID = uuid.NewString()
	agent.Version = 1
	now := time.Now()
	agent.CreatedAt = now
	agent.UpdatedAt = now
	clone := *agent
	m.agents[agent.ID] = &clone
	return nil
}

func (m *mockAgentRepo) Update(ctx context.Context, agent *domain.Agent) error {
	stored, ok := m.agents[agent.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != agent.Version {
		return repository.ErrVersionConflict
	}
	agent.User.Version = m.users.users[agent.User.ID].Version
	if err := m.users.Update(ctx, &agent.User); err != nil {
		return err
	}
	agent.Version++
	agent.UpdatedAt = advance(stored.UpdatedAt)
	clone := *agent
	m.agents[agent.ID] = &clone
	return nil
}

func (m *mockAgentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	agent, ok := m.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *agent
	return &clone, nil
}

func (m *mockAgentRepo) List(_ context.Context, filter repository.AgentFilter) ([]domain.Agent, error) {
	var out []domain.Agent
	for _, agent := range m.agents {
		if filter.Name != "" {
			full := strings.ToLower(agent.User.FirstName + " " + agent.User.LastName)
			if !strings.Contains(full, strings.ToLower(filter.Name)) {
				continue
			}
		}
		if filter.DepartmentName != "" {
			dept, ok := m.departments.departments[agent.DepartmentID]
			if !ok || !strings.Contains(strings.ToLower(dept.Name), strings.ToLower(filter.DepartmentName)) {
				continue
			}
		}
		out = append(out, *agent)
	}
	return out, nil
}

func (m *mockAgentRepo) Delete(_ context.Context, id string) error {
	agent, ok := m.agents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.users.users, agent.User.ID)
	delete(m.agents, id)
	return nil
}

func (m *mockAgentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.agents[id]
	return ok, nil
}

func (m *mockAgentRepo) ExistsByDepartmentID(_ context.Context, departmentID string) (bool, error) {
	for _, agent := range m.agents {
		if agent.DepartmentID == departmentID {
			return true, nil
		}
	}
	return false, nil
}

type mockCustomerRepo struct {
	customers map[string]*domain.Customer
	users     *mockUserRepo
}

func newMockCustomerRepo(users *mockUserRepo) *mockCustomerRepo {
	return &mockCustomerRepo{customers: make(map[string]*domain.Customer), users: users}
}

func (m *mockCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	m.users.insert(&customer.User)
	customer.ID = uuid.NewString()
	customer.Version = 1
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	clone := *customer
	m.customers[customer.ID] = &clone
	return nil
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	stored, ok := m.customers[customer.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != customer.Version {
		return repository.ErrVersionConflict
	}
	customer.User.Version = m.users.users[customer.User.ID].Version
	if err := m.users.Update(ctx, &customer.User); err != nil {
		return err
	}
	customer.Version++
	customer.UpdatedAt = advance(stored.UpdatedAt)
	clone := *customer
	m.customers[customer.ID] = &clone
	return nil
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *customer
	return &clone, nil
}

func (m *mockCustomerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	email = domain.NormalizeEmail(email)
	for _, customer := range m.customers {
		if customer.User.Email == email {
			clone := *customer
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockCustomerRepo) List(_ context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0, len(m.customers))
	fragment := strings.ToLower(strings.TrimSpace(filter.Name))
	for _, customer := range m.customers {
		if fragment != "" {
			first := strings.ToLower(customer.User.FirstName)
			last := strings.ToLower(customer.User.LastName)
			if !strings.Contains(first, fragment) && !strings.Contains(last, fragment) {
				continue
			}
		}
		out = append(out, *customer)
	}
	return out, nil
}

func (m *mockCustomerRepo) Delete(_ context.Context, id string) error {
	customer, ok := m.customers[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.users.users, customer.User.ID)
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.customers[id]
	return ok, nil
}

type mockTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func newMockTicketRepo() *mockTicketRepo {
	return &mockTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (m *mockTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = uuid.NewString()
	ticket.Version = 1
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	clone := *ticket
	m.tickets[ticket.ID] = &clone
	return nil
}

func (m *mockTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	stored, ok := m.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	ticket.UpdatedAt = advance(stored.UpdatedAt)
	clone := *ticket
	m.tickets[ticket.ID] = &clone
	return nil
}

func (m *mockTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (m *mockTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range m.tickets {
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.DepartmentID != nil && ticket.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.AssignedAgentID != nil {
			if ticket.AssignedAgentID == nil || *ticket.AssignedAgentID != *filter.AssignedAgentID {
				continue
			}
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tickets, id)
	return nil
}

func (m *mockTicketRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.tickets[id]
	return ok, nil
}

func (m *mockTicketRepo) ExistsByCustomerID(_ context.Context, customerID string) (bool, error) {
	for _, ticket := range m.tickets {
		if ticket.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTicketRepo) ExistsByDepartmentID(_ context.Context, departmentID string) (bool, error) {
	for _, ticket := range m.tickets {
		if ticket.DepartmentID == departmentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTicketRepo) ExistsByAssignedAgentID(_ context.Context, agentID string) (bool, error) {
	for _, ticket := range m.tickets {
		if ticket.AssignedAgentID != nil && *ticket.AssignedAgentID == agentID {
			return true, nil
		}
	}
	return false, nil
}

type mockCommentRepo struct {
	comments []*domain.TicketComment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{}
}

func (m *mockCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	comment.ID = uuid.NewString()
	comment.Version = 1
	comment.CreatedAt = time.Now()
	if n := len(m.comments); n > 0 {
		comment.CreatedAt = advance(m.comments[n-1].CreatedAt)
	}
	clone := *comment
	m.comments = append(m.comments, &clone)
	return nil
}

func (m *mockCommentRepo) Update(_ context.Context, comment *domain.TicketComment) error {
	for i, stored := range m.comments {
		if stored.ID != comment.ID {
			continue
		}
		if stored.Version != comment.Version {
			return repository.ErrVersionConflict
		}
		comment.Version++
		clone := *comment
		m.comments[i] = &clone
		return nil
	}
	return pgx.ErrNoRows
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (*domain.TicketComment, error) {
	for _, comment := range m.comments {
		if comment.ID == id {
			clone := *comment
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	var out []domain.TicketComment
	for _, comment := range m.comments {
		if comment.TicketID == ticketID {
			out = append(out, *comment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockCommentRepo) ListByAuthor(_ context.Context, authorUserID string) ([]domain.TicketComment, error) {
	var out []domain.TicketComment
	for _, comment := range m.comments {
		if comment.AuthorUserID == authorUserID {
			out = append(out, *comment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	for i, comment := range m.comments {
		if comment.ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type testEnv struct {
	users       *mockUserRepo
	departments *mockDepartmentRepo
	agents      *mockAgentRepo
	customers   *mockCustomerRepo
	tickets     *mockTicketRepo
	comments    *mockCommentRepo

	resolver *Resolver
	guard    *IntegrityGuard

	departmentSvc *DepartmentService
	agentSvc      *AgentService
	customerSvc   *CustomerService
	ticketSvc     *TicketService
	commentSvc    *CommentService
	authSvc       *AuthService
}

func newTestEnv() *testEnv {
	users := newMockUserRepo()
	departments := newMockDepartmentRepo()
	agents := newMockAgentRepo(users, departments)
	customers := newMockCustomerRepo(users)
	tickets := newMockTicketRepo()
	comments := newMockCommentRepo()

	resolver := NewResolver(ResolverDependencies{
		CustomerRepo:   customers,
		DepartmentRepo: departments,
		AgentRepo:      agents,
		TicketRepo:     tickets,
		CommentRepo:    comments,
	})
	guard := NewIntegrityGuard(agents, tickets)
	dispatcher := events.NewInMemoryDispatcher()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            bcrypt.MinCost,
		},
	}

	return &testEnv{
		users:       users,
		departments: departments,
		agents:      agents,
		customers:   customers,
		tickets:     tickets,
		comments:    comments,
		resolver:    resolver,
		guard:       guard,
		departmentSvc: NewDepartmentService(departments, guard),
		agentSvc: NewAgentService(AgentDependencies{
			AgentRepo:  agents,
			UserRepo:   users,
			Resolver:   resolver,
			Guard:      guard,
			BcryptCost: bcrypt.MinCost,
		}),
		customerSvc: NewCustomerService(CustomerDependencies{
			CustomerRepo: customers,
			UserRepo:     users,
			Resolver:     resolver,
			Guard:        guard,
			BcryptCost:   bcrypt.MinCost,
		}),
		ticketSvc: NewTicketService(TicketDependencies{
			TicketRepo: tickets,
			Resolver:   resolver,
			Dispatcher: dispatcher,
		}),
		commentSvc: NewCommentService(CommentDependencies{
			CommentRepo: comments,
			Resolver:    resolver,
			Dispatcher:  dispatcher,
		}),
		authSvc: NewAuthService(cfg, users),
	}
}

func (e *testEnv) mustDepartment(ctx context.Context, name string) *domain.Department {
	dept, err := e.departmentSvc.Create(ctx, DepartmentCreateInput{Name: name})
	if err != nil {
		panic(err)
	}
	return dept
}

func (e *testEnv) mustCustomer(ctx context.Context, firstName, email string) *domain.Customer {
	customer, err := e.customerSvc.Create(ctx, CustomerCreateInput{
		FirstName: firstName,
		LastName:  "Tester",
		Email:     email,
		Password:  "secret1",
		Phone:     "+1-555-0100",
	})
	if err != nil {
		panic(err)
	}
	return customer
}

func (e *testEnv) mustAgent(ctx context.Context, firstName, email, departmentID string) *domain.Agent {
	agent, err := e.agentSvc.Create(ctx, AgentCreateInput{
		FirstName:    firstName,
		LastName:     "Tester",
		Email:        email,
		Password:     "secret1",
		DepartmentID: departmentID,
	})
	if err != nil {
		panic(err)
	}
	return agent
}

func (e *testEnv) mustTicket(ctx context.Context, subject, customerID, departmentID string) *domain.Ticket {
	ticket, err := e.ticketSvc.Create(ctx, TicketCreateInput{
		Subject:      subject,
		Description:  "created in test setup",
		Status:       domain.TicketStatusOpen,
		Priority:     domain.TicketPriorityMedium,
		CustomerID:   customerID,
		DepartmentID: departmentID,
	})
	if err != nil {
		panic(err)
	}
	return ticket
}
