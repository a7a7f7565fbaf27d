package service

import (
	"context"
	"strings"

	"github.com/crmkit/support-desk/internal/auth"
	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/repository"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// AgentService manages agent profiles. An agent and its user form one
// aggregate: creation and deletion always touch both in the same transaction,
// and User is never exposed as an independently creatable resource.
type AgentService struct {
	agents     repository.AgentRepository
	users      repository.UserRepository
	resolver   *Resolver
	guard      *IntegrityGuard
	bcryptCost int
}

// AgentDependencies bundles requirements for the agent service.
type AgentDependencies struct {
	AgentRepo  repository.AgentRepository
	UserRepo   repository.UserRepository
	Resolver   *Resolver
	Guard      *IntegrityGuard
	BcryptCost int
}

// NewAgentService builds the service.
func NewAgentService(deps AgentDependencies) *AgentService {
	return &AgentService{
		agents:     deps.AgentRepo,
		users:      deps.UserRepo,
		resolver:   deps.Resolver,
		guard:      deps.Guard,
		bcryptCost: deps.BcryptCost,
	}
}

// AgentCreateInput describes agent creation payload.
type AgentCreateInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	DepartmentID string
}

// AgentUpdateInput describes an agent update. Nil fields are left unchanged;
// a non-nil Password triggers a credential change.
type AgentUpdateInput struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Password     *string
	DepartmentID *string
	Version      int64
}

// Create provisions the agent and its owning user in one transaction.
func (s *AgentService) Create(ctx context.Context, input AgentCreateInput) (*domain.Agent, error) {
	if err := validatePersonInput(input.FirstName, input.LastName, input.Email, input.Password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.DepartmentID) == "" {
		return nil, apperrors.NewValidationError("department_id required", nil)
	}

	if err := s.checkEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	dept, err := s.resolver.Department(ctx, input.DepartmentID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	agent := &domain.Agent{
		DepartmentID: dept.ID,
		User: domain.User{
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			Email:        domain.NormalizeEmail(input.Email),
			PasswordHash: hash,
			Role:         domain.RoleAgent,
		},
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// GetByID fetches an agent.
func (s *AgentService) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	return s.resolver.Agent(ctx, id)
}

// Find lists agents filtered by user name and/or department name fragments.
func (s *AgentService) Find(ctx context.Context, filter repository.AgentFilter) ([]domain.Agent, error) {
	agents, err := s.agents.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}

// Update applies profile changes: names, email (with uniqueness re-check),
// optional password change, and department reassignment.
func (s *AgentService) Update(ctx context.Context, id string, input AgentUpdateInput) (*domain.Agent, error) {
	if input.Version <= 0 {
		return nil, apperrors.NewValidationError("version required", nil)
	}

	agent, err := s.resolver.Agent(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.DepartmentID != nil && *input.DepartmentID != agent.DepartmentID {
		dept, err := s.resolver.Department(ctx, *input.DepartmentID)
		if err != nil {
			return nil, err
		}
		agent.DepartmentID = dept.ID
		changed = true
	}
	if input.FirstName != nil {
		first := strings.TrimSpace(*input.FirstName)
		if first == "" {
			return nil, apperrors.NewValidationError("first name required", nil)
		}
		if first != agent.User.FirstName {
			agent.User.FirstName = first
			changed = true
		}
	}
	if input.LastName != nil {
		last := strings.TrimSpace(*input.LastName)
		if last == "" {
			return nil, apperrors.NewValidationError("last name required", nil)
		}
		if last != agent.User.LastName {
			agent.User.LastName = last
			changed = true
		}
	}
	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		if email != agent.User.Email {
			if err := s.checkEmailFree(ctx, email); err != nil {
				return nil, err
			}
			agent.User.Email = email
			changed = true
		}
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		agent.User.PasswordHash = hash
		changed = true
	}

	if !changed {
		return agent, nil
	}

	agent.Version = input.Version
	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, mapRepoError(err, "agent", map[string]any{"agent_id": id})
	}
	return agent, nil
}

// Delete removes the agent and its owned user unless tickets are still
// assigned to it.
func (s *AgentService) Delete(ctx context.Context, id string) error {
	exists, err := s.agents.Exists(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !exists {
		return apperrors.NewNotFound("agent", map[string]any{"agent_id": id})
	}

	if err := s.guard.CheckAgentDeletable(ctx, id); err != nil {
		return err
	}

	if err := s.agents.Delete(ctx, id); err != nil {
		return mapRepoError(err, "agent", map[string]any{"agent_id": id})
	}
	return nil
}

func (s *AgentService) checkEmailFree(ctx context.Context, email string) error {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if taken {
		return apperrors.NewConflict("email already in use", map[string]any{"email": domain.NormalizeEmail(email)})
	}
	return nil
}

func validatePersonInput(firstName, lastName, email, password string) error {
	switch {
	case strings.TrimSpace(firstName) == "":
		return apperrors.NewValidationError("first_name required", nil)
	case strings.TrimSpace(lastName) == "":
		return apperrors.NewValidationError("last_name required", nil)
	case strings.TrimSpace(email) == "":
		return apperrors.NewValidationError("email required", nil)
	case !strings.Contains(email, "@"):
		return apperrors.NewValidationError("email invalid", map[string]any{"email": email})
	case len(password) < 6:
		return apperrors.NewValidationError("password must be at least 6 characters", nil)
	}
	return nil
}
