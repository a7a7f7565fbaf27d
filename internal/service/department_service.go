package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/repository"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// DepartmentService coordinates department workflows, including the guarded
// delete that keeps agents and tickets from dangling.
type DepartmentService struct {
	departments repository.DepartmentRepository
	guard       *IntegrityGuard
}

// NewDepartmentService constructs the service.
func NewDepartmentService(departments repository.DepartmentRepository, guard *IntegrityGuard) *DepartmentService {
	return &DepartmentService{departments: departments, guard: guard}
}

// DepartmentCreateInput describes department creation payload.
type DepartmentCreateInput struct {
	Name        string
	Description string
}

// DepartmentUpdateInput describes a department update. Nil fields are left
// unchanged. Version must carry the value the caller last read.
type DepartmentUpdateInput struct {
	Name        *string
	Description *string
	Version     int64
}

// Create adds a department, enforcing name uniqueness.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentCreateInput) (*domain.Department, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("department name required", nil)
	}

	if _, err := s.departments.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("department name already in use",
			map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	dept := &domain.Department{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// GetByID fetches a department.
func (s *DepartmentService) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "department", map[string]any{"department_id": id})
	}
	return dept, nil
}

// List returns all departments.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// SearchByName returns departments whose name contains the given fragment,
// case-insensitively.
func (s *DepartmentService) SearchByName(ctx context.Context, name string) ([]domain.Department, error) {
	depts, err := s.departments.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// Update applies name/description changes. A rename re-checks uniqueness.
func (s *DepartmentService) Update(ctx context.Context, id string, input DepartmentUpdateInput) (*domain.Department, error) {
	if input.Version <= 0 {
		return nil, apperrors.NewValidationError("version required", nil)
	}

	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "department", map[string]any{"department_id": id})
	}

	changed := false
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("department name required", nil)
		}
		if name != dept.Name {
			// A case-only rename keeps the same identity, so the
			// uniqueness lookup would find the department itself.
			if !strings.EqualFold(dept.Name, name) {
				if _, err := s.departments.GetByName(ctx, name); err == nil {
					return nil, apperrors.NewConflict("department name already in use",
						map[string]any{"name": name})
				} else if !errors.Is(err, pgx.ErrNoRows) {
					return nil, apperrors.MapError(err)
				}
			}
			dept.Name = name
			changed = true
		}
	}
	if input.Description != nil && *input.Description != dept.Description {
		dept.Description = *input.Description
		changed = true
	}

	if !changed {
		return dept, nil
	}

	dept.Version = input.Version
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, mapRepoError(err, "department", map[string]any{"department_id": id})
	}
	return dept, nil
}

// Delete removes a department unless agents or tickets still reference it.
// Existence is checked first, then the in-use guard, then the delete.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	exists, err := s.departments.Exists(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !exists {
		return apperrors.NewNotFound("department", map[string]any{"department_id": id})
	}

	if err := s.guard.CheckDepartmentDeletable(ctx, id); err != nil {
		return err
	}

	if err := s.departments.Delete(ctx, id); err != nil {
		return mapRepoError(err, "department", map[string]any{"department_id": id})
	}
	return nil
}
