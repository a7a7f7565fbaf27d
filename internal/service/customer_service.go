package service

import (
	"context"
	"strings"

	"github.com/crmkit/support-desk/internal/auth"
	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/repository"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// CustomerService manages customer profiles. Like agents, a customer and its
// user form one aggregate created and deleted together.
type CustomerService struct {
	customers  repository.CustomerRepository
	users      repository.UserRepository
	resolver   *Resolver
	guard      *IntegrityGuard
	bcryptCost int
}

// CustomerDependencies bundles requirements for the customer service.
type CustomerDependencies struct {
	CustomerRepo repository.CustomerRepository
	UserRepo     repository.UserRepository
	Resolver     *Resolver
	Guard        *IntegrityGuard
	BcryptCost   int
}

// NewCustomerService builds the service.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	return &CustomerService{
		customers:  deps.CustomerRepo,
		users:      deps.UserRepo,
		resolver:   deps.Resolver,
		guard:      deps.Guard,
		bcryptCost: deps.BcryptCost,
	}
}

// CustomerCreateInput describes customer creation payload.
type CustomerCreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// CustomerUpdateInput describes a customer update. Nil fields are left
// unchanged.
type CustomerUpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Phone     *string
	Version   int64
}

// Create provisions the customer and its owning user in one transaction.
func (s *CustomerService) Create(ctx context.Context, input CustomerCreateInput) (*domain.Customer, error) {
	if err := validatePersonInput(input.FirstName, input.LastName, input.Email, input.Password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, apperrors.NewValidationError("phone required", nil)
	}

	if err := s.checkEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	customer := &domain.Customer{
		Phone: strings.TrimSpace(input.Phone),
		User: domain.User{
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			Email:        domain.NormalizeEmail(input.Email),
			PasswordHash: hash,
			Role:         domain.RoleCustomer,
		},
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// GetByID fetches a customer.
func (s *CustomerService) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return s.resolver.Customer(ctx, id)
}

// GetByEmail fetches a customer through its user's email.
func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapRepoError(err, "customer", map[string]any{"email": domain.NormalizeEmail(email)})
	}
	return customer, nil
}

// Find returns customers matching the filter. A name fragment matches
// against first or last name; an empty filter returns everyone.
func (s *CustomerService) Find(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return customers, nil
}

// Update applies profile changes to the customer and its user.
func (s *CustomerService) Update(ctx context.Context, id string, input CustomerUpdateInput) (*domain.Customer, error) {
	if input.Version <= 0 {
		return nil, apperrors.NewValidationError("version required", nil)
	}

	customer, err := s.resolver.Customer(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, apperrors.NewValidationError("phone required", nil)
		}
		if phone != customer.Phone {
			customer.Phone = phone
			changed = true
		}
	}
	if input.FirstName != nil {
		first := strings.TrimSpace(*input.FirstName)
		if first == "" {
			return nil, apperrors.NewValidationError("first name required", nil)
		}
		if first != customer.User.FirstName {
			customer.User.FirstName = first
			changed = true
		}
	}
	if input.LastName != nil {
		last := strings.TrimSpace(*input.LastName)
		if last == "" {
			return nil, apperrors.NewValidationError("last name required", nil)
		}
		if last != customer.User.LastName {
			customer.User.LastName = last
			changed = true
		}
	}
	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		if email != customer.User.Email {
			if err := s.checkEmailFree(ctx, email); err != nil {
				return nil, err
			}
			customer.User.Email = email
			changed = true
		}
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		customer.User.PasswordHash = hash
		changed = true
	}

	if !changed {
		return customer, nil
	}

	customer.Version = input.Version
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, mapRepoError(err, "customer", map[string]any{"customer_id": id})
	}
	return customer, nil
}

// Delete removes the customer and its owned user unless tickets still
// reference it as the filer.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	exists, err := s.customers.Exists(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !exists {
		return apperrors.NewNotFound("customer", map[string]any{"customer_id": id})
	}

	if err := s.guard.CheckCustomerDeletable(ctx, id); err != nil {
		return err
	}

	if err := s.customers.Delete(ctx, id); err != nil {
		return mapRepoError(err, "customer", map[string]any{"customer_id": id})
	}
	return nil
}

func (s *CustomerService) checkEmailFree(ctx context.Context, email string) error {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if taken {
		return apperrors.NewConflict("email already in use", map[string]any{"email": domain.NormalizeEmail(email)})
	}
	return nil
}
