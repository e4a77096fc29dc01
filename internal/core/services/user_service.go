package services

import (
	"context"
	"errors"
	"log"

	"plafondhub/internal/adapters/persistence/models"
	"plafondhub/internal/adapters/persistence/repositories"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUnknownRole        = errors.New("unknown role name")
	ErrOldPasswordWrong   = errors.New("old password is incorrect")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrCannotDemoteSelf   = errors.New("cannot remove your own admin role")
)

// UserService handles user administration and self-service profile updates
type UserService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// CreateUserInput represents admin user creation input
type CreateUserInput struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Email    string   `json:"email" validate:"required,email"`
	FullName string   `json:"fullName"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles" validate:"required,min=1"`
}

// UpdateUserInput represents admin user update input
type UpdateUserInput struct {
	Email    *string  `json:"email"`
	FullName *string  `json:"fullName"`
	IsActive *bool    `json:"isActive"`
	Roles    []string `json:"roles"`
}

// RegisterInput represents customer self-registration input
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ChangePasswordInput represents self-service password change input
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ListUsersOutput is the paginated admin user listing
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"totalPages"`
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*ListUsersOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	users, total, err := s.userRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListUsersOutput{
		Users:      responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser returns one user
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// Register creates a customer account with the CUSTOMER role only
func (s *UserService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	return s.createUser(ctx, &CreateUserInput{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		Password: input.Password,
		Roles:    []string{string(domain.RoleCustomer)},
	})
}

// CreateUser creates a user with admin-chosen roles
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	return s.createUser(ctx, input)
}

func (s *UserService) createUser(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	roles, err := s.resolveRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		Password: hashed,
		IsActive: true,
		Roles:    roles,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User created: %s (roles: %v)", user.Username, user.RoleNames())
	return user.ToResponse(), nil
}

// UpdateUser applies an admin update. Changing your own role set is blocked
// so an admin cannot lock themselves out.
func (s *UserService) UpdateUser(ctx context.Context, id uint, actorID uint, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailTaken
		}
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.Roles != nil {
		if id == actorID {
			return nil, ErrCannotDemoteSelf
		}
		roles, err := s.resolveRoles(ctx, input.Roles)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.SetRoles(ctx, user, roles); err != nil {
			return nil, err
		}
	}

	return s.GetUser(ctx, id)
}

// DeleteUser soft-deletes a user. Self-deletion is blocked.
func (s *UserService) DeleteUser(ctx context.Context, id uint, actorID uint) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// ListRoles returns the closed role catalog
func (s *UserService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return s.roleRepo.List(ctx)
}

// ChangePassword verifies the old password and stores the new one
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

// resolveRoles maps role names to role rows, rejecting names outside the
// closed set before touching the database.
func (s *UserService) resolveRoles(ctx context.Context, names []string) ([]models.Role, error) {
	roles := make([]models.Role, 0, len(names))
	for _, name := range names {
		if !domain.Role(name).IsValid() {
			return nil, ErrUnknownRole
		}
		role, err := s.roleRepo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownRole
			}
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
