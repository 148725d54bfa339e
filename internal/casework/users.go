package casework

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casedesk/internal/model"
	"casedesk/internal/notify"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for unknown users, wrong passwords and inactive accounts
var ErrInvalidCredentials = errors.New("invalid email or password")

// MinPasswordLength applies to passwords set through CreateUser and UpdateUser
const MinPasswordLength = 8

// UserInput is the body of the user create and edit forms
type UserInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Status          string `json:"status"`
	TenantID        string `json:"tenantId"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (in UserInput) user() model.User {
	return model.User{
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.ToLower(strings.TrimSpace(in.Email)),
		Role:   in.Role,
		Status: in.Status,
	}
}

func invalid(n notify.Notifier, message string) error {
	notify.SendError(n, "Please check the form", message)
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// checkPassword validates a new password. An empty password is only allowed when optional.
func (s *Service) checkPassword(in UserInput, optional bool, n notify.Notifier) error {
	if in.Password == "" && in.ConfirmPassword == "" && optional {
		return nil
	}
	if in.Password != in.ConfirmPassword {
		return invalid(n, "Passwords do not match.")
	}
	if len(in.Password) < MinPasswordLength {
		return invalid(n, fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	return nil
}

// emailTaken reports whether another user already uses email, across every tenant
func (s *Service) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	users, err := s.Users.All(ctx, Scope{All: true})
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// userScope places users created by a super admin into the tenant named in
// the form; everybody else creates users in their own tenant.
func userScope(scope Scope, in UserInput) Scope {
	if scope.All && scope.TenantID == "" {
		return Scope{TenantID: in.TenantID, All: true}
	}
	return scope
}

// CreateUser validates the form, checks the email is unused and stores the user
// with a bcrypt hash of the password. Only super admins can create super admins.
func (s *Service) CreateUser(ctx context.Context, scope Scope, in UserInput, n notify.Notifier) (model.User, error) {
	if in.Role == model.RoleSuperAdmin && !scope.SuperAdmin() {
		return model.User{}, invalid(n, "Only super admins can create super admin accounts.")
	}
	if err := s.checkPassword(in, false, n); err != nil {
		return model.User{}, err
	}
	u := in.user()
	if u.Email != "" {
		taken, err := s.emailTaken(ctx, u.Email, "")
		if err != nil {
			return model.User{}, err
		}
		if taken {
			notify.SendError(n, "Email already in use", fmt.Sprintf("A user with email %s already exists.", u.Email))
			return model.User{}, fmt.Errorf("%w: email %s", ErrDuplicate, u.Email)
		}
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = hash

	saved, err := s.Users.Create(ctx, userScope(scope, in), u, n)
	if err != nil {
		return model.User{}, err
	}
	return saved.Public(), nil
}

// UpdateUser edits a user. The password is changed only when one is given.
func (s *Service) UpdateUser(ctx context.Context, scope Scope, id string, in UserInput, n notify.Notifier) (model.User, error) {
	if in.Role == model.RoleSuperAdmin && !scope.SuperAdmin() {
		return model.User{}, invalid(n, "Only super admins can grant the super admin role.")
	}
	if err := s.checkPassword(in, true, n); err != nil {
		return model.User{}, err
	}
	f, err := s.Users.EditForm(ctx, scope, id, n)
	if err != nil {
		return model.User{}, err
	}
	if err := guardSuperAdmin(scope, f.State(), n); err != nil {
		f.Cancel()
		return model.User{}, err
	}
	u := in.user()
	if u.Email != "" {
		taken, err := s.emailTaken(ctx, u.Email, id)
		if err != nil {
			return model.User{}, err
		}
		if taken {
			notify.SendError(n, "Email already in use", fmt.Sprintf("A user with email %s already exists.", u.Email))
			return model.User{}, fmt.Errorf("%w: email %s", ErrDuplicate, u.Email)
		}
	}
	hash := ""
	if in.Password != "" {
		if hash, err = s.hash(in.Password); err != nil {
			return model.User{}, err
		}
	}
	_ = f.Update(func(current model.User) model.User {
		next := u.WithMeta(current.Meta())
		next.PasswordHash = current.PasswordHash
		if hash != "" {
			next.PasswordHash = hash
		}
		if next.Status == "" {
			next.Status = current.Status
		}
		return next
	})
	saved, err := f.Submit(ctx)
	if err != nil {
		return model.User{}, err
	}
	return saved.Public(), nil
}

// CanManage reports whether a caller in scope may change or delete u.
// Super admin accounts are managed by super admins only.
func CanManage(scope Scope, u model.User) bool {
	return u.Role != model.RoleSuperAdmin || scope.SuperAdmin()
}

func guardSuperAdmin(scope Scope, u model.User, n notify.Notifier) error {
	if CanManage(scope, u) {
		return nil
	}
	const msg = "Only super admins can change super admin accounts."
	notify.SendError(n, "Not allowed", msg)
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

// DeleteUser removes a user the caller may manage
func (s *Service) DeleteUser(ctx context.Context, scope Scope, id string, n notify.Notifier) (model.User, error) {
	u, err := s.Users.Get(ctx, scope, id)
	if err == nil {
		err = guardSuperAdmin(scope, u, n)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}
	removed, err := s.Users.Delete(ctx, scope, id, n)
	if err != nil {
		return model.User{}, err
	}
	return removed.Public(), nil
}

// PublicUsers strips password hashes
func PublicUsers(users []model.User) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

// Login checks the password of the user with the given email
func (s *Service) Login(ctx context.Context, email, password string) (model.User, error) {
	users, err := s.Users.All(ctx, Scope{All: true})
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if !strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			continue
		}
		if u.Status == model.UserInactive || u.PasswordHash == "" {
			return model.User{}, ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return model.User{}, ErrInvalidCredentials
		}
		return u.Public(), nil
	}
	return model.User{}, ErrInvalidCredentials
}

// Bootstrap creates a super admin when no user exists yet. It reports whether one was created.
func (s *Service) Bootstrap(ctx context.Context, email, password, name string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	created := false
	_, err = s.Users.Coll.Mutate(ctx, func(users []model.User) ([]model.User, error) {
		if len(users) > 0 {
			return users, nil
		}
		created = true
		return append(users, model.User{
			Record:       s.meta(""),
			Name:         name,
			Email:        strings.ToLower(email),
			Role:         model.RoleSuperAdmin,
			Status:       model.UserActive,
			PasswordHash: hash,
		}), nil
	})
	if err != nil {
		return false, fmt.Errorf("bootstrap super admin: %w", err)
	}
	if created {
		s.log.Info("Bootstrap super admin created", zap.String("email", email))
	}
	return created, nil
}
