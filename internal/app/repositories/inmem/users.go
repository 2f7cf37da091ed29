package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/pkg/apperrors"
)

// UserRepository is the in-memory users table
type UserRepository struct {
	s *Store
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.StudentID = strPtr(u.StudentID)
	c.PushToken = strPtr(u.PushToken)
	return &c
}

func (r *UserRepository) checkUnique(user *models.User) error {
	for _, existing := range r.s.users {
		if existing.ID == user.ID {
			continue
		}
		switch {
		case existing.ExternalAuthID == user.ExternalAuthID:
			return apperrors.NewConflictError("user already registered")
		case sameFold(existing.Email, user.Email):
			return apperrors.ErrEmailAlreadyExists
		case user.StudentID != nil && existing.StudentID != nil && *existing.StudentID == *user.StudentID:
			return apperrors.ErrStudentIDAlreadyExists
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.ID = uuid.New()
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ExternalAuthID == externalAuthID })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return sameFold(u.Email, email) })
}

// List returns users newest first
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *UserRepository) update(id uuid.UUID, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = r.s.tick()
	return nil
}

func (r *UserRepository) UpdatePushToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.update(id, func(u *models.User) { u.PushToken = strPtr(token) })
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.RoleType) error {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *UserRepository) tokens(include func(*models.User) bool) []string {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]*models.User, 0)
	for _, u := range r.s.users {
		if u.HasPushToken() && include(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	tokens := make([]string, 0, len(users))
	for _, u := range users {
		tokens = append(tokens, *u.PushToken)
	}
	return tokens
}

func (r *UserRepository) GetPushTokens(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.tokens(func(u *models.User) bool { return wanted[u.ID] }), nil
}

func (r *UserRepository) GetAllPushTokens(ctx context.Context) ([]string, error) {
	return r.tokens(func(*models.User) bool { return true }), nil
}
