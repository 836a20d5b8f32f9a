package services

import (
	"context"
	"strings"

	"linkup/internal/repository"
	"linkup/model"
	"linkup/pkg/apperr"
	"linkup/pkg/logging"
)

// UserService is the user directory: keyword search and the follow graph.
type UserService struct {
	users  *repository.UserRepository
	logger logging.Logger
}

func NewUserService(users *repository.UserRepository, logger logging.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Search matches the lower-cased term against each user's precomputed keyword
// set by prefix. An empty term returns no results.
func (s *UserService) Search(ctx context.Context, term string) ([]model.User, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []model.User{}, nil
	}
	return s.users.Search(ctx, term)
}

// Follow adds target to user's following set and user to target's followers
// set. Following yourself is a no-op.
func (s *UserService) Follow(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return nil
	}
	return s.users.Follow(ctx, userID, targetID)
}

func (s *UserService) Unfollow(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return nil
	}
	return s.users.Unfollow(ctx, userID, targetID)
}

// Profile returns the public view of a user. The credential hash never leaves
// the repository layer.
func (s *UserService) Profile(ctx context.Context, id string) (model.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Followers resolves a user's follower ids to profiles, skipping any that no
// longer exist.
func (s *UserService) Followers(ctx context.Context, id string) ([]model.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, u.Followers), nil
}

func (s *UserService) Following(ctx context.Context, id string) ([]model.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, u.Following), nil
}

func (s *UserService) resolve(ctx context.Context, ids []string) []model.User {
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.Get(ctx, id)
		if err != nil {
			if !apperr.Is(err, apperr.CodeNotFound) {
				s.logger.WithError(err).Warn("profile lookup failed")
			}
			continue
		}
		u.PasswordHash = ""
		out = append(out, u)
	}
	return out
}
