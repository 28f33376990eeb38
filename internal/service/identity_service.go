package service

import (
	"context"
	"sync"

	"github.com/weiawesome/wes-io-blog/internal/repository"
)

// identityService implements IdentityService. Pairs already written in this
// process are remembered so steady-state requests skip the database.
type identityService struct {
	users repository.UserRepository
	seen  sync.Map // user id -> username
}

// NewIdentityService creates a new IdentityService instance.
func NewIdentityService(users repository.UserRepository) IdentityService {
	return &identityService{users: users}
}

func (s *identityService) ObserveViewer(ctx context.Context, userID, username string) error {
	if userID == "" || username == "" {
		return nil
	}
	if known, ok := s.seen.Load(userID); ok && known.(string) == username {
		return nil
	}
	if err := s.users.Ensure(ctx, userID, username); err != nil {
		return err
	}
	s.seen.Store(userID, username)
	return nil
}

var _ IdentityService = (*identityService)(nil)
