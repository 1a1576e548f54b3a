package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Pankajjr12/snapnest-api/internal/database"
	"github.com/Pankajjr12/snapnest-api/internal/models"
	"github.com/Pankajjr12/snapnest-api/internal/redis"
)

const followLockTTL = 5 * time.Second

// SessionVerifier resolves a session token to a user id.
type SessionVerifier interface {
	VerifySession(token string) (userID int64, ok bool)
}

// Locker provides non-blocking mutual exclusion on a key.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, err error)
}

// SocialService owns follow edges and viewer-relative profiles.
type SocialService struct {
	users    database.UserRepository
	follows  database.FollowRepository
	sessions SessionVerifier
	locks    Locker
	log      *slog.Logger
}

// NewSocialService creates a SocialService.
func NewSocialService(
	users database.UserRepository,
	follows database.FollowRepository,
	sessions SessionVerifier,
	locks Locker,
	log *slog.Logger,
) *SocialService {
	return &SocialService{
		users:    users,
		follows:  follows,
		sessions: sessions,
		locks:    locks,
		log:      log,
	}
}

// GetProfile returns username's profile as seen by the holder of
// viewerToken. An empty or invalid token is an anonymous viewer.
func (s *SocialService) GetProfile(ctx context.Context, username, viewerToken string) (*models.ProfileView, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.internal(ctx, "looking up profile", err)
	}
	if user == nil {
		return nil, errUserNotFound
	}

	followers, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, s.internal(ctx, "counting followers", err)
	}
	following, err := s.follows.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, s.internal(ctx, "counting following", err)
	}

	view := &models.ProfileView{
		PublicUser:     user.Public(),
		FollowerCount:  followers,
		FollowingCount: following,
	}

	viewerID, ok := s.sessions.VerifySession(viewerToken)
	if !ok || viewerID == user.ID {
		return view, nil
	}
	view.IsFollowing, err = s.follows.Exists(ctx, viewerID, user.ID)
	if err != nil {
		return nil, s.internal(ctx, "checking follow edge", err)
	}
	return view, nil
}

// ToggleFollow follows username if viewerID does not follow them yet and
// unfollows otherwise. It reports whether the viewer follows the target
// afterwards.
//
// Toggles for the same pair are serialized through a lock; a toggle that
// finds the lock held fails instead of waiting. The edge table's composite
// key keeps at most one edge per pair regardless.
func (s *SocialService) ToggleFollow(ctx context.Context, viewerID int64, username string) (bool, error) {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, s.internal(ctx, "looking up follow target", err)
	}
	if target == nil {
		return false, errUserNotFound
	}
	if target.ID == viewerID {
		return false, errSelfFollow
	}

	unlock, err := s.locks.Lock(ctx, fmt.Sprintf("follow:%d:%d", viewerID, target.ID), followLockTTL)
	if errors.Is(err, redis.ErrLockHeld) {
		return false, errFollowInProgress
	}
	if err != nil {
		return false, s.internal(ctx, "locking follow pair", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.WarnContext(ctx, "releasing follow lock", "error", err)
		}
	}()

	exists, err := s.follows.Exists(ctx, viewerID, target.ID)
	if err != nil {
		return false, s.internal(ctx, "checking follow edge", err)
	}

	if exists {
		if _, err := s.follows.Delete(ctx, viewerID, target.ID); err != nil {
			return false, s.internal(ctx, "deleting follow edge", err)
		}
		s.log.DebugContext(ctx, "unfollowed", "follower", viewerID, "following", target.ID)
		return false, nil
	}

	if _, err := s.follows.Create(ctx, viewerID, target.ID); err != nil {
		if errors.Is(err, database.ErrSelfFollow) {
			return false, errSelfFollow
		}
		return false, s.internal(ctx, "creating follow edge", err)
	}
	s.log.DebugContext(ctx, "followed", "follower", viewerID, "following", target.ID)
	return true, nil
}

func (s *SocialService) internal(ctx context.Context, op string, err error) *ServiceError {
	s.log.ErrorContext(ctx, "social: "+op, "error", err)
	return Internal()
}
