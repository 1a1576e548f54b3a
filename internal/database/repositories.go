package database

import (
	"context"

	"github.com/Pankajjr12/snapnest-api/internal/models"
)

// UserRepository lookups return (nil, nil) when no row matches; callers must
// branch on the nil user before using it.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type FollowRepository interface {
	// Create inserts the edge and reports whether a new row was written.
	Create(ctx context.Context, followerID, followingID int64) (bool, error)
	// Delete removes the edge and reports whether a row existed.
	Delete(ctx context.Context, followerID, followingID int64) (bool, error)
	Exists(ctx context.Context, followerID, followingID int64) (bool, error)
	CountFollowers(ctx context.Context, userID int64) (int64, error)
	CountFollowing(ctx context.Context, userID int64) (int64, error)
}
