package models

import "time"

// UploadsPrefix is the public path under which profile images are served.
const UploadsPrefix = "/uploads/"

type User struct {
	ID              int64     `json:"id,string"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"displayName"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	ProfileImageRef *string   `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PublicUser is the externally visible part of a User. It has no password
// hash field at all, so no serializer can leak one.
type PublicUser struct {
	ID          int64     `json:"id,string"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Img         *string   `json:"img"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Public returns the user's public fields with the image ref resolved to a
// path under UploadsPrefix.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Img:         ImageURL(u.ProfileImageRef),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ImageURL maps a stored blob key to its public path, or nil when unset.
func ImageURL(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	url := UploadsPrefix + *ref
	return &url
}

// ProfileView is a user profile as seen by a particular (possibly anonymous) viewer.
type ProfileView struct {
	PublicUser
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
	IsFollowing    bool  `json:"isFollowing"`
}
