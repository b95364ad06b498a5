package domain

import "time"

// User is a registered student account.
type User struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	PasswordHash string               `json:"-"`
	Institution  string               `json:"institution"`
	Avatar       string               `json:"avatar"`
	Bio          string               `json:"bio"`
	Skills       []string             `json:"skills"`
	Followers    []string             `json:"followers"`
	Following    []string             `json:"following"`
	FollowedAt   map[string]time.Time `json:"-"`
	IsAdmin      bool                 `json:"isAdmin"`
	Banned       bool                 `json:"banned"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(id string) bool {
	return contains(u.Following, id)
}

// HasFollower reports whether the user with the given id follows u.
func (u *User) HasFollower(id string) bool {
	return contains(u.Followers, id)
}

// PublicUser is the canonical projection of a user exposed to other users.
type PublicUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Institution string `json:"institution"`
	Avatar      string `json:"avatar"`
}

// Public returns the public projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Institution: u.Institution,
		Avatar:      u.Avatar,
	}
}

// ProfileUpdate holds the optional fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string
	Institution *string
	Bio         *string
	Avatar      *string
	Skills      []string
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
