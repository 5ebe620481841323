package auth

import (
	"slices"
	"time"
)

const RoleAdmin = "admin"

// User is a stored credential record. An empty Token means the user holds
// no session.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Roles        []string
	Active       bool
	Confirmed    bool
	Token        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Profile is the public projection of a User.
func (u *User) Profile() Profile {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return Profile{
		Email:     u.Email,
		Roles:     slices.Clone(roles),
		Active:    u.Active,
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
	}
}

// Clone returns a deep copy, so stores can hand out values callers may mutate.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

type Profile struct {
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResult struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}
