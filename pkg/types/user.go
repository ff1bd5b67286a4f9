package types

import "time"

type UserType string

const (
	UserTypeNormal UserType = "normal"
	UserTypeAdmin  UserType = "admin"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FullName  *string   `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone"`
	Bio       *string   `db:"bio" json:"bio"`
	UserType  UserType  `db:"user_type" json:"user_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.UserType == UserTypeAdmin
}

// Actor is the authenticated identity attached to every engine call. It is
// supplied by the session verification middleware, never read from ambient
// state inside the engine.
type Actor struct {
	UserID string
	Admin  bool
}
