package user

import "time"

type User struct {
	ID        uint
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Address   string
	City      string
	BirthDate time.Time
	IsStaff   bool
	IsActive  bool
	CreatedAt time.Time
}

type RegisterParams struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
	Phone           string
	Address         string
	City            string
	BirthDate       time.Time
}

// UpdateProfileParams carries a partial update; nil fields are left as they are.
type UpdateProfileParams struct {
	UserID          uint
	FirstName       *string
	LastName        *string
	Phone           *string
	Address         *string
	City            *string
	CurrentPassword string
	NewPassword     string
}

// Conflicts reports which unique attributes are already taken by another user.
type Conflicts struct {
	Email    bool
	Phone    bool
	Address  bool
	FullName bool
}

func (c Conflicts) Any() bool {
	return c.Email || c.Phone || c.Address || c.FullName
}
