package domain

import "time"

type User struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
}

func NewUser(username string, email Email, hashedPassword string, createdAt time.Time) User {
	return User{
		Username:       username,
		Email:          email.String(),
		HashedPassword: hashedPassword,
		IsActive:       true,
		CreatedAt:      createdAt,
	}
}

func (u *User) Deactivate() {
	u.IsActive = false
}

func (u *User) Activate() {
	u.IsActive = true
}
