package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex"`
	Name      string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity strips the credential fields for use in sessions and responses.
func (u *User) Identity() Identity {
	return Identity{Email: u.Email, Name: u.Name}
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
