package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	DateJoined   time.Time `json:"date_joined" db:"date_joined"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Profile создаётся ровно один раз вместе с пользователем при регистрации
type Profile struct {
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Bio             string     `json:"bio" db:"bio"`
	PhoneNumber     string     `json:"phone_number" db:"phone_number"`
	Location        string     `json:"location" db:"location"`
	Website         string     `json:"website" db:"website"`
	BirthDate       *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	IsProfilePublic bool       `json:"is_profile_public" db:"is_profile_public"`
	ShowEmail       bool       `json:"show_email" db:"show_email"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func NewProfile(userID uuid.UUID, now time.Time) *Profile {
	return &Profile{
		UserID:          userID,
		IsProfilePublic: true,
		ShowEmail:       false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
