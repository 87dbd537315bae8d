package domain

import "time"

// Profile is a registered student. StudentID is the identity used on orders.
type Profile struct {
	StudentID    string    `json:"student_id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	PhoneNumber  string    `json:"phone_number"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
