package models

import "time"

// User represents a platform account, either a student or an educator.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleStudent identifies accounts that submit assignments.
	RoleStudent = "student"
	// RoleEducator identifies accounts that author and grade assignments.
	RoleEducator = "educator"
)

// IsEducator reports whether the user holds the educator role.
func (u User) IsEducator() bool {
	return u.Role == RoleEducator
}
