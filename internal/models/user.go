package models

import "time"

// Caller roles recognised by the API. Tokens are issued by the identity
// service; this API only dispatches on the verified role claim.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents an account that can author assignments (teacher) or
// submit answers (student).
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
