package service

import (
	"strings"

	"github.com/edumoto/classwork-api/internal/models"
)

// Actor is the verified caller identity handed down by the identity
// middleware. Every operation dispatches on the role exactly once at entry.
type Actor struct {
	ID   uint
	Role string
}

// IsTeacher reports whether the actor carries the teacher role.
func (a Actor) IsTeacher() bool {
	return strings.EqualFold(a.Role, models.RoleTeacher)
}

// IsStudent reports whether the actor carries the student role.
func (a Actor) IsStudent() bool {
	return strings.EqualFold(a.Role, models.RoleStudent)
}
