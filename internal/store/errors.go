package store

import (
	"errors"
	"strings"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrTaskUnavailable = errors.New("task is not available")
	ErrNotVolunteer    = errors.New("task is not claimed by this user")
	ErrTaskNotActive   = errors.New("task is not in progress")
	ErrAlreadyInFamily = errors.New("user already belongs to a family")
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
