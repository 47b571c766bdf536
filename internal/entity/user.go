package entity

import (
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
)

const DefaultMark = "X"

type User struct {
	ID   string `json:"id"`
	Mark string `json:"mark"`
}

// ValidateMark accepts exactly one visible character.
func ValidateMark(mark string) error {
	if utf8.RuneCountInString(mark) != 1 || strings.TrimSpace(mark) == "" {
		return apperror.ErrInvalidMark
	}

	return nil
}
