package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateIdentity = errors.New("identity already exists")
)

type GormRepo struct {
	DB *gorm.DB
}

// NormalizeIdentity is the uniqueness key for accounts: trimmed and lowercased.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
