package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultRole          = "user"
	DefaultProductStatus = "available"
)

type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"             json:"id"`
	Identity     string    `gorm:"uniqueIndex;not null;size:64"     json:"identity"`
	PasswordHash string    `gorm:"not null"                         json:"-"`
	Role         string    `gorm:"not null;default:user"            json:"role"`
	CreatedAt    time.Time `                                        json:"created_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Role == "" {
		a.Role = DefaultRole
	}
	return nil
}

// Product is owned by exactly one account. OwnerID is a weak reference: there
// is no foreign key, so removing an account leaves its products in place.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"      json:"owner"`
	Name      string    `gorm:"not null"                      json:"name"`
	Category  string    `                                     json:"category"`
	Cost      float64   `gorm:"not null;default:0"            json:"cost"`
	Price     float64   `gorm:"not null;default:0"            json:"price"`
	Stock     int64     `gorm:"not null;default:0"            json:"stock"`
	Status    string    `gorm:"not null;default:available"    json:"status"`
	CreatedAt time.Time `                                     json:"created_at"`
	UpdatedAt time.Time `                                     json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = DefaultProductStatus
	}
	return nil
}
