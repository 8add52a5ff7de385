package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Seller represents a merchant account that owns products, rules, and
// pricing history.
type Seller struct {
	BaseModel
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName string `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and sets the seller's password
func (s *Seller) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (s *Seller) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(s.Password), []byte(password))
	return err == nil
}
