package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword      string         `gorm:"not null" json:"-"`
	FullName            string         `json:"full_name"`
	Phone               string         `json:"phone"`
	Preferences         datatypes.JSON `json:"preferences"`
	Role                Role           `gorm:"type:VARCHAR(10);default:'user'" json:"role"`
	EmailVerified       bool           `gorm:"default:false" json:"email_verified"`
	VerificationToken   string         `gorm:"index" json:"-"`
	PasswordResetToken  string         `gorm:"index" json:"-"`
	PasswordResetExpiry *time.Time     `json:"-"`
	OTPSecret           string         `json:"-"` // set when TOTP 2FA is enabled
	Addresses           []Address      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Orders              []Order        `gorm:"foreignKey:UserID" json:"orders,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"-"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// Address belongs to a user; orders reference it as the shipping target.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Street     string    `gorm:"not null" json:"street"`
	City       string    `gorm:"not null" json:"city"`
	State      string    `gorm:"not null" json:"state"`
	PostalCode string    `gorm:"not null" json:"postal_code"`
	Country    string    `gorm:"not null" json:"country"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}

// SoftDeleteUser marks the user deleted and records the actor in one
// transaction. Users are never hard-deleted.
func SoftDeleteUser(db *gorm.DB, actorID uint, user *User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(user).Error; err != nil {
			return err
		}
		return RecordAudit(tx, actorID, "delete", "user", user.ID, nil)
	})
}
