package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Credential is the account row owned by exactly one employee. Token issuance
// and login flows live outside this system; the row itself is part of the
// migrated record graph.
type Credential struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID   uint      `gorm:"not null;uniqueIndex" json:"employee_id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Credential) TableName() string {
	return "credentials"
}

// SetPassword hashes the given password and sets it on the credential.
func (c *Credential) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the stored hash.
func (c *Credential) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	return err == nil
}

type ArchivedCredential Credential

func (ArchivedCredential) TableName() string {
	return "archived_credentials"
}
