package models

import "time"

// Contract represents an employment contract. EndOfContract is null for an
// open-ended (full-time) engagement. When several full-time contracts exist
// for one employee, the most-recently-updated open one is authoritative for
// trigger-date computation.
type Contract struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID   uint   `gorm:"not null;index" json:"employee_id"`
	ContractType string `gorm:"not null" json:"contract_type"`
	StartDate    string `gorm:"not null" json:"start_date"`

	// EndOfContract is a calendar date string; nil means open-ended.
	EndOfContract *string `json:"end_of_contract,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

// IsOpen reports whether the contract has no end date yet.
func (c *Contract) IsOpen() bool {
	return c.EndOfContract == nil
}

type ArchivedContract Contract

func (ArchivedContract) TableName() string {
	return "archived_contracts"
}
