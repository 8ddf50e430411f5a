package models

import "time"

// Transaction types. One row per economic event; rows are append-only.
const (
	TxDeposit       = "deposit"
	TxWithdrawal    = "withdrawal"
	TxProfitPayout  = "profit_payout"
	TxReferralBonus = "referral_bonus"
)

// Transaction statuses. Only withdrawals ever leave "pending"; the transition to
// approved or rejected is terminal.
const (
	TxPending  = "pending"
	TxApproved = "approved"
	TxRejected = "rejected"
)

type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"type:enum('deposit','withdrawal','profit_payout','referral_bonus');not null;index" json:"type"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status      string    `gorm:"type:enum('pending','approved','rejected');not null;default:'pending';index" json:"status"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	ReferenceID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`

	// Withdrawal bank details
	BankName      *string `gorm:"size:100" json:"bank_name,omitempty"`
	AccountNumber *string `gorm:"size:50" json:"account_number,omitempty"`
	AccountTitle  *string `gorm:"size:100" json:"account_title,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
