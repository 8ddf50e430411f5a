package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Email         string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Phone         string    `gorm:"size:20;not null" json:"phone"`
	Password      string    `gorm:"size:255;not null" json:"-"`
	Role          string    `gorm:"type:enum('user','admin');default:'user'" json:"role"`
	WalletBalance float64   `gorm:"type:decimal(15,2);default:0" json:"wallet_balance"`
	ReferralCode  string    `gorm:"size:20;uniqueIndex;not null" json:"referral_code"`
	ReferredBy    *uint     `gorm:"column:referred_by" json:"referred_by,omitempty"`
	StoreID       *uint     `gorm:"column:store_id;index" json:"store_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`

	// Relations
	Store *Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

func (User) TableName() string {
	return "users"
}
