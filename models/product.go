package models

import "time"

type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Price         float64   `gorm:"type:decimal(15,2);not null" json:"price"`
	ReturnRate    float64   `gorm:"type:decimal(5,2);not null" json:"return_rate"` // percent per unit
	Quantity      int       `gorm:"not null;default:0" json:"quantity"`
	DailyMinSales int       `gorm:"not null;default:1" json:"daily_min_sales"`
	DailyMaxSales int       `gorm:"not null;default:2" json:"daily_max_sales"`
	Description   string    `gorm:"type:text" json:"description"`
	Image         *string   `gorm:"size:255" json:"image,omitempty"` // object storage key
	Status        string    `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
