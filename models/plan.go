package models

import "time"

type Plan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Price         float64   `gorm:"type:decimal(15,2);not null" json:"price"`
	ReturnRate    float64   `gorm:"type:decimal(5,2);not null" json:"return_rate"` // percent of price
	TotalStock    int       `gorm:"not null" json:"total_stock"`
	DailyMinSales int       `gorm:"not null;default:1" json:"daily_min_sales"`
	DailyMaxSales int       `gorm:"not null;default:2" json:"daily_max_sales"`
	Status        string    `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

// ExpectedProfit is the total profit a purchase of this plan yields over a full cycle.
func (p Plan) ExpectedProfit() float64 {
	return p.Price * (p.ReturnRate / 100.0)
}
