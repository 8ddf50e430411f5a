package models

import "time"

// Purchase kinds. A plan purchase is a subscription cycle (at most one active per
// user); an order is a product purchase (unlimited concurrently). Both run through
// the same daily sales simulation.
const (
	PurchaseKindPlan  = "plan"
	PurchaseKindOrder = "order"
)

// Purchase simulation statuses.
const (
	PurchaseActive    = "active"
	PurchaseCompleted = "completed"
)

// Order fulfillment statuses. Fulfillment is a shipping concern handled by admins
// and is independent of the simulation status above.
const (
	FulfillmentProcessing = "processing"
	FulfillmentShipped    = "shipped"
	FulfillmentDelivered  = "delivered"
	FulfillmentCancelled  = "cancelled"
)

// Purchase is a user's plan subscription or product order. The plan/product fields
// are snapshotted at purchase time: catalog rows may change afterwards without
// altering obligations already sold.
type Purchase struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	Kind              string    `gorm:"type:enum('plan','order');not null;index" json:"kind"`
	ItemName          string    `gorm:"size:100;not null" json:"item_name"`
	UnitPrice         float64   `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	ReturnRate        float64   `gorm:"type:decimal(5,2);not null" json:"return_rate"`
	DailyMinSales     int       `gorm:"not null;default:1" json:"daily_min_sales"`
	DailyMaxSales     int       `gorm:"not null;default:2" json:"daily_max_sales"`
	InvestedAmount    float64   `gorm:"type:decimal(15,2);not null" json:"invested_amount"`
	ExpectedProfit    float64   `gorm:"type:decimal(15,2);not null" json:"expected_profit"`
	TotalStock        int       `gorm:"not null" json:"total_stock"`
	ItemsSold         int       `gorm:"not null;default:0" json:"items_sold"`
	AccumulatedReturn float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"accumulated_return"`
	Status            string    `gorm:"type:enum('active','completed');default:'active';index" json:"status"`
	Fulfillment       *string   `gorm:"type:enum('processing','shipped','delivered','cancelled')" json:"fulfillment,omitempty"`
	ReferenceID       string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference_id"`
	StartedAt         time.Time `gorm:"not null" json:"started_at"`
	LastProcessedAt   time.Time `gorm:"not null;index" json:"last_processed_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Purchase) TableName() string {
	return "purchases"
}

// Remaining reports unsold stock.
func (p Purchase) Remaining() int {
	return p.TotalStock - p.ItemsSold
}

// SoldOut reports whether every unit has been sold, regardless of status. A sold-out
// purchase still marked active means a prior completion transition was interrupted
// before payout; the engine treats it as payout-pending.
func (p Purchase) SoldOut() bool {
	return p.ItemsSold >= p.TotalStock
}
