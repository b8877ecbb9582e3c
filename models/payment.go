package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentTransaction is written exactly once per verified provider
// confirmation and never updated afterwards. RawResponse keeps the verified
// payload for audit and dispute resolution.
type PaymentTransaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"index;not null" json:"order_id"`
	Provider      string          `gorm:"not null" json:"provider"` // "stripe" or "paypal"
	TransactionID string          `gorm:"not null" json:"transaction_id"`
	Status        string          `gorm:"not null" json:"status"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	RawResponse   datatypes.JSON  `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}
