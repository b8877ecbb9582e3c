package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // placed, awaiting payment
	OrderStatusPaid      OrderStatus = "paid"      // provider confirmed payment
	OrderStatusShipped   OrderStatus = "shipped"   // out for delivery
	OrderStatusDelivered OrderStatus = "delivered" // customer received the items
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllowedOrderStatuses is the complete set accepted by the status update
// endpoint. There is deliberately no transition graph on top of it.
var AllowedOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ValidOrderStatus(s OrderStatus) bool {
	for _, allowed := range AllowedOrderStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// SettledOrderStatuses are the statuses that count as revenue.
var SettledOrderStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
}

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderRef    string          `gorm:"uniqueIndex" json:"order_ref"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"` // fixed at placement, never recomputed
	Status      OrderStatus     `gorm:"type:VARCHAR(20);default:'pending';index" json:"status"`
	AddressID   *uint           `json:"address_id,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// OrderItem is a snapshot of the catalog line at placement time. Catalog
// price changes after placement must not alter the order.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index" json:"order_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// SoftDeleteOrder hides an order from all listings and records the admin
// who removed it.
func SoftDeleteOrder(db *gorm.DB, actorID uint, order *Order) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(order).Error; err != nil {
			return err
		}
		return RecordAudit(tx, actorID, "delete", "order", order.ID, nil)
	})
}
