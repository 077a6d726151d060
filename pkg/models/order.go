package models

import "time"

type Order struct {
	ID         int       `json:"id" db:"id"`
	Reference  string    `json:"reference" db:"reference"`
	CustomerID int       `json:"customer_id" db:"customer_id"`
	TargetDate time.Time `json:"target_date" db:"target_date"`
	CreatedAt  time.Time `json:"created_at,omitempty" db:"created_at"`
}

type OrderLine struct {
	ID       int    `json:"id" db:"id"`
	OrderID  int    `json:"order_id" db:"order_id"`
	ItemID   int    `json:"item_id" db:"item_id"`
	Quantity int    `json:"quantity" db:"quantity"`
	Currency string `json:"currency" db:"currency"`
	Notes    string `json:"notes" db:"notes"`
}

type Shipment struct {
	ID           int       `json:"id" db:"id"`
	OrderID      int       `json:"order_id" db:"order_id"`
	DeliveryDate time.Time `json:"delivery_date" db:"delivery_date"`
}

func (o *Order) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   o.ID,
		ResourceType: "order",
	}
}
