package models

type Location struct {
	ID      int     `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Details *string `json:"details,omitempty" db:"details"`
}

// InventoryItem is a catalog entry identified by a unique internal part code.
type InventoryItem struct {
	ID   int    `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}

// Lot is a physical, located quantity of an inventory item.
type Lot struct {
	ID         int `json:"id" db:"id"`
	ItemID     int `json:"item_id" db:"item_id"`
	LocationID int `json:"location_id" db:"location_id"`
	Quantity   int `json:"quantity" db:"quantity"`
}

// Commitment is a quantity of a lot already promised to an order line.
type Commitment struct {
	ID       int `json:"id" db:"id"`
	LotID    int `json:"lot_id" db:"lot_id"`
	LineID   int `json:"line_id" db:"line_id"`
	Quantity int `json:"quantity" db:"quantity"`
}

type Customer struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func (l *Lot) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   l.ID,
		ResourceType: "lot",
	}
}
