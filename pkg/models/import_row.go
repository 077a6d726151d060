package models

// ImportRow is one parsed line of the retailer picking-list CSV. Rows are
// transient: they exist between upload and matching and are discarded after.
type ImportRow struct {
	DC           string `json:"dc"`
	SKU          string `json:"sku"`
	TSIN         string `json:"tsin"`
	ProductTitle string `json:"product_title"`
	QtyRequired  int    `json:"qty_required"`
	QtySending   int    `json:"qty_sending"`
}

// MatchedItem is an ImportRow resolved to a catalog item, with the
// availability snapshot taken at processing time.
// Invariant: CalculatedSOH = max(Available - QtySending, 0).
type MatchedItem struct {
	ItemID        int    `json:"item_id"`
	SKU           string `json:"sku"`
	TSIN          string `json:"tsin"`
	Name          string `json:"name"`
	DC            string `json:"dc"`
	QtyRequired   int    `json:"qty_required"`
	QtySending    int    `json:"qty_sending"`
	Available     int    `json:"available"`
	CalculatedSOH int    `json:"calculated_soh"`
}

// UnmatchedItem is an ImportRow with no resolvable catalog item. Carried
// through for operator visibility only; it takes no part in orders or sync.
type UnmatchedItem struct {
	SKU          string `json:"sku"`
	TSIN         string `json:"tsin"`
	ProductTitle string `json:"product_title"`
	DC           string `json:"dc"`
	QtyRequired  int    `json:"qty_required"`
	QtySending   int    `json:"qty_sending"`
}
