package retailer

import (
	"strconv"

	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

// LeadtimeStock is one warehouse-level quantity of a batch entry.
type LeadtimeStock struct {
	MerchantWarehouseID string `json:"merchant_warehouse_id"`
	Quantity            int    `json:"quantity"`
}

// StockRequest is one SKU's stock-on-hand report.
type StockRequest struct {
	SKU           string          `json:"sku"`
	LeadtimeStock []LeadtimeStock `json:"leadtime_stock"`
}

// BatchRequest is the body of the retailer's batch stock update call.
type BatchRequest struct {
	Requests []StockRequest `json:"requests"`
}

// BuildPayload turns the reviewed matched items into a batch update, one
// entry per item. Overrides are the operator-edited stock-on-hand values
// keyed by inventory item id, still raw from the form: a numeric value
// replaces the calculated one (floored at zero), anything else is ignored.
//
// Pure function; transmission is the Client's job.
func BuildPayload(matched []models.MatchedItem, overrides map[int]string, warehouseID string) BatchRequest {
	requests := make([]StockRequest, 0, len(matched))

	for _, item := range matched {
		soh := item.CalculatedSOH
		if raw, ok := overrides[item.ItemID]; ok {
			if n, err := strconv.Atoi(raw); err == nil {
				if n < 0 {
					n = 0
				}
				soh = n
			}
		}

		requests = append(requests, StockRequest{
			SKU: item.SKU,
			LeadtimeStock: []LeadtimeStock{
				{MerchantWarehouseID: warehouseID, Quantity: soh},
			},
		})
	}

	return BatchRequest{Requests: requests}
}
