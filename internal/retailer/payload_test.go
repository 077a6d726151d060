package retailer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kelviy/leadtime-order-sync/internal/config"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

func matched(itemID int, sku string, soh int) models.MatchedItem {
	return models.MatchedItem{ItemID: itemID, SKU: sku, CalculatedSOH: soh}
}

func TestBuildPayload(t *testing.T) {
	payload := BuildPayload([]models.MatchedItem{
		matched(7, "ABC123", 25),
		matched(8, "DEF456", 0),
	}, nil, "W-1")

	assert.Len(t, payload.Requests, 2)
	assert.Equal(t, "ABC123", payload.Requests[0].SKU)
	assert.Equal(t, []LeadtimeStock{{MerchantWarehouseID: "W-1", Quantity: 25}}, payload.Requests[0].LeadtimeStock)
	assert.Equal(t, 0, payload.Requests[1].LeadtimeStock[0].Quantity)
}

func TestBuildPayloadOverrides(t *testing.T) {
	items := []models.MatchedItem{
		matched(7, "ABC123", 25),
		matched(8, "DEF456", 10),
		matched(9, "GHI789", 4),
	}
	overrides := map[int]string{
		7: "30",   // replaces
		8: "junk", // ignored, calculated value stands
		9: "-2",   // floored at zero
	}

	payload := BuildPayload(items, overrides, "W-1")

	assert.Equal(t, 30, payload.Requests[0].LeadtimeStock[0].Quantity)
	assert.Equal(t, 10, payload.Requests[1].LeadtimeStock[0].Quantity)
	assert.Equal(t, 0, payload.Requests[2].LeadtimeStock[0].Quantity)
}

func TestBuildPayloadRoundTrip(t *testing.T) {
	// Reading sku/quantity back from the payload reproduces the
	// overridden-or-calculated SOH exactly.
	items := []models.MatchedItem{matched(7, "ABC123", 25), matched(8, "DEF456", 10)}
	overrides := map[int]string{8: "3"}
	expected := map[string]int{"ABC123": 25, "DEF456": 3}

	payload := BuildPayload(items, overrides, "W-1")

	got := map[string]int{}
	for _, r := range payload.Requests {
		got[r.SKU] = r.LeadtimeStock[0].Quantity
	}
	assert.Equal(t, expected, got)
}

func TestBuildPayloadWireShape(t *testing.T) {
	payload := BuildPayload([]models.MatchedItem{matched(7, "ABC123", 25)}, nil, "W-1")

	raw, err := json.Marshal(payload)

	assert.NoError(t, err)
	assert.JSONEq(t,
		`{"requests":[{"sku":"ABC123","leadtime_stock":[{"merchant_warehouse_id":"W-1","quantity":25}]}]}`,
		string(raw))
}

func TestSendBatchNotConfigured(t *testing.T) {
	client := NewClient(config.Config{})

	_, err := client.SendBatch(BatchRequest{})

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendBatch(t *testing.T) {
	var gotAuth string
	var gotBody BatchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/stock/create_batch", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(BatchResponse{BatchID: "b-42"})
	}))
	defer server.Close()

	client := NewClient(config.Config{
		RetailerAPIKey:  "secret",
		RetailerBaseURL: server.URL + "/",
	})

	payload := BuildPayload([]models.MatchedItem{matched(7, "ABC123", 25)}, nil, "W-1")
	response, err := client.SendBatch(payload)

	assert.NoError(t, err)
	assert.Equal(t, "b-42", response.BatchID)
	assert.Equal(t, "Key secret", gotAuth)
	assert.Len(t, gotBody.Requests, 1)
}

func TestSendBatchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(config.Config{RetailerAPIKey: "secret", RetailerBaseURL: server.URL})

	_, err := client.SendBatch(BatchRequest{})

	assert.ErrorContains(t, err, "502")
}
