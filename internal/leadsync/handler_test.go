package leadsync

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/kelviy/leadtime-order-sync/internal/auditlog"
	"github.com/kelviy/leadtime-order-sync/internal/config"
	"github.com/kelviy/leadtime-order-sync/internal/orders"
	"github.com/kelviy/leadtime-order-sync/internal/reconcile"
	"github.com/kelviy/leadtime-order-sync/internal/repository"
	"github.com/kelviy/leadtime-order-sync/internal/retailer"
	"github.com/kelviy/leadtime-order-sync/internal/session"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FindItemByCode(code string) (*models.InventoryItem, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockCatalog) FindItemByName(name string) (*models.InventoryItem, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockCatalog) ListLotsForItem(itemID int, locationID *int) ([]models.Lot, error) {
	args := m.Called(itemID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lot), args.Error(1)
}

func (m *MockCatalog) ListLotsForItemTx(tx *goqu.TxDatabase, itemID int, locationID *int) ([]models.Lot, error) {
	args := m.Called(itemID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lot), args.Error(1)
}

func (m *MockCatalog) ListCommitmentsForLot(lotID int) ([]models.Commitment, error) {
	args := m.Called(lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Commitment), args.Error(1)
}

func (m *MockCatalog) ListCommitmentsForLotTx(tx *goqu.TxDatabase, lotID int) ([]models.Commitment, error) {
	args := m.Called(lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Commitment), args.Error(1)
}

func (m *MockCatalog) GetLocation(id int) (*models.Location, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockCatalog) FindCustomerByName(name string) (*models.Customer, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendBatch(payload retailer.BatchRequest) (*retailer.BatchResponse, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*retailer.BatchResponse), args.Error(1)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) Log(action string, data interface{}, item auditlog.Auditable, userID *int) {
	m.Called(action, data, item, userID)
}

type testEnv struct {
	router   *gin.Engine
	sessions *session.Store
	catalog  *MockCatalog
	sender   *MockSender
	audit    *MockAudit
}

func setupEnv(cfg config.Config) *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		sessions: session.NewStore(),
		catalog:  new(MockCatalog),
		sender:   new(MockSender),
		audit:    new(MockAudit),
	}

	log := zap.NewNop()
	reconcileService := reconcile.NewService(env.catalog, cfg, log)
	orderService := orders.NewService(&repository.Repository{}, nil, env.catalog, cfg, log)

	handler := NewHandler(reconcileService, orderService, env.sender, env.sessions, env.audit, cfg, log)

	env.router = gin.New()
	// Stand-in for the JWT middleware: every request acts as user 1.
	env.router.Use(func(c *gin.Context) {
		c.Set("userID", "1")
		c.Set("role", "user")
	})
	env.router.GET("/leadsync", handler.getInterface)
	env.router.POST("/leadsync/process", handler.processCSV)
	env.router.POST("/leadsync/orders", handler.createOrder)
	env.router.POST("/leadsync/sync", handler.syncStock)

	return env
}

func csvUpload(t *testing.T, csv string, targetDate string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("csvfile", "picking_list.csv")
	assert.NoError(t, err)
	_, err = part.Write([]byte(csv))
	assert.NoError(t, err)
	assert.NoError(t, writer.WriteField("target_date", targetDate))
	assert.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const pickingListCSV = `DC,Product Label Number,SKU,TSIN,Product Title,Qty Sending,Qty Required
JHB,P1,ABC123,90001,Widget,15,20
`

func TestGetInterfaceClearsSession(t *testing.T) {
	env := setupEnv(config.Config{CustomerName: "TakeALot"})
	env.sessions.Put("1", session.Payload{TargetDate: "2026-03-01"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/leadsync", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	_, ok := env.sessions.Get("1")
	assert.False(t, ok, "fresh visit must clear review state")
}

func TestProcessCSVPopulatesSession(t *testing.T) {
	env := setupEnv(config.Config{DefaultLocationID: 1})
	env.catalog.On("GetLocation", 1).Return(&models.Location{ID: 1, Name: "Main"}, nil)
	env.catalog.On("FindItemByCode", "ABC123").Return(&models.InventoryItem{ID: 7, Code: "ABC123", Name: "Widget"}, nil)
	env.catalog.On("ListLotsForItem", 7, (*int)(nil)).Return([]models.Lot{{ID: 1, ItemID: 7, Quantity: 50}}, nil)
	env.catalog.On("ListCommitmentsForLot", 1).Return([]models.Commitment{{LotID: 1, Quantity: 10}}, nil)

	body, contentType := csvUpload(t, pickingListCSV, "2026-03-01")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/process", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeJSON(t, w)
	assert.Equal(t, true, response["has_matches"])

	payload, ok := env.sessions.Get("1")
	assert.True(t, ok)
	assert.Len(t, payload.Matched, 1)
	assert.Equal(t, 25, payload.Matched[0].CalculatedSOH)
	assert.Equal(t, "2026-03-01", payload.TargetDate)
}

func TestProcessCSVMissingFile(t *testing.T) {
	env := setupEnv(config.Config{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/process", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please upload a CSV file")
}

func TestProcessCSVBadHeaderWritesNoSession(t *testing.T) {
	env := setupEnv(config.Config{DefaultLocationID: 1})
	env.catalog.On("GetLocation", 1).Return(&models.Location{ID: 1, Name: "Main"}, nil)

	// Header missing TSIN.
	body, contentType := csvUpload(t, "DC,Product Label Number,SKU,Product Title,Qty Sending,Qty Required\n", "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/process", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, ok := env.sessions.Get("1")
	assert.False(t, ok)
}

func TestCreateOrderWithoutSession(t *testing.T) {
	env := setupEnv(config.Config{CustomerName: "TakeALot"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/orders", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeJSON(t, w)
	assert.Equal(t, false, response["success"])
	assert.Contains(t, response["message"], "upload a CSV first")
}

func TestCreateOrderCustomerMissing(t *testing.T) {
	env := setupEnv(config.Config{CustomerName: "TakeALot"})
	env.catalog.On("FindCustomerByName", "TakeALot").Return(nil, nil)
	env.sessions.Put("1", session.Payload{
		Matched:    []models.MatchedItem{{ItemID: 7, SKU: "ABC123", QtyRequired: 20}},
		TargetDate: "2026-03-01",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/orders", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeJSON(t, w)
	assert.Equal(t, false, response["success"])
	assert.Contains(t, response["message"], "TakeALot")
	env.audit.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncStockWithoutSession(t *testing.T) {
	env := setupEnv(config.Config{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/sync", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No data to sync")
}

func TestSyncStockDryRun(t *testing.T) {
	env := setupEnv(config.Config{RetailerWarehouseID: "W-1"})
	env.sender.On("SendBatch", mock.Anything).Return(nil, retailer.ErrNotConfigured)
	env.sessions.Put("1", session.Payload{
		Matched: []models.MatchedItem{{ItemID: 7, SKU: "ABC123", CalculatedSOH: 25}},
	})

	// Operator override for item 7.
	form := url.Values{"soh_item_7": {"30"}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/sync", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeJSON(t, w)
	assert.Equal(t, false, response["success"])
	assert.Contains(t, response["message"], "not configured")

	raw, err := json.Marshal(response["payload"])
	assert.NoError(t, err)
	var batch retailer.BatchRequest
	assert.NoError(t, json.Unmarshal(raw, &batch))
	assert.Len(t, batch.Requests, 1)
	assert.Equal(t, 30, batch.Requests[0].LeadtimeStock[0].Quantity)
}

func TestSyncStockSendsBatch(t *testing.T) {
	env := setupEnv(config.Config{RetailerWarehouseID: "W-1"})
	env.sender.On("SendBatch", mock.Anything).Return(&retailer.BatchResponse{BatchID: "b-42"}, nil)
	env.audit.On("Log", "stock_sync_built", mock.Anything, mock.Anything, mock.Anything).Return()
	env.sessions.Put("1", session.Payload{
		Matched: []models.MatchedItem{{ItemID: 7, SKU: "ABC123", CalculatedSOH: 25}},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/sync", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeJSON(t, w)
	assert.Equal(t, true, response["success"])
	assert.Contains(t, response["message"], "b-42")
	env.audit.AssertExpectations(t)
}

func TestSyncStockSendFailure(t *testing.T) {
	env := setupEnv(config.Config{RetailerWarehouseID: "W-1"})
	env.sender.On("SendBatch", mock.Anything).Return(nil, errors.New("retailer API returned 502 Bad Gateway"))
	env.sessions.Put("1", session.Payload{
		Matched: []models.MatchedItem{{ItemID: 7, SKU: "ABC123", CalculatedSOH: 25}},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leadsync/sync", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "502")
}
