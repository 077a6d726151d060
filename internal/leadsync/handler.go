package leadsync

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kelviy/leadtime-order-sync/internal/auditlog"
	"github.com/kelviy/leadtime-order-sync/internal/config"
	"github.com/kelviy/leadtime-order-sync/internal/importer"
	"github.com/kelviy/leadtime-order-sync/internal/orders"
	"github.com/kelviy/leadtime-order-sync/internal/reconcile"
	"github.com/kelviy/leadtime-order-sync/internal/retailer"
	"github.com/kelviy/leadtime-order-sync/internal/session"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
	"github.com/kelviy/leadtime-order-sync/pkg/security"
)

// BatchSender is what the sync endpoint needs from the retailer client.
type BatchSender interface {
	SendBatch(payload retailer.BatchRequest) (*retailer.BatchResponse, error)
}

// AuditLogger records who did what; satisfied by auditlog.Auditlog.
type AuditLogger interface {
	Log(action string, data interface{}, item auditlog.Auditable, userID *int)
}

type Handler struct {
	reconcile *reconcile.Service
	orders    *orders.Service
	sender    BatchSender
	sessions  *session.Store
	audit     AuditLogger
	cfg       config.Config
	log       *zap.Logger
}

func NewHandler(reconcileService *reconcile.Service, orderService *orders.Service, sender BatchSender, sessions *session.Store, audit AuditLogger, cfg config.Config, log *zap.Logger) *Handler {
	return &Handler{
		reconcile: reconcileService,
		orders:    orderService,
		sender:    sender,
		sessions:  sessions,
		audit:     audit,
		cfg:       cfg,
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/leadsync", security.JWTMiddleware(), security.Authorize("user"))
	{
		group.GET("", h.getInterface)
		group.POST("/process", h.processCSV)
		group.POST("/orders", h.createOrder)
		group.POST("/sync", h.syncStock)
	}
}

// getInterface is the fresh-page visit: it clears any previous review state
// for this user and returns the defaults the upload form needs.
func (h *Handler) getInterface(c *gin.Context) {
	userID, err := security.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	h.sessions.Clear(userID)

	c.JSON(http.StatusOK, gin.H{
		"today":         time.Now().Format("2006-01-02"),
		"customer_name": h.cfg.CustomerName,
	})
}

func (h *Handler) processCSV(c *gin.Context) {
	userID, err := security.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("csvfile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload a CSV file."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read CSV file.", "details": err.Error()})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read CSV file.", "details": err.Error()})
		return
	}

	targetDate := c.PostForm("target_date")

	result, err := h.reconcile.Process(string(raw), targetDate)
	if err != nil {
		if errors.Is(err, importer.ErrBadFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process CSV", "details": err.Error()})
		return
	}

	h.sessions.Put(userID, session.Payload{
		Matched:    result.Matched,
		Unmatched:  result.Unmatched,
		TargetDate: targetDate,
	})

	c.JSON(http.StatusOK, gin.H{
		"matched_items":   result.Matched,
		"unmatched_items": result.Unmatched,
		"warnings":        result.Warnings,
		"location_name":   result.LocationName,
		"target_date":     result.TargetDate.Format("2006-01-02"),
		"has_matches":     len(result.Matched) > 0,
	})
}

func (h *Handler) createOrder(c *gin.Context) {
	userID, err := security.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	payload, ok := h.sessions.Get(userID)
	if !ok || len(payload.Matched) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "No data to process. Please upload a CSV first.",
		})
		return
	}

	result, err := h.orders.CreateOrder(payload)
	if err != nil {
		if errors.Is(err, orders.ErrCustomerNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	h.audit.Log("order_created", gin.H{
		"reference":  result.Reference,
		"line_count": result.LineCount,
		"allocated":  result.Allocated,
	}, &models.Order{ID: result.OrderID}, userIDPtr(userID))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": result.Message,
		"url":     result.URL,
	})
}

func (h *Handler) syncStock(c *gin.Context) {
	userID, err := security.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	payload, ok := h.sessions.Get(userID)
	if !ok || len(payload.Matched) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "No data to sync. Please upload a CSV first.",
		})
		return
	}

	// Operator-edited SOH values arrive as soh_item_<id> form fields.
	overrides := make(map[int]string)
	for _, item := range payload.Matched {
		field := "soh_item_" + strconv.Itoa(item.ItemID)
		if value, exists := c.GetPostForm(field); exists {
			overrides[item.ItemID] = value
		}
	}

	batch := retailer.BuildPayload(payload.Matched, overrides, h.cfg.RetailerWarehouseID)

	response, err := h.sender.SendBatch(batch)
	if err != nil {
		if errors.Is(err, retailer.ErrNotConfigured) {
			// Dry run: show what would have been sent instead of failing the
			// review flow outright.
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": "Retailer API credentials not configured. Showing the payload that would have been sent.",
				"payload": batch,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	h.audit.Log("stock_sync_built", batch, &syncEvent{}, userIDPtr(userID))

	message := "Stock levels synced to retailer successfully"
	if response.BatchID != "" {
		message += " (Batch ID: " + response.BatchID + ")"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message + "."})
}

// syncEvent gives stock sync batches an identity in the audit log; there is
// no single inventory resource a batch belongs to.
type syncEvent struct{}

func (e *syncEvent) CreateLogView() models.AuditLog {
	return models.AuditLog{ResourceType: "stock_sync"}
}

func userIDPtr(userID string) *int {
	id, err := strconv.Atoi(userID)
	if err != nil {
		return nil
	}
	return &id
}
