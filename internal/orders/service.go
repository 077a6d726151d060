package orders

import (
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kelviy/leadtime-order-sync/internal/allocation"
	"github.com/kelviy/leadtime-order-sync/internal/catalog"
	"github.com/kelviy/leadtime-order-sync/internal/config"
	"github.com/kelviy/leadtime-order-sync/internal/repository"
	"github.com/kelviy/leadtime-order-sync/internal/session"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

var ErrCustomerNotFound = errors.New("customer not found")

const dateLayout = "2006-01-02"

// CreateOrderResult summarizes a successfully created order.
type CreateOrderResult struct {
	OrderID   int    `json:"order_id"`
	Reference string `json:"reference"`
	LineCount int    `json:"line_count"`
	Allocated bool   `json:"allocated"`
	Message   string `json:"message"`
	URL       string `json:"url"`
}

type Service struct {
	r       *repository.Repository
	orders  OrderRepository
	catalog catalog.Repository
	planner *allocation.Planner
	cfg     config.Config
	log     *zap.Logger

	// withTx is repository.WithTransaction, swappable in tests.
	withTx func(db *goqu.Database, fn func(tx *goqu.TxDatabase) error) error
}

func NewService(r *repository.Repository, orderRepo OrderRepository, catalogRepo catalog.Repository, cfg config.Config, log *zap.Logger) *Service {
	return &Service{
		r:       r,
		orders:  orderRepo,
		catalog: catalogRepo,
		planner: &allocation.Planner{ShortfallWarning: cfg.ShortfallWarning},
		cfg:     cfg,
		log:     log,
		withTx:  repository.WithTransaction,
	}
}

// CreateOrder turns the reviewed picking list into one order: a header, a
// shipment dated at the target date, one line per matched item and the lot
// allocations covering each line's sending quantity.
//
// The whole order is built inside a single transaction; a failure on any
// line or allocation leaves no trace of the order behind. A missing source
// location is not a failure: the order is created without allocations and
// the result says so.
func (s *Service) CreateOrder(payload session.Payload) (*CreateOrderResult, error) {
	customer, err := s.catalog.FindCustomerByName(s.cfg.CustomerName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: customer '%s' does not exist", ErrCustomerNotFound, s.cfg.CustomerName)
	}

	targetDate := s.parseTargetDate(payload.TargetDate)
	location := s.resolveLocation()
	reference := newReference()

	result := &CreateOrderResult{
		Reference: reference,
		Allocated: location != nil,
	}

	err = s.withTx(s.r.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		orderID, err := s.orders.InsertOrder(tx, reference, customer.ID, targetDate)
		if err != nil {
			return err
		}
		result.OrderID = orderID

		shipmentID, err := s.orders.InsertShipment(tx, orderID, targetDate)
		if err != nil {
			return err
		}

		for _, item := range payload.Matched {
			lineID, err := s.orders.InsertLine(tx, models.OrderLine{
				OrderID:  orderID,
				ItemID:   item.ItemID,
				Quantity: item.QtyRequired,
				Currency: s.cfg.Currency,
				Notes:    fmt.Sprintf("Imported:\n DC=%s\n Qty Sending=%d", item.DC, item.QtySending),
			})
			if err != nil {
				return err
			}
			result.LineCount++

			if location == nil || item.QtySending <= 0 {
				continue
			}

			if err := s.allocateLine(tx, lineID, shipmentID, item, location.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating order line items: %w", err)
	}

	result.URL = fmt.Sprintf("/orders/%d", result.OrderID)
	result.Message = fmt.Sprintf("Sales order %s created with %d line items.", reference, result.LineCount)
	if location == nil {
		result.Message += " (stock not allocated - no default location configured)."
	} else {
		result.Message += " (stock allocated from default location where available)."
	}

	s.log.Info("Created sales order",
		zap.String("reference", reference),
		zap.Int("lines", result.LineCount),
		zap.Bool("allocated", result.Allocated),
	)

	return result, nil
}

// allocateLine plans against the lots as they exist inside this same
// transaction, so what the planner saw is exactly what gets committed.
func (s *Service) allocateLine(tx *goqu.TxDatabase, lineID int, shipmentID int, item models.MatchedItem, locationID int) error {
	lots, err := s.catalog.ListLotsForItemTx(tx, item.ItemID, &locationID)
	if err != nil {
		return err
	}

	var commitments []models.Commitment
	for _, lot := range lots {
		lotCommitments, err := s.catalog.ListCommitmentsForLotTx(tx, lot.ID)
		if err != nil {
			return err
		}
		commitments = append(commitments, lotCommitments...)
	}

	plan := s.planner.Build(lots, allocation.CommittedByLot(commitments), item.QtySending)
	for _, entry := range plan.Entries {
		if err := s.orders.InsertAllocation(tx, lineID, shipmentID, entry.Lot.ID, entry.Quantity); err != nil {
			return err
		}
	}

	if plan.Warning != "" {
		s.log.Warn("Allocation shortfall",
			zap.String("sku", item.SKU),
			zap.Int("shortfall", plan.Shortfall),
		)
	}

	return nil
}

func (s *Service) parseTargetDate(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Now()
	}
	return parsed
}

func (s *Service) resolveLocation() *models.Location {
	if s.cfg.DefaultLocationID == 0 {
		return nil
	}
	location, err := s.catalog.GetLocation(s.cfg.DefaultLocationID)
	if err != nil {
		s.log.Warn("Failed to resolve default stock location", zap.Error(err))
		return nil
	}
	return location
}

func newReference() string {
	return "SO-" + uuid.NewString()[:8]
}
