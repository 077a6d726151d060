package orders

import (
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/kelviy/leadtime-order-sync/internal/repository"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

// OrderRepository is the write side of order creation. Every method takes
// the transaction the whole order is built in; nothing is persisted outside
// of it.
type OrderRepository interface {
	InsertOrder(tx *goqu.TxDatabase, reference string, customerID int, targetDate time.Time) (int, error)
	InsertShipment(tx *goqu.TxDatabase, orderID int, deliveryDate time.Time) (int, error)
	InsertLine(tx *goqu.TxDatabase, line models.OrderLine) (int, error)
	InsertAllocation(tx *goqu.TxDatabase, lineID int, shipmentID int, lotID int, quantity int) error
}

type orderRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) OrderRepository {
	return &orderRepository{repository: r}
}

func (r *orderRepository) InsertOrder(tx *goqu.TxDatabase, reference string, customerID int, targetDate time.Time) (int, error) {
	var orderID int

	query := tx.Insert("orders").
		Rows(goqu.Record{
			"reference":   reference,
			"customer_id": customerID,
			"target_date": targetDate,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&orderID); err != nil {
		return 0, fmt.Errorf("failed to insert order record: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) InsertShipment(tx *goqu.TxDatabase, orderID int, deliveryDate time.Time) (int, error) {
	var shipmentID int

	query := tx.Insert("order_shipments").
		Rows(goqu.Record{
			"order_id":      orderID,
			"delivery_date": deliveryDate,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&shipmentID); err != nil {
		return 0, fmt.Errorf("failed to insert shipment record: %w", err)
	}

	return shipmentID, nil
}

func (r *orderRepository) InsertLine(tx *goqu.TxDatabase, line models.OrderLine) (int, error) {
	var lineID int

	query := tx.Insert("order_lines").
		Rows(goqu.Record{
			"order_id": line.OrderID,
			"item_id":  line.ItemID,
			"quantity": line.Quantity,
			"currency": line.Currency,
			"notes":    line.Notes,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&lineID); err != nil {
		return 0, fmt.Errorf("failed to insert order line record: %w", err)
	}

	return lineID, nil
}

func (r *orderRepository) InsertAllocation(tx *goqu.TxDatabase, lineID int, shipmentID int, lotID int, quantity int) error {
	query := tx.Insert("order_allocations").
		Rows(goqu.Record{
			"line_id":     lineID,
			"shipment_id": shipmentID,
			"lot_id":      lotID,
			"quantity":    quantity,
		})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert allocation record: %w", err)
	}

	return nil
}
