package catalog

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/kelviy/leadtime-order-sync/internal/repository"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

type catalogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) Repository {
	return &catalogRepository{repository: r}
}

func (r *catalogRepository) FindItemByCode(code string) (*models.InventoryItem, error) {
	return r.findItemWhere(goqu.L("LOWER(code) = LOWER(?)", code))
}

func (r *catalogRepository) FindItemByName(name string) (*models.InventoryItem, error) {
	return r.findItemWhere(goqu.L("LOWER(name) = LOWER(?)", name))
}

func (r *catalogRepository) findItemWhere(condition goqu.Expression) (*models.InventoryItem, error) {
	var item models.InventoryItem

	query := r.repository.GoquDBWrapper.
		Select("id", "code", "name").
		From("inventory_items").
		Where(condition).
		Order(goqu.C("id").Asc()).
		Limit(1)

	found, err := query.Executor().ScanStruct(&item)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory item: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &item, nil
}

func (r *catalogRepository) ListLotsForItem(itemID int, locationID *int) ([]models.Lot, error) {
	return scanLots(lotsQuery(r.repository.GoquDBWrapper, itemID, locationID))
}

func (r *catalogRepository) ListLotsForItemTx(tx *goqu.TxDatabase, itemID int, locationID *int) ([]models.Lot, error) {
	return scanLots(lotsQueryTx(tx, itemID, locationID))
}

func (r *catalogRepository) ListCommitmentsForLot(lotID int) ([]models.Commitment, error) {
	return scanCommitments(r.repository.GoquDBWrapper.
		Select("id", "lot_id", "line_id", "quantity").
		From("order_allocations").
		Where(goqu.Ex{"lot_id": lotID}))
}

func (r *catalogRepository) ListCommitmentsForLotTx(tx *goqu.TxDatabase, lotID int) ([]models.Commitment, error) {
	return scanCommitments(tx.
		Select("id", "lot_id", "line_id", "quantity").
		From("order_allocations").
		Where(goqu.Ex{"lot_id": lotID}))
}

func (r *catalogRepository) GetLocation(id int) (*models.Location, error) {
	var location models.Location

	query := r.repository.GoquDBWrapper.
		Select("id", "name", "details").
		From("locations").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&location)
	if err != nil {
		return nil, fmt.Errorf("failed to query location: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &location, nil
}

func (r *catalogRepository) FindCustomerByName(name string) (*models.Customer, error) {
	var customer models.Customer

	query := r.repository.GoquDBWrapper.
		Select("id", "name").
		From("customers").
		Where(goqu.L("LOWER(name) = LOWER(?)", name)).
		Order(goqu.C("id").Asc()).
		Limit(1)

	found, err := query.Executor().ScanStruct(&customer)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &customer, nil
}

func lotsQuery(db *goqu.Database, itemID int, locationID *int) *goqu.SelectDataset {
	query := db.
		Select("id", "item_id", "location_id", "quantity").
		From("lots").
		Where(goqu.Ex{"item_id": itemID}).
		Where(goqu.C("quantity").Gt(0)).
		Order(goqu.C("id").Asc())

	if locationID != nil {
		query = query.Where(goqu.Ex{"location_id": *locationID})
	}
	return query
}

func lotsQueryTx(tx *goqu.TxDatabase, itemID int, locationID *int) *goqu.SelectDataset {
	query := tx.
		Select("id", "item_id", "location_id", "quantity").
		From("lots").
		Where(goqu.Ex{"item_id": itemID}).
		Where(goqu.C("quantity").Gt(0)).
		Order(goqu.C("id").Asc())

	if locationID != nil {
		query = query.Where(goqu.Ex{"location_id": *locationID})
	}
	return query
}

func scanLots(query *goqu.SelectDataset) ([]models.Lot, error) {
	var lots []models.Lot
	if err := query.Executor().ScanStructs(&lots); err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	return lots, nil
}

func scanCommitments(query *goqu.SelectDataset) ([]models.Commitment, error) {
	var commitments []models.Commitment
	if err := query.Executor().ScanStructs(&commitments); err != nil {
		return nil, fmt.Errorf("failed to query commitments: %w", err)
	}
	return commitments, nil
}
