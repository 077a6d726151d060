package catalog

import (
	"github.com/doug-martin/goqu/v9"

	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

// Repository is the read side of the inventory catalog. The reconciliation
// and allocation engine depends only on these query contracts, never on the
// storage engine behind them.
//
// Lookup methods return (nil, nil) when nothing matches; an error always
// means the query itself failed.
type Repository interface {
	// FindItemByCode matches the internal part code case-insensitively.
	// With several candidates the lowest item id wins, keeping the pick
	// stable between runs.
	FindItemByCode(code string) (*models.InventoryItem, error)

	// FindItemByName matches the display name case-insensitively, with the
	// same lowest-id tie-break.
	FindItemByName(name string) (*models.InventoryItem, error)

	// ListLotsForItem returns positive-quantity lots of an item, optionally
	// restricted to one location.
	ListLotsForItem(itemID int, locationID *int) ([]models.Lot, error)

	// ListLotsForItemTx is ListLotsForItem inside a running transaction, so
	// order creation can plan allocations against the same snapshot it
	// commits.
	ListLotsForItemTx(tx *goqu.TxDatabase, itemID int, locationID *int) ([]models.Lot, error)

	// ListCommitmentsForLot returns the quantities of a lot already promised
	// to existing order lines.
	ListCommitmentsForLot(lotID int) ([]models.Commitment, error)

	ListCommitmentsForLotTx(tx *goqu.TxDatabase, lotID int) ([]models.Commitment, error)

	GetLocation(id int) (*models.Location, error)

	// FindCustomerByName matches a customer record case-insensitively.
	FindCustomerByName(name string) (*models.Customer, error)
}
