package allocation

import (
	"fmt"

	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

// Entry is one lot-level allocation of a plan.
type Entry struct {
	Lot      models.Lot `json:"lot"`
	Quantity int        `json:"quantity"`
}

// Plan is the result of allocating a requested quantity across the lots at
// the source location. The plan is advisory: it only holds once committed in
// the same transaction that read the lots.
type Plan struct {
	Entries []Entry `json:"entries"`
	// Shortfall is what remained unallocated after the lots ran out.
	Shortfall int `json:"shortfall"`
	// Warning carries the shortfall message when the shortfall policy is on.
	Warning string `json:"warning,omitempty"`
}

// Allocated returns the total quantity across plan entries.
func (p Plan) Allocated() int {
	total := 0
	for _, e := range p.Entries {
		total += e.Quantity
	}
	return total
}

// Planner distributes a requested quantity over candidate lots.
type Planner struct {
	// ShortfallWarning makes an unfulfilled remainder visible on the plan
	// instead of dropping it silently. Either way no back-order is recorded.
	ShortfallWarning bool
}

// Build walks the lots in the order given, taking from each at most its own
// availability (lot quantity minus its existing commitments, floored at 0)
// and stopping once the request is covered. A zero request or an empty lot
// list yields an empty plan; that is partial fulfillment, not an error.
//
// Guarantees: the plan total never exceeds requested, and no entry exceeds
// its lot's availability at planning time.
func (p *Planner) Build(lots []models.Lot, committed map[int]int, requested int) Plan {
	plan := Plan{}
	if requested <= 0 {
		return plan
	}

	remaining := requested
	for _, lot := range lots {
		if remaining <= 0 {
			break
		}
		if lot.Quantity <= 0 {
			continue
		}

		available := lot.Quantity - committed[lot.ID]
		if available <= 0 {
			continue
		}

		take := available
		if remaining < take {
			take = remaining
		}

		plan.Entries = append(plan.Entries, Entry{Lot: lot, Quantity: take})
		remaining -= take
	}

	plan.Shortfall = remaining
	if remaining > 0 && p.ShortfallWarning {
		plan.Warning = fmt.Sprintf("%d of %d requested could not be allocated from available lots", remaining, requested)
	}

	return plan
}

// CommittedByLot folds commitment rows into a per-lot total for Build.
func CommittedByLot(commitments []models.Commitment) map[int]int {
	committed := make(map[int]int, len(commitments))
	for _, c := range commitments {
		committed[c.LotID] += c.Quantity
	}
	return committed
}
