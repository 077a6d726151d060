package reconcile

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kelviy/leadtime-order-sync/internal/catalog"
	"github.com/kelviy/leadtime-order-sync/internal/config"
	"github.com/kelviy/leadtime-order-sync/internal/importer"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

const dateLayout = "2006-01-02"

// ProcessResult is what one picking-list upload reconciles to: the
// matched/unmatched partition, the availability snapshot on each matched
// item, and any non-fatal warnings gathered along the way.
type ProcessResult struct {
	Matched      []models.MatchedItem   `json:"matched_items"`
	Unmatched    []models.UnmatchedItem `json:"unmatched_items"`
	Warnings     []string               `json:"warnings,omitempty"`
	LocationName string                 `json:"location_name"`
	TargetDate   time.Time              `json:"target_date"`
}

type Service struct {
	catalog catalog.Repository
	cfg     config.Config
	log     *zap.Logger
}

func NewService(catalogRepo catalog.Repository, cfg config.Config, log *zap.Logger) *Service {
	return &Service{catalog: catalogRepo, cfg: cfg, log: log}
}

// Process parses the uploaded CSV and reconciles every row against the
// catalog. Matching tries the internal part code against the row SKU first,
// then the display name against the row title; TSIN is carried through but
// not matched on yet.
//
// Availability is a snapshot taken per row at processing time; later stock
// movements are not reflected until the next upload.
func (s *Service) Process(raw string, targetDate string) (*ProcessResult, error) {
	rows, err := importer.Parse(raw)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{}
	result.TargetDate = s.parseTargetDate(targetDate, result)
	s.resolveLocation(result)

	for _, row := range rows {
		item, err := s.matchRow(row)
		if err != nil {
			return nil, err
		}

		if item == nil {
			result.Unmatched = append(result.Unmatched, models.UnmatchedItem{
				SKU:          row.SKU,
				TSIN:         row.TSIN,
				ProductTitle: row.ProductTitle,
				DC:           row.DC,
				QtyRequired:  row.QtyRequired,
				QtySending:   row.QtySending,
			})
			continue
		}

		available, err := s.availability(item.ID)
		if err != nil {
			return nil, err
		}

		soh := available - row.QtySending
		if soh < 0 {
			soh = 0
		}

		result.Matched = append(result.Matched, models.MatchedItem{
			ItemID:        item.ID,
			SKU:           row.SKU,
			TSIN:          row.TSIN,
			Name:          item.Name,
			DC:            row.DC,
			QtyRequired:   row.QtyRequired,
			QtySending:    row.QtySending,
			Available:     available,
			CalculatedSOH: soh,
		})
	}

	s.log.Info("Processed picking list",
		zap.Int("matched", len(result.Matched)),
		zap.Int("unmatched", len(result.Unmatched)),
	)

	return result, nil
}

func (s *Service) matchRow(row models.ImportRow) (*models.InventoryItem, error) {
	if row.SKU != "" {
		item, err := s.catalog.FindItemByCode(row.SKU)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}
	}

	if row.ProductTitle != "" {
		item, err := s.catalog.FindItemByName(row.ProductTitle)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}
	}

	return nil, nil
}

// availability sums the item's in-stock lots across all locations, minus
// everything already committed against those lots, floored at zero.
func (s *Service) availability(itemID int) (int, error) {
	lots, err := s.catalog.ListLotsForItem(itemID, nil)
	if err != nil {
		return 0, err
	}

	total := 0
	committed := 0
	for _, lot := range lots {
		total += lot.Quantity

		commitments, err := s.catalog.ListCommitmentsForLot(lot.ID)
		if err != nil {
			return 0, err
		}
		for _, c := range commitments {
			committed += c.Quantity
		}
	}

	available := total - committed
	if available < 0 {
		available = 0
	}
	return available, nil
}

// parseTargetDate falls back to today on a bad or absent date. A bad date
// is surfaced as a warning, never as an error.
func (s *Service) parseTargetDate(raw string, result *ProcessResult) time.Time {
	if raw == "" {
		return time.Now()
	}

	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		result.Warnings = append(result.Warnings, "Invalid date format. Using today's date.")
		return time.Now()
	}
	return parsed
}

func (s *Service) resolveLocation(result *ProcessResult) {
	if s.cfg.DefaultLocationID == 0 {
		result.Warnings = append(result.Warnings,
			"Default stock location is not configured. Stock allocation will be skipped.")
		return
	}

	location, err := s.catalog.GetLocation(s.cfg.DefaultLocationID)
	if err != nil {
		s.log.Warn("Failed to resolve default stock location", zap.Error(err))
	}
	if location == nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Default stock location '%d' not found. Stock allocation will be skipped.",
			s.cfg.DefaultLocationID))
		return
	}

	result.LocationName = location.Name
}
