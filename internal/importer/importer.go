package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

// ErrBadFormat means the upload is missing required picking-list columns.
// The upload is rejected as a whole; there is no partial processing.
var ErrBadFormat = errors.New("CSV file format is incorrect")

// RequiredColumns is the minimal header set of a retailer picking list.
// Extra columns are ignored, order does not matter.
var RequiredColumns = []string{
	"DC",
	"Product Label Number",
	"SKU",
	"TSIN",
	"Product Title",
	"Qty Sending",
	"Qty Required",
}

// Parse reads picking-list CSV text into import rows, preserving input order.
//
// Quantities are lenient: empty or non-numeric values become 0 instead of
// failing the row. String fields are trimmed and stripped of surrounding
// double quotes, matching how the retailer exports titles and SKUs.
func Parse(raw string) ([]models.ImportRow, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file, expected columns: %s",
			ErrBadFormat, strings.Join(RequiredColumns, ", "))
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range RequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: expected columns: %s",
				ErrBadFormat, strings.Join(RequiredColumns, ", "))
		}
	}

	rows := make([]models.ImportRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, models.ImportRow{
			DC:           cleanField(record, columns["DC"]),
			SKU:          cleanField(record, columns["SKU"]),
			TSIN:         cleanField(record, columns["TSIN"]),
			ProductTitle: cleanField(record, columns["Product Title"]),
			QtyRequired:  lenientInt(cleanField(record, columns["Qty Required"])),
			QtySending:   lenientInt(cleanField(record, columns["Qty Sending"])),
		})
	}

	return rows, nil
}

func cleanField(record []string, index int) string {
	if index >= len(record) {
		return ""
	}
	value := strings.TrimSpace(record[index])
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	return strings.TrimSpace(value)
}

// lenientInt normalizes malformed quantities to zero. Deliberate policy:
// a bad cell must not reject the row.
func lenientInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
