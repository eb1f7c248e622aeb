// Package intake holds the bulk-intake producers. Producers parse raw
// documents into already-structured lines; the core never sees the raw
// form.
package intake

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pharmacy-ledger/internal/core"
)

// ParseCSV reads a bulk-intake CSV and returns structured lines.
//
// The first row is a header; columns are matched by name
// (case-insensitive): name, batch, expiry, quantity, purchasePrice,
// mrp, gstPercent, hsnCode, unitsPerPack, minStockLimit. Name and
// quantity are required, everything else defaults to zero values.
func ParseCSV(r io.Reader) ([]core.IntakeLine, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("csv header missing required column %q", "name")
	}
	if _, ok := cols["quantity"]; !ok {
		return nil, fmt.Errorf("csv header missing required column %q", "quantity")
	}

	var lines []core.IntakeLine
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNum, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		qty, err := parseInt(field("quantity"))
		if err != nil {
			return nil, fmt.Errorf("csv row %d: quantity: %w", rowNum, err)
		}

		ln := core.IntakeLine{
			Name:     field("name"),
			Batch:    field("batch"),
			Expiry:   field("expiry"),
			Quantity: qty,
			HSNCode:  field("hsncode"),
		}
		if ln.PurchasePrice, err = parseDecimal(field("purchaseprice")); err != nil {
			return nil, fmt.Errorf("csv row %d: purchasePrice: %w", rowNum, err)
		}
		if ln.MRP, err = parseDecimal(field("mrp")); err != nil {
			return nil, fmt.Errorf("csv row %d: mrp: %w", rowNum, err)
		}
		if ln.GSTPercent, err = parseDecimal(field("gstpercent")); err != nil {
			return nil, fmt.Errorf("csv row %d: gstPercent: %w", rowNum, err)
		}
		if ln.UnitsPerPack, err = parseOptionalInt(field("unitsperpack")); err != nil {
			return nil, fmt.Errorf("csv row %d: unitsPerPack: %w", rowNum, err)
		}
		if ln.MinStockLimit, err = parseOptionalInt(field("minstocklimit")); err != nil {
			return nil, fmt.Errorf("csv row %d: minStockLimit: %w", rowNum, err)
		}
		lines = append(lines, ln)
	}
	return lines, nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.Atoi(s)
}

func parseOptionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
