package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// GSTRateSummary aggregates taxable value and tax for one GST rate.
type GSTRateSummary struct {
	RatePercent  decimal.Decimal `json:"ratePercent"`
	TaxableValue decimal.Decimal `json:"taxableValue"`
	Tax          decimal.Decimal `json:"tax"`
}

// GSTReport is the rate-wise output/input tax summary for one month,
// the figures a GSTR filing is built from.
type GSTReport struct {
	Month     string           `json:"month"` // YYYY-MM
	Outward   []GSTRateSummary `json:"outward"`
	Inward    []GSTRateSummary `json:"inward"`
	OutputTax decimal.Decimal  `json:"outputTax"`
	InputTax  decimal.Decimal  `json:"inputTax"`
	NetTax    decimal.Decimal  `json:"netTax"`
}

var hundred = decimal.NewFromInt(100)

// GSTSummary computes the rate-wise GST report for a month from the sale
// and purchase records.
//
// Sale prices are MRP-based and GST inclusive, so the taxable value is
// backed out of the line value. Purchase prices are quoted exclusive of
// GST, so tax is added on top.
func GSTSummary(transactions []Transaction, purchases []Purchase, month string) GSTReport {
	outward := map[string]*GSTRateSummary{}
	inward := map[string]*GSTRateSummary{}

	for _, txn := range transactions {
		if !strings.HasPrefix(txn.Date, month) {
			continue
		}
		for _, it := range txn.Items {
			value := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			taxable := value.Mul(hundred).Div(hundred.Add(it.GSTPercent)).Round(2)
			bucket(outward, it.GSTPercent).add(taxable, value.Sub(taxable))
		}
	}

	for _, pur := range purchases {
		if !strings.HasPrefix(pur.Date, month) {
			continue
		}
		for _, ln := range pur.Items {
			value := ln.PurchasePrice.Mul(decimal.NewFromInt(int64(ln.Quantity)))
			tax := value.Mul(ln.GSTPercent).Div(hundred).Round(2)
			bucket(inward, ln.GSTPercent).add(value, tax)
		}
	}

	report := GSTReport{
		Month:   month,
		Outward: flatten(outward),
		Inward:  flatten(inward),
	}
	for _, s := range report.Outward {
		report.OutputTax = report.OutputTax.Add(s.Tax)
	}
	for _, s := range report.Inward {
		report.InputTax = report.InputTax.Add(s.Tax)
	}
	report.NetTax = report.OutputTax.Sub(report.InputTax)
	return report
}

func bucket(m map[string]*GSTRateSummary, rate decimal.Decimal) *GSTRateSummary {
	key := rate.String()
	if s, ok := m[key]; ok {
		return s
	}
	s := &GSTRateSummary{RatePercent: rate}
	m[key] = s
	return s
}

func (s *GSTRateSummary) add(taxable, tax decimal.Decimal) {
	s.TaxableValue = s.TaxableValue.Add(taxable)
	s.Tax = s.Tax.Add(tax)
}

func flatten(m map[string]*GSTRateSummary) []GSTRateSummary {
	out := make([]GSTRateSummary, 0, len(m))
	for _, s := range m {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RatePercent.LessThan(out[j].RatePercent)
	})
	return out
}
