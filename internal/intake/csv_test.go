package intake_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-ledger/internal/intake"
)

func TestParseCSV(t *testing.T) {
	in := strings.NewReader(
		"name,batch,expiry,quantity,purchasePrice,mrp,gstPercent,hsnCode\n" +
			"Paracetamol,B1,2026-03-31,100,18.50,25.00,12,3004\n" +
			"Cetirizine,C7,2025-12-31,40,9,14.50,5,\n")

	lines, err := intake.ParseCSV(in)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Paracetamol", lines[0].Name)
	assert.Equal(t, "B1", lines[0].Batch)
	assert.Equal(t, 100, lines[0].Quantity)
	assert.True(t, lines[0].PurchasePrice.Equal(decimal.RequireFromString("18.50")))
	assert.True(t, lines[0].GSTPercent.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "3004", lines[0].HSNCode)

	assert.Equal(t, "Cetirizine", lines[1].Name)
	assert.Empty(t, lines[1].HSNCode)
}

func TestParseCSV_HeaderOrderIrrelevant(t *testing.T) {
	in := strings.NewReader("quantity,name\n7,Dolo\n")
	lines, err := intake.ParseCSV(in)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Dolo", lines[0].Name)
	assert.Equal(t, 7, lines[0].Quantity)
}

func TestParseCSV_MissingRequiredColumn(t *testing.T) {
	_, err := intake.ParseCSV(strings.NewReader("name,batch\nDolo,D9\n"))
	assert.Error(t, err)
}

func TestParseCSV_BadQuantity(t *testing.T) {
	_, err := intake.ParseCSV(strings.NewReader("name,quantity\nDolo,many\n"))
	assert.Error(t, err)
}
