// Package ai turns free-form purchase-bill text into structured intake
// lines. It is an external producer: the reconciliation core consumes
// its output exactly as it consumes the CSV importer's.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
	"github.com/shopspring/decimal"

	"pharmacy-ledger/internal/core"
)

// ExtractorService is implemented by anything that can interpret a bill.
type ExtractorService interface {
	ExtractBill(ctx context.Context, billText string) (*BillExtraction, error)
}

// billLine mirrors core.IntakeLine with string amounts: structured
// output is far more reliable when the model emits exact decimal
// strings rather than floats.
type billLine struct {
	Name          string `json:"name" jsonschema_description:"Product name exactly as printed on the bill"`
	Batch         string `json:"batch" jsonschema_description:"Batch number, empty string if not printed"`
	Expiry        string `json:"expiry" jsonschema_description:"Expiry date in YYYY-MM-DD format, empty string if not printed"`
	Quantity      int    `json:"quantity" jsonschema_description:"Quantity purchased, in loose units"`
	PurchasePrice string `json:"purchase_price" jsonschema_description:"Purchase price per pack as an exact decimal string, e.g. '18.50'"`
	MRP           string `json:"mrp" jsonschema_description:"Maximum retail price per pack as an exact decimal string"`
	GSTPercent    string `json:"gst_percent" jsonschema_description:"GST rate percentage as a decimal string, e.g. '12'"`
	HSNCode       string `json:"hsn_code" jsonschema_description:"HSN code, empty string if not printed"`
}

// billDocument is the structured-output shape for one supplier bill.
type billDocument struct {
	SupplierName  string     `json:"supplier_name" jsonschema_description:"Supplier/distributor name from the bill header"`
	SupplierGSTIN string     `json:"supplier_gstin" jsonschema_description:"Supplier GSTIN, empty string if not printed"`
	InvoiceNumber string     `json:"invoice_number" jsonschema_description:"Bill/invoice number, empty string if not printed"`
	Date          string     `json:"date" jsonschema_description:"Bill date in YYYY-MM-DD format"`
	TotalAmount   string     `json:"total_amount" jsonschema_description:"Grand total of the bill as an exact decimal string"`
	Lines         []billLine `json:"lines" jsonschema_description:"Every product line on the bill"`
}

// BillExtraction is the producer output, shaped for a PurchaseEvent.
type BillExtraction struct {
	SupplierName  string
	SupplierGSTIN string
	InvoiceNumber string
	Date          string
	TotalAmount   decimal.Decimal
	Lines         []core.IntakeLine
}

type Extractor struct {
	client *openai.Client
}

func NewExtractor(apiKey string) *Extractor {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Extractor{client: &client}
}

// ExtractBill interprets the text of a supplier bill (typed in or OCRed
// upstream) into structured intake lines.
func (e *Extractor) ExtractBill(ctx context.Context, billText string) (*BillExtraction, error) {
	prompt := fmt.Sprintf(`You are a pharmacy purchase clerk.
Extract every product line from the supplier bill below.
Rules:
1. Copy names, batch numbers and HSN codes exactly as printed.
2. Amounts must be exact decimal strings (e.g. "18.50"), never rounded.
3. Quantities are loose units (tablets/bottles), not packs.
4. Use empty strings for fields the bill does not show.

Bill:
%s`, billText)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "purchase_bill",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Structured line items extracted from a pharmacy supplier bill"),
				},
			},
		},
	}

	resp, err := e.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var doc billDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	return doc.toExtraction()
}

func (d billDocument) toExtraction() (*BillExtraction, error) {
	out := &BillExtraction{
		SupplierName:  d.SupplierName,
		SupplierGSTIN: d.SupplierGSTIN,
		InvoiceNumber: d.InvoiceNumber,
		Date:          d.Date,
	}

	var err error
	if out.TotalAmount, err = parseAmount(d.TotalAmount); err != nil {
		return nil, fmt.Errorf("total amount: %w", err)
	}

	for i, ln := range d.Lines {
		line := core.IntakeLine{
			Name:     ln.Name,
			Batch:    ln.Batch,
			Expiry:   ln.Expiry,
			Quantity: ln.Quantity,
			HSNCode:  ln.HSNCode,
		}
		if line.PurchasePrice, err = parseAmount(ln.PurchasePrice); err != nil {
			return nil, fmt.Errorf("line %d purchase price: %w", i+1, err)
		}
		if line.MRP, err = parseAmount(ln.MRP); err != nil {
			return nil, fmt.Errorf("line %d mrp: %w", i+1, err)
		}
		if line.GSTPercent, err = parseAmount(ln.GSTPercent); err != nil {
			return nil, fmt.Errorf("line %d gst percent: %w", i+1, err)
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v billDocument
	return reflector.Reflect(v)
}
