package invoice

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is an issued fiscal invoice. Records are insert only.
type Invoice struct {
	ID string `db:"id" json:"id"`

	// Digest is the protective mark computed from the invoice data (ZOI)
	Digest string `db:"zoi" json:"digest"`

	// Receipt is the unique identifier returned by the authority (EOR)
	Receipt string `db:"eor" json:"receipt"`

	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	Sequence      int64           `db:"sequence" json:"sequence"`
	IssuedAt      time.Time       `db:"issued_at" json:"issued_at"`
	Subsequent    bool            `db:"subsequent" json:"subsequent"`
	Total         decimal.Decimal `db:"total" json:"total"`

	UserID    string    `db:"user_id" json:"user_id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	DeviceID  string    `db:"device_id" json:"device_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PriceLine is a single taxable amount on an invoice
type PriceLine struct {
	Amount  decimal.Decimal
	TaxRate decimal.Decimal
}

// TaxGroup is the per rate sum of taxable amounts and tax
type TaxGroup struct {
	Rate          decimal.Decimal `json:"rate"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
}

var hundred = decimal.NewFromInt(100)

// LineTax returns the tax on a single line, rounded to two decimals
func LineTax(line PriceLine) decimal.Decimal {
	return line.Amount.Mul(line.TaxRate).Div(hundred).Round(2)
}

// Total sums the line amounts
func Total(lines []PriceLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

// TaxBreakdown folds the lines by rate. Tax is rounded per line before
// summing and groups are ordered by ascending rate.
func TaxBreakdown(lines []PriceLine) []TaxGroup {
	byRate := make(map[string]*TaxGroup, len(lines))
	for _, l := range lines {
		key := l.TaxRate.String()
		g, ok := byRate[key]
		if !ok {
			g = &TaxGroup{Rate: l.TaxRate, TaxableAmount: decimal.Zero, TaxAmount: decimal.Zero}
			byRate[key] = g
		}
		g.TaxableAmount = g.TaxableAmount.Add(l.Amount)
		g.TaxAmount = g.TaxAmount.Add(LineTax(l))
	}

	groups := make([]TaxGroup, 0, len(byRate))
	for _, g := range byRate {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Rate.LessThan(groups[j].Rate)
	})
	return groups
}
