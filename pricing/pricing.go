package pricing

import (
	"github.com/shopspring/decimal"
)

// RushRate is applied to the pre-add-on subtotal of rush-rated lines.
var RushRate = decimal.RequireFromString("0.25")

var hundred = decimal.NewFromInt(100)

type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
	AddonIDs  []int
	Rush      bool
}

type LineTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	AddonsTotal decimal.Decimal `json:"addonsTotal"`
	RushFee     decimal.Decimal `json:"rushFee"`
	Total       decimal.Decimal `json:"total"`
	Rush        bool            `json:"rush"`
}

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	AddonsTotal decimal.Decimal `json:"addonsTotal"`
	RushFee     decimal.Decimal `json:"rushFee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Rush        bool            `json:"rush"`
	Lines       []LineTotals    `json:"lines,omitempty"`
}

type Engine struct {
	addons *AddonCatalog
}

func NewEngine(addons *AddonCatalog) *Engine {
	if addons == nil {
		addons = DefaultCatalog()
	}
	return &Engine{addons: addons}
}

func (e *Engine) Addons() *AddonCatalog { return e.addons }

// AddonsTotal sums the price of every id, counting duplicates.
func (e *Engine) AddonsTotal(ids []int) decimal.Decimal {
	total := decimal.Zero
	for _, id := range ids {
		total = total.Add(e.addons.Price(id))
	}
	return total
}

func (e *Engine) line(item LineItem, orderRush bool) LineTotals {
	rush := item.Rush || orderRush
	subtotal := item.UnitPrice.Mul(item.Quantity)
	addons := e.AddonsTotal(item.AddonIDs)
	fee := decimal.Zero
	if rush {
		fee = subtotal.Mul(RushRate)
	}
	return LineTotals{
		Subtotal:    subtotal,
		AddonsTotal: addons,
		RushFee:     fee,
		Total:       subtotal.Add(addons).Add(fee),
		Rush:        rush,
	}
}

// Line prices a single basket or order line, rounded for display.
func (e *Engine) Line(item LineItem, orderRush bool) LineTotals {
	return roundLine(e.line(item, orderRush))
}

// ComputeTotals prices an order. Sums are kept exact and each component is rounded
// once at the end; the total is the sum of the rounded components so that
// total = subtotal + addons + rush fee - discount holds to the cent.
func (e *Engine) ComputeTotals(items []LineItem, orderRush bool) Totals {
	var t Totals
	subtotal, addons, fee := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range items {
		l := e.line(item, orderRush)
		subtotal = subtotal.Add(l.Subtotal)
		addons = addons.Add(l.AddonsTotal)
		fee = fee.Add(l.RushFee)
		t.Rush = t.Rush || l.Rush
		t.Lines = append(t.Lines, roundLine(l))
	}
	t.Subtotal = Round(subtotal)
	t.AddonsTotal = Round(addons)
	t.RushFee = Round(fee)
	t.Discount = decimal.Zero
	t.Total = t.Subtotal.Add(t.AddonsTotal).Add(t.RushFee).Sub(t.Discount)
	return t
}

func roundLine(l LineTotals) LineTotals {
	l.Subtotal = Round(l.Subtotal)
	l.AddonsTotal = Round(l.AddonsTotal)
	l.RushFee = Round(l.RushFee)
	l.Total = l.Subtotal.Add(l.AddonsTotal).Add(l.RushFee)
	return l
}

// Round applies half-up rounding to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToMinor converts a currency amount to centavos for the payment gateway.
func ToMinor(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

func FromMinor(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}
