package finance

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a caller passes an unknown currency code.
const DefaultCurrency = money.CAD

// Round2 rounds v half away from zero to two decimals.
func Round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Percent renders a percentage with two decimals, e.g. "6.25%".
func Percent(v float64) string {
	return Round2(v).StringFixed(2) + "%"
}

// Money renders amount in the currency's display format, e.g. "$3,725.69".
func Money(amount float64, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		code = DefaultCurrency
		cur = money.GetCurrency(code)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// Line is one labelled, formatted row of a financial summary.
type Line struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary formats a result for display. Amounts use the given currency.
func (r Result) Summary(code string) []Line {
	return []Line{
		{"Offer price", Money(r.Inputs.OfferPrice, code)},
		{"Down payment", Money(r.DownPayment, code)},
		{"Loan amount", Money(r.LoanAmount, code)},
		{"Mortgage (P&I)", Money(r.MonthlyPayment, code)},
		{"Property tax", Money(r.Expenses.PropertyTax, code)},
		{"Insurance", Money(r.Expenses.Insurance, code)},
		{"Maintenance", Money(r.Expenses.Maintenance, code)},
		{"Property management", Money(r.Expenses.PropertyManagement, code)},
		{"Vacancy", Money(r.Expenses.Vacancy, code)},
		{"HOA", Money(r.Expenses.HOA, code)},
		{"Utilities", Money(r.Expenses.Utilities, code)},
		{"Total monthly cost", Money(r.TotalMonthlyCost, code)},
		{"Monthly rent", Money(r.Inputs.MonthlyRent, code)},
		{"Monthly cash flow", Money(r.MonthlyCashFlow, code)},
		{"Initial investment", Money(r.InitialInvestment, code)},
		{"Net operating income", Money(r.NetOperatingIncome, code)},
		{"Cash-on-cash return", Percent(r.CashOnCashReturn)},
		{"Cap rate", Percent(r.CapRate)},
	}
}
