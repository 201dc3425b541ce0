// Package finance evaluates the mortgage and operating economics of a single
// property purchase. Results keep full float precision; rounding happens only
// in the presentation helpers of format.go.
package finance

import (
	"math"

	"github.com/gta-invest/propertymap/pkg/model"
)

// Assumptions used when a caller does not override them.
const (
	DefaultDownPaymentPercent = 20
	DefaultInterestRate       = 7
	DefaultLoanTermYears      = 30
	DefaultRehabCosts         = 25000
	DefaultInsuranceAnnual    = 1000

	ClosingCostRate        = 0.02
	InsurancePercentRate   = 0.001
	MaintenanceRate        = 0.01
	PropertyManagementRate = 0.08
	VacancyRate            = 0.05
)

// Insurance estimation modes.
const (
	InsuranceFixed   = "fixed"   // DefaultInsuranceAnnual per year
	InsurancePercent = "percent" // InsurancePercentRate of the offer price per year
)

// Inputs are the purchase assumptions for one evaluation.
type Inputs struct {
	OfferPrice             float64 `json:"offerPrice" form:"offerPrice" validate:"gte=0"`
	RehabCosts             float64 `json:"rehabCosts" form:"rehabCosts" validate:"gte=0"`
	DownPaymentPercent     float64 `json:"downPaymentPercent" form:"downPaymentPercent" validate:"gte=0,lte=100"`
	InterestRate           float64 `json:"interestRate" form:"interestRate" validate:"gte=0"`
	LoanTermYears          int     `json:"loanTermYears" form:"loanTermYears" validate:"gte=0"`
	MonthlyRent            float64 `json:"monthlyRent" form:"monthlyRent" validate:"gte=0"`
	PropertyTaxRatePercent float64 `json:"propertyTaxRatePercent" form:"propertyTaxRatePercent" validate:"gte=0"`

	// InsuranceAnnual overrides the insurance estimate when set.
	InsuranceAnnual  *float64 `json:"insuranceAnnual,omitempty" form:"insuranceAnnual" validate:"omitempty,gte=0"`
	InsuranceMode    string   `json:"insuranceMode,omitempty" form:"insuranceMode" validate:"omitempty,oneof=fixed percent"`
	HOAMonthly       float64  `json:"hoaMonthly,omitempty" form:"hoaMonthly" validate:"gte=0"`
	UtilitiesMonthly float64  `json:"utilitiesMonthly,omitempty" form:"utilitiesMonthly" validate:"gte=0"`
}

// InputsForProperty returns the default assumptions for evaluating p at its list price.
func InputsForProperty(p model.Property) Inputs {
	return Inputs{
		OfferPrice:             p.ListPrice,
		RehabCosts:             DefaultRehabCosts,
		DownPaymentPercent:     DefaultDownPaymentPercent,
		InterestRate:           DefaultInterestRate,
		LoanTermYears:          DefaultLoanTermYears,
		MonthlyRent:            p.MonthlyRent,
		PropertyTaxRatePercent: p.PropertyTax,
	}
}

// OfferRange is the negotiable offer window around a list price (80% to 110%).
func OfferRange(listPrice float64) (low, high float64) {
	return listPrice * 0.8, listPrice * 1.1
}

// Expenses is the monthly operating expense breakdown. Debt service is not an expense.
type Expenses struct {
	PropertyTax        float64 `json:"propertyTax"`
	Insurance          float64 `json:"insurance"`
	Maintenance        float64 `json:"maintenance"`
	PropertyManagement float64 `json:"propertyManagement"`
	Vacancy            float64 `json:"vacancy"`
	HOA                float64 `json:"hoa"`
	Utilities          float64 `json:"utilities"`
}

// Total sums every expense line.
func (e Expenses) Total() float64 {
	return e.PropertyTax + e.Insurance + e.Maintenance + e.PropertyManagement + e.Vacancy + e.HOA + e.Utilities
}

// Result is the full financial projection of a purchase.
type Result struct {
	Inputs             Inputs   `json:"inputs"`
	DownPayment        float64  `json:"downPayment"`
	LoanAmount         float64  `json:"loanAmount"`
	MonthlyPayment     float64  `json:"monthlyPayment"`
	Expenses           Expenses `json:"expenses"`
	MonthlyExpenses    float64  `json:"monthlyExpenses"`
	TotalMonthlyCost   float64  `json:"totalMonthlyCost"`
	MonthlyCashFlow    float64  `json:"monthlyCashFlow"`
	AnnualCashFlow     float64  `json:"annualCashFlow"`
	ClosingCosts       float64  `json:"closingCosts"`
	InitialInvestment  float64  `json:"initialInvestment"`
	CashOnCashReturn   float64  `json:"cashOnCashReturn"`
	NetOperatingIncome float64  `json:"netOperatingIncome"`
	CapRate            float64  `json:"capRate"`
}

// MonthlyPayment is the fixed principal-and-interest payment of an amortizing loan.
// A zero rate repays the principal evenly; a non-positive term yields 0.
func MonthlyPayment(loanAmount, annualRatePercent float64, termYears int) float64 {
	n := float64(termYears * 12)
	if n <= 0 {
		return 0
	}
	r := annualRatePercent / 100 / 12
	if r == 0 {
		return loanAmount / n
	}
	growth := math.Pow(1+r, n)
	return loanAmount * r * growth / (growth - 1)
}

// Compute evaluates the purchase described by in. Ratios whose denominator is
// zero are reported as 0.
func Compute(in Inputs) Result {
	downPayment := in.OfferPrice * in.DownPaymentPercent / 100
	loanAmount := in.OfferPrice * (1 - in.DownPaymentPercent/100)
	payment := MonthlyPayment(loanAmount, in.InterestRate, in.LoanTermYears)

	expenses := Expenses{
		PropertyTax:        in.OfferPrice * in.PropertyTaxRatePercent / 100 / 12,
		Insurance:          insuranceAnnual(in) / 12,
		Maintenance:        in.OfferPrice * MaintenanceRate / 12,
		PropertyManagement: in.MonthlyRent * PropertyManagementRate,
		Vacancy:            in.MonthlyRent * VacancyRate,
		HOA:                in.HOAMonthly,
		Utilities:          in.UtilitiesMonthly,
	}
	monthlyExpenses := expenses.Total()
	totalCost := payment + monthlyExpenses
	cashFlow := in.MonthlyRent - totalCost

	closing := in.OfferPrice * ClosingCostRate
	initial := downPayment + in.RehabCosts + closing
	noi := in.MonthlyRent*12 - monthlyExpenses*12

	return Result{
		Inputs:             in,
		DownPayment:        downPayment,
		LoanAmount:         loanAmount,
		MonthlyPayment:     payment,
		Expenses:           expenses,
		MonthlyExpenses:    monthlyExpenses,
		TotalMonthlyCost:   totalCost,
		MonthlyCashFlow:    cashFlow,
		AnnualCashFlow:     cashFlow * 12,
		ClosingCosts:       closing,
		InitialInvestment:  initial,
		CashOnCashReturn:   percentOf(cashFlow*12, initial),
		NetOperatingIncome: noi,
		CapRate:            percentOf(noi, in.OfferPrice),
	}
}

func insuranceAnnual(in Inputs) float64 {
	if in.InsuranceAnnual != nil {
		return *in.InsuranceAnnual
	}
	if in.InsuranceMode == InsurancePercent {
		return in.OfferPrice * InsurancePercentRate
	}
	return DefaultInsuranceAnnual
}

func percentOf(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	v := num / den * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
