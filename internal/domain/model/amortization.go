package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/domain/valueobject"
)

var (
	hundred        = decimal.NewFromInt(100)
	monthsPerYear  = decimal.NewFromInt(12)
	moneyPrecision = int32(2)
)

// Installment is one period of an amortization schedule. Amounts are exact;
// round them with StringFixed when presenting.
type Installment struct {
	PaymentDate      *time.Time
	PaymentAmount    decimal.Decimal
	PrincipalPayment decimal.Decimal
	InterestPayment  decimal.Decimal
	RemainingBalance decimal.Decimal
	PaymentNumber    int
}

// AmortizationSchedule is the full simple-interest repayment plan of a loan.
type AmortizationSchedule struct {
	MonthlyPayment decimal.Decimal
	TotalPayment   decimal.Decimal
	TotalInterest  decimal.Decimal
	Installments   []Installment
}

// ComputeSchedule builds a simple-interest schedule.
//
//	totalInterest = P * (r/100) * (n/12)
//	monthly       = (P + totalInterest) / n
//	remaining_i   = max(0, P - i*P/n)
//
// annualRatePercent is a percentage (12 means 12%). The principal portions
// sum to P and the last remaining balance is exactly zero.
func ComputeSchedule(principal, annualRatePercent decimal.Decimal, termMonths int) (AmortizationSchedule, error) {
	if _, err := valueobject.NewLoanTerm(termMonths); err != nil {
		return AmortizationSchedule{}, err
	}
	if !principal.IsPositive() {
		return AmortizationSchedule{}, fmt.Errorf("%w: principal %s", ErrInvalidAmount, principal)
	}
	if annualRatePercent.IsNegative() {
		return AmortizationSchedule{}, fmt.Errorf("%w: %s%%", ErrInvalidRate, annualRatePercent)
	}

	n := decimal.NewFromInt(int64(termMonths))
	totalInterest := principal.Mul(annualRatePercent).Mul(n).Div(hundred.Mul(monthsPerYear))
	totalPayment := principal.Add(totalInterest)
	monthlyPayment := totalPayment.Div(n)
	interestPerMonth := totalInterest.Div(n)

	installments := make([]Installment, 0, termMonths)
	previous := principal
	for i := 1; i <= termMonths; i++ {
		// Multiply before dividing so the last period lands on zero exactly.
		remaining := principal.Sub(principal.Mul(decimal.NewFromInt(int64(i))).Div(n))
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		installments = append(installments, Installment{
			PaymentNumber:    i,
			PaymentAmount:    monthlyPayment,
			PrincipalPayment: previous.Sub(remaining),
			InterestPayment:  interestPerMonth,
			RemainingBalance: remaining,
		})
		previous = remaining
	}

	return AmortizationSchedule{
		MonthlyPayment: monthlyPayment,
		TotalPayment:   totalPayment,
		TotalInterest:  totalInterest,
		Installments:   installments,
	}, nil
}

// NextDue returns the first installment that still leaves a balance owing.
func (s AmortizationSchedule) NextDue() (Installment, error) {
	for _, inst := range s.Installments {
		if inst.RemainingBalance.IsPositive() {
			return inst, nil
		}
	}
	return Installment{}, ErrNoRemainingPayments
}

// WithPaymentDates returns a copy of the schedule whose installments are
// dated monthly from issued, the first falling on issued itself.
func (s AmortizationSchedule) WithPaymentDates(issued time.Time) AmortizationSchedule {
	out := s
	out.Installments = make([]Installment, len(s.Installments))
	for i, inst := range s.Installments {
		due := InstallmentDueDate(issued, inst.PaymentNumber)
		inst.PaymentDate = &due
		out.Installments[i] = inst
	}
	return out
}

// InstallmentDueDate is the date installment paymentNumber falls due for a
// loan issued on issued.
func InstallmentDueDate(issued time.Time, paymentNumber int) time.Time {
	return AddMonths(issued, paymentNumber-1)
}

// AddMonths moves t forward n calendar months. A day past the end of the
// target month is clamped to its last day, so Jan 31 plus one month is the
// last day of February.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// RoundMoney rounds an amount to cents for presentation.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPrecision)
}
