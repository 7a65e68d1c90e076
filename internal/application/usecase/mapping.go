package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/model"
)

func toScheduleResponse(s model.AmortizationSchedule) dto.ScheduleResponse {
	out := dto.ScheduleResponse{
		MonthlyPayment: s.MonthlyPayment,
		TotalPayment:   s.TotalPayment,
		TotalInterest:  s.TotalInterest,
		Installments:   make([]dto.InstallmentResponse, 0, len(s.Installments)),
	}
	for _, inst := range s.Installments {
		out.Installments = append(out.Installments, dto.InstallmentResponse{
			PaymentNumber:    inst.PaymentNumber,
			PaymentDate:      inst.PaymentDate,
			PaymentAmount:    inst.PaymentAmount,
			PrincipalPayment: inst.PrincipalPayment,
			InterestPayment:  inst.InterestPayment,
			RemainingBalance: inst.RemainingBalance,
		})
	}
	return out
}

func toLoanResponse(l model.Loan, repaid decimal.Decimal) dto.LoanResponse {
	return dto.LoanResponse{
		ID:             l.ID(),
		InstitutionID:  l.InstitutionID(),
		BorrowerID:     l.BorrowerID(),
		Amount:         l.Amount(),
		InterestRate:   l.InterestRate(),
		TermMonths:     l.TermMonths(),
		Purpose:        l.Purpose().String(),
		Status:         l.Status().String(),
		Notes:          l.Notes(),
		DecisionReason: l.DecisionReason(),
		ReviewedBy:     l.ReviewedBy(),
		IssuedDate:     l.IssuedDate(),
		DueDate:        l.DueDate(),
		AmountRepaid:   repaid,
		CreatedAt:      l.CreatedAt(),
		UpdatedAt:      l.UpdatedAt(),
	}
}

func toRepaymentResponse(r model.Repayment) dto.RepaymentResponse {
	return dto.RepaymentResponse{
		ID:              r.ID(),
		LoanID:          r.LoanID(),
		Amount:          r.Amount(),
		RemainingAmount: r.RemainingAmount(),
		DueDate:         r.DueDate(),
		PaymentDate:     r.PaymentDate(),
		PaymentMethod:   r.PaymentMethod(),
		Reference:       r.Reference(),
		Status:          r.Status().String(),
		VerifiedBy:      r.VerifiedBy(),
	}
}

func toProfileResponse(p model.ConsolidatedCreditProfile) dto.CreditProfileResponse {
	t := p.Totals()
	out := dto.CreditProfileResponse{
		NationalID:            p.NationalID(),
		LocationCode:          p.LocationCode(),
		BorrowerID:            p.BorrowerID(),
		AggregatedCreditScore: t.AggregatedCreditScore,
		TotalLoans:            t.TotalLoans,
		ActiveLoans:           t.ActiveLoans,
		TotalAmountBorrowed:   t.TotalAmountBorrowed,
		TotalAmountRepaid:     t.TotalAmountRepaid,
		OnTimePayments:        t.OnTimePayments,
		LatePayments:          t.LatePayments,
		DefaultedPayments:     t.DefaultedPayments,
		RiskFactors:           t.RiskFactors,
		UpdatedAt:             p.UpdatedAt(),
	}
	for _, c := range p.Contributors() {
		out.Contributors = append(out.Contributors, dto.ContributorResponse{ID: c.ID, Name: c.Name, Location: c.Location})
	}
	for _, e := range p.AuditLog() {
		entry := dto.AuditEntryResponse{
			Action:        e.Action(),
			InstitutionID: e.Institution(),
			Timestamp:     e.At(),
		}
		if q, ok := e.(model.AccessQuery); ok {
			entry.UserID = q.UserID
			entry.Purpose = q.Purpose
		}
		out.AuditLog = append(out.AuditLog, entry)
	}
	return out
}

func toInstitutionResponse(i model.Institution, locationCode string) dto.InstitutionResponse {
	return dto.InstitutionResponse{
		ID:                 i.ID(),
		Name:               i.Name(),
		RegistrationNumber: i.RegistrationNumber(),
		Location:           i.Location(),
		LocationCode:       locationCode,
		Active:             i.IsActive(),
		CreatedAt:          i.CreatedAt(),
	}
}

func toBorrowerResponse(b model.Borrower) dto.BorrowerResponse {
	return dto.BorrowerResponse{
		ID:            b.ID(),
		NationalID:    b.NationalID(),
		FullName:      b.FullName(),
		Phone:         b.Phone(),
		InstitutionID: b.InstitutionID(),
		UserID:        b.UserID(),
		CreatedAt:     b.CreatedAt(),
	}
}
