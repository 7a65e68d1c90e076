package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/pkg/auth"
)

// UseCase is the shape shared by every application use case.
type UseCase[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// UseCases groups the operations the handler exposes.
type UseCases struct {
	RegisterInstitution    UseCase[dto.RegisterInstitutionRequest, dto.InstitutionResponse]
	RegisterBorrower       UseCase[dto.RegisterBorrowerRequest, dto.BorrowerResponse]
	ComputeSchedule        UseCase[dto.ComputeScheduleRequest, dto.ScheduleResponse]
	SubmitLoanApplication  UseCase[dto.SubmitLoanApplicationRequest, dto.LoanResponse]
	ReviewLoanApplication  UseCase[dto.ReviewLoanApplicationRequest, dto.LoanResponse]
	GetLoan                UseCase[dto.GetLoanRequest, dto.LoanResponse]
	SubmitRepayment        UseCase[dto.SubmitRepaymentRequest, dto.RepaymentResponse]
	VerifyRepayment        UseCase[dto.VerifyRepaymentRequest, dto.VerifyRepaymentResponse]
	ListLoanRepayments     UseCase[dto.ListLoanRepaymentsRequest, []dto.RepaymentResponse]
	RecordCreditHistory    UseCase[dto.RecordCreditHistoryRequest, dto.CreditRecordResponse]
	AggregateCreditHistory UseCase[dto.AggregateCreditHistoryRequest, dto.AggregateCreditHistoryResponse]
	GetCreditHistory       UseCase[dto.GetCreditHistoryRequest, dto.CreditProfileResponse]
	GetCreditHistoryStats  UseCase[dto.GetCreditHistoryStatsRequest, dto.CreditHistoryStatsResponse]
}

// Compile-time assertion that MFIHandler implements MFIServiceServer.
var _ MFIServiceServer = (*MFIHandler)(nil)

// MFIHandler implements MFIServiceServer on top of the application layer.
type MFIHandler struct {
	uc     UseCases
	logger *slog.Logger
}

// NewMFIHandler creates the handler.
func NewMFIHandler(uc UseCases, logger *slog.Logger) *MFIHandler {
	return &MFIHandler{uc: uc, logger: logger}
}

// requireRole checks that the caller has at least one of the given roles.
func requireRole(ctx context.Context, roles ...string) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	for _, role := range roles {
		if claims.HasRole(role) {
			return claims, nil
		}
	}
	return nil, status.Error(codes.PermissionDenied, "insufficient permissions")
}

// actorFromClaims resolves the caller once: institution staff when the
// token names an institution and a staff role, otherwise the borrower the
// token names.
func actorFromClaims(claims *auth.Claims) (model.Actor, error) {
	if claims.InstitutionID != "" {
		for _, role := range auth.StaffRoles {
			if claims.HasRole(role) {
				return model.InstitutionStaff{InstitutionID: claims.InstitutionID, UserID: claims.UserID}, nil
			}
		}
	}
	if claims.BorrowerID != "" && claims.HasRole(auth.RoleBorrower) {
		return model.BorrowerUser{BorrowerID: claims.BorrowerID, UserID: claims.UserID}, nil
	}
	return nil, status.Error(codes.PermissionDenied, "token does not identify an institution or a borrower")
}

func resolveActor(ctx context.Context, roles ...string) (model.Actor, error) {
	claims, err := requireRole(ctx, roles...)
	if err != nil {
		return nil, err
	}
	return actorFromClaims(claims)
}

var (
	anyRole     = append([]string{auth.RoleBorrower}, auth.StaffRoles...)
	lenderRoles = []string{auth.RoleLoanOfficer, auth.RoleMFIAdmin}
	creditRoles = []string{auth.RoleCreditAnalyst, auth.RoleMFIAdmin, auth.RoleSystemAdmin}
)

// RegisterInstitution adds an institution. System administrators only.
func (h *MFIHandler) RegisterInstitution(ctx context.Context, req *RegisterInstitutionRequest) (*InstitutionMsg, error) {
	claims, err := requireRole(ctx, auth.RoleSystemAdmin)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.uc.RegisterInstitution.Execute(ctx, dto.RegisterInstitutionRequest{
		RegisteredBy:       claims.UserID,
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		Location:           req.Location,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &InstitutionMsg{
		ID:                 result.ID,
		Name:               result.Name,
		RegistrationNumber: result.RegistrationNumber,
		Location:           result.Location,
		LocationCode:       result.LocationCode,
		Active:             result.Active,
		CreatedAt:          result.CreatedAt,
	}, nil
}

// RegisterBorrower onboards a borrower at the caller's institution.
func (h *MFIHandler) RegisterBorrower(ctx context.Context, req *RegisterBorrowerRequest) (*BorrowerMsg, error) {
	actor, err := resolveActor(ctx, lenderRoles...)
	if err != nil {
		return nil, err
	}
	if req == nil || req.NationalID == "" {
		return nil, status.Error(codes.InvalidArgument, "national_id is required")
	}

	result, err := h.uc.RegisterBorrower.Execute(ctx, dto.RegisterBorrowerRequest{
		Actor:      actor,
		NationalID: req.NationalID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		UserID:     req.UserID,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &BorrowerMsg{
		ID:            result.ID,
		NationalID:    result.NationalID,
		FullName:      result.FullName,
		Phone:         result.Phone,
		InstitutionID: result.InstitutionID,
		UserID:        result.UserID,
		CreatedAt:     result.CreatedAt,
	}, nil
}

// ComputeSchedule previews an amortization schedule.
func (h *MFIHandler) ComputeSchedule(ctx context.Context, req *ComputeScheduleRequest) (*ScheduleMsg, error) {
	if _, err := requireRole(ctx, anyRole...); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	principal, err := parseDecimal("principal", req.Principal)
	if err != nil {
		return nil, err
	}
	rate, err := parseDecimal("annual_rate_percent", req.AnnualRatePercent)
	if err != nil {
		return nil, err
	}
	in := dto.ComputeScheduleRequest{
		Principal:         principal,
		AnnualRatePercent: rate,
		TermMonths:        int(req.TermMonths),
	}
	if req.IssueDate != "" {
		issued, err := time.Parse(time.DateOnly, req.IssueDate)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid issue_date: %v", err)
		}
		in.IssueDate = &issued
	}

	result, err := h.uc.ComputeSchedule.Execute(ctx, in)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toScheduleMsg(result), nil
}

// SubmitLoanApplication files a loan application.
func (h *MFIHandler) SubmitLoanApplication(ctx context.Context, req *SubmitLoanApplicationRequest) (*LoanMsg, error) {
	actor, err := resolveActor(ctx, append([]string{auth.RoleBorrower}, lenderRoles...)...)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	var rate decimal.Decimal
	if req.InterestRate != "" {
		if rate, err = parseDecimal("interest_rate", req.InterestRate); err != nil {
			return nil, err
		}
	}

	result, err := h.uc.SubmitLoanApplication.Execute(ctx, dto.SubmitLoanApplicationRequest{
		Actor:         actor,
		BorrowerID:    req.BorrowerID,
		InstitutionID: req.InstitutionID,
		Amount:        amount,
		InterestRate:  rate,
		TermMonths:    int(req.TermMonths),
		Purpose:       req.Purpose,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toLoanMsg(result), nil
}

// ReviewLoanApplication approves or rejects a pending loan.
func (h *MFIHandler) ReviewLoanApplication(ctx context.Context, req *ReviewLoanApplicationRequest) (*LoanMsg, error) {
	actor, err := resolveActor(ctx, lenderRoles...)
	if err != nil {
		return nil, err
	}
	if req == nil || req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	result, err := h.uc.ReviewLoanApplication.Execute(ctx, dto.ReviewLoanApplicationRequest{
		Actor:   actor,
		LoanID:  req.LoanID,
		Approve: req.Approve,
		Reason:  req.Reason,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toLoanMsg(result), nil
}

// GetLoan retrieves a loan.
func (h *MFIHandler) GetLoan(ctx context.Context, req *GetLoanRequest) (*LoanMsg, error) {
	actor, err := resolveActor(ctx, anyRole...)
	if err != nil {
		return nil, err
	}
	if req == nil || req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	result, err := h.uc.GetLoan.Execute(ctx, dto.GetLoanRequest{Actor: actor, LoanID: req.LoanID})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toLoanMsg(result), nil
}

// SubmitRepayment records a borrower's payment for verification.
func (h *MFIHandler) SubmitRepayment(ctx context.Context, req *SubmitRepaymentRequest) (*RepaymentMsg, error) {
	actor, err := resolveActor(ctx, auth.RoleBorrower)
	if err != nil {
		return nil, err
	}
	if req == nil || req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}
	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.SubmitRepayment.Execute(ctx, dto.SubmitRepaymentRequest{
		Actor:         actor,
		LoanID:        req.LoanID,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toRepaymentMsg(result), nil
}

// VerifyRepayment confirms a submitted repayment.
func (h *MFIHandler) VerifyRepayment(ctx context.Context, req *VerifyRepaymentRequest) (*VerifyRepaymentResponse, error) {
	actor, err := resolveActor(ctx, lenderRoles...)
	if err != nil {
		return nil, err
	}
	if req == nil || req.RepaymentID == "" {
		return nil, status.Error(codes.InvalidArgument, "repayment_id is required")
	}

	result, err := h.uc.VerifyRepayment.Execute(ctx, dto.VerifyRepaymentRequest{
		Actor:       actor,
		RepaymentID: req.RepaymentID,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &VerifyRepaymentResponse{
		Repayment:  toRepaymentMsg(result.Repayment),
		LoanStatus: result.LoanStatus,
	}, nil
}

// ListLoanRepayments lists a loan's repayments with derived statuses.
func (h *MFIHandler) ListLoanRepayments(ctx context.Context, req *ListLoanRepaymentsRequest) (*ListLoanRepaymentsResponse, error) {
	actor, err := resolveActor(ctx, anyRole...)
	if err != nil {
		return nil, err
	}
	if req == nil || req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	result, err := h.uc.ListLoanRepayments.Execute(ctx, dto.ListLoanRepaymentsRequest{Actor: actor, LoanID: req.LoanID})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	resp := &ListLoanRepaymentsResponse{Repayments: make([]*RepaymentMsg, 0, len(result))}
	for _, r := range result {
		resp.Repayments = append(resp.Repayments, toRepaymentMsg(r))
	}
	return resp, nil
}

// RecordCreditHistory files a credit record for one of the caller's
// borrowers.
func (h *MFIHandler) RecordCreditHistory(ctx context.Context, req *RecordCreditHistoryRequest) (*CreditRecordMsg, error) {
	actor, err := resolveActor(ctx, creditRoles...)
	if err != nil {
		return nil, err
	}
	if req == nil || req.BorrowerID == "" {
		return nil, status.Error(codes.InvalidArgument, "borrower_id is required")
	}
	borrowed, err := parseDecimal("total_amount_borrowed", req.TotalAmountBorrowed)
	if err != nil {
		return nil, err
	}
	repaid, err := parseDecimal("total_amount_repaid", req.TotalAmountRepaid)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.RecordCreditHistory.Execute(ctx, dto.RecordCreditHistoryRequest{
		Actor:               actor,
		BorrowerID:          req.BorrowerID,
		TotalAmountBorrowed: borrowed,
		TotalAmountRepaid:   repaid,
		RiskFactors:         req.RiskFactors,
		CreditScore:         int(req.CreditScore),
		TotalLoans:          int(req.TotalLoans),
		ActiveLoans:         int(req.ActiveLoans),
		OnTimePayments:      int(req.OnTimePayments),
		LatePayments:        int(req.LatePayments),
		DefaultedPayments:   int(req.DefaultedPayments),
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &CreditRecordMsg{
		ID:            result.ID,
		InstitutionID: result.InstitutionID,
		BorrowerID:    result.BorrowerID,
		NationalID:    result.NationalID,
		CreditScore:   int32(result.CreditScore), //nolint:gosec
		RecordedAt:    result.RecordedAt,
	}, nil
}

// AggregateCreditHistory rebuilds a consolidated profile on demand. Staff
// may only aggregate in the district of their own institution unless they
// hold the system administrator role.
func (h *MFIHandler) AggregateCreditHistory(ctx context.Context, req *AggregateCreditHistoryRequest) (*AggregateCreditHistoryResponse, error) {
	claims, err := requireRole(ctx, creditRoles...)
	if err != nil {
		return nil, err
	}
	if req == nil || req.BorrowerID == "" {
		return nil, status.Error(codes.InvalidArgument, "borrower_id is required")
	}
	institutionID := req.InstitutionID
	if !claims.HasRole(auth.RoleSystemAdmin) {
		if institutionID != "" && institutionID != claims.InstitutionID {
			return nil, status.Error(codes.PermissionDenied, "cannot aggregate for another institution")
		}
		institutionID = claims.InstitutionID
	}

	result, err := h.uc.AggregateCreditHistory.Execute(ctx, dto.AggregateCreditHistoryRequest{
		BorrowerID:    req.BorrowerID,
		NationalID:    req.NationalID,
		InstitutionID: institutionID,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	if result.Profile == nil {
		return &AggregateCreditHistoryResponse{}, nil
	}
	return &AggregateCreditHistoryResponse{
		Aggregated:               true,
		LocationCode:             result.Profile.LocationCode,
		AggregatedCreditScore:    int32(result.Profile.AggregatedCreditScore), //nolint:gosec
		ContributingInstitutions: int32(len(result.Profile.Contributors)),     //nolint:gosec
	}, nil
}

// GetCreditHistory reads a consolidated profile; the read is audited.
func (h *MFIHandler) GetCreditHistory(ctx context.Context, req *GetCreditHistoryRequest) (*CreditProfileMsg, error) {
	actor, err := resolveActor(ctx, anyRole...)
	if err != nil {
		return nil, err
	}
	if req == nil || req.NationalID == "" {
		return nil, status.Error(codes.InvalidArgument, "national_id is required")
	}
	if req.Purpose == "" {
		return nil, status.Error(codes.InvalidArgument, "purpose is required")
	}

	result, err := h.uc.GetCreditHistory.Execute(ctx, dto.GetCreditHistoryRequest{
		Actor:      actor,
		NationalID: req.NationalID,
		Purpose:    req.Purpose,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toCreditProfileMsg(result), nil
}

// GetCreditHistoryStats summarises the profiles on file.
func (h *MFIHandler) GetCreditHistoryStats(ctx context.Context, _ *GetCreditHistoryStatsRequest) (*CreditHistoryStatsMsg, error) {
	actor, err := resolveActor(ctx, creditRoles...)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.GetCreditHistoryStats.Execute(ctx, dto.GetCreditHistoryStatsRequest{Actor: actor})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	byLocation := make(map[string]int32, len(result.ProfilesByLocation))
	for loc, n := range result.ProfilesByLocation {
		byLocation[loc] = int32(n) //nolint:gosec
	}
	return &CreditHistoryStatsMsg{
		ProfilesByLocation: byLocation,
		AverageCreditScore: result.AverageCreditScore,
		UniqueNationalIDs:  int32(result.UniqueNationalIDs), //nolint:gosec
		TotalProfiles:      int32(result.TotalProfiles),     //nolint:gosec
		TotalActiveLoans:   int32(result.TotalActiveLoans),  //nolint:gosec
	}, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "invalid %s: %v", field, err)
	}
	return d, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toScheduleMsg(r dto.ScheduleResponse) *ScheduleMsg {
	msg := &ScheduleMsg{
		MonthlyPayment: money(r.MonthlyPayment),
		TotalPayment:   money(r.TotalPayment),
		TotalInterest:  money(r.TotalInterest),
		Installments:   make([]*InstallmentMsg, 0, len(r.Installments)),
	}
	for _, in := range r.Installments {
		msg.Installments = append(msg.Installments, &InstallmentMsg{
			PaymentNumber:    int32(in.PaymentNumber), //nolint:gosec
			PaymentAmount:    money(in.PaymentAmount),
			PrincipalPayment: money(in.PrincipalPayment),
			InterestPayment:  money(in.InterestPayment),
			RemainingBalance: money(in.RemainingBalance),
			PaymentDate:      in.PaymentDate,
		})
	}
	return msg
}

func toLoanMsg(r dto.LoanResponse) *LoanMsg {
	return &LoanMsg{
		ID:             r.ID,
		InstitutionID:  r.InstitutionID,
		BorrowerID:     r.BorrowerID,
		Amount:         money(r.Amount),
		InterestRate:   r.InterestRate.String(),
		AmountRepaid:   money(r.AmountRepaid),
		TermMonths:     int32(r.TermMonths), //nolint:gosec
		Purpose:        r.Purpose,
		Status:         r.Status,
		Notes:          r.Notes,
		DecisionReason: r.DecisionReason,
		ReviewedBy:     r.ReviewedBy,
		IssuedDate:     r.IssuedDate,
		DueDate:        r.DueDate,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toRepaymentMsg(r dto.RepaymentResponse) *RepaymentMsg {
	return &RepaymentMsg{
		ID:              r.ID,
		LoanID:          r.LoanID,
		Amount:          money(r.Amount),
		RemainingAmount: money(r.RemainingAmount),
		DueDate:         r.DueDate,
		PaymentDate:     r.PaymentDate,
		PaymentMethod:   r.PaymentMethod,
		Reference:       r.Reference,
		Status:          r.Status,
		VerifiedBy:      r.VerifiedBy,
	}
}

func toCreditProfileMsg(r dto.CreditProfileResponse) *CreditProfileMsg {
	msg := &CreditProfileMsg{
		NationalID:            r.NationalID,
		LocationCode:          r.LocationCode,
		BorrowerID:            r.BorrowerID,
		AggregatedCreditScore: int32(r.AggregatedCreditScore), //nolint:gosec
		TotalLoans:            int32(r.TotalLoans),            //nolint:gosec
		ActiveLoans:           int32(r.ActiveLoans),           //nolint:gosec
		TotalAmountBorrowed:   money(r.TotalAmountBorrowed),
		TotalAmountRepaid:     money(r.TotalAmountRepaid),
		OnTimePayments:        int32(r.OnTimePayments),    //nolint:gosec
		LatePayments:          int32(r.LatePayments),      //nolint:gosec
		DefaultedPayments:     int32(r.DefaultedPayments), //nolint:gosec
		RiskFactors:           r.RiskFactors,
		UpdatedAt:             r.UpdatedAt,
	}
	for _, c := range r.Contributors {
		msg.Contributors = append(msg.Contributors, &ContributorMsg{ID: c.ID, Name: c.Name, Location: c.Location})
	}
	for _, e := range r.AuditLog {
		msg.AuditLog = append(msg.AuditLog, &AuditEntryMsg{
			Action:        e.Action,
			InstitutionID: e.InstitutionID,
			UserID:        e.UserID,
			Purpose:       e.Purpose,
			Timestamp:     e.Timestamp,
		})
	}
	return msg
}
