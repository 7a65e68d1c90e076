package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/valueobject"
	"github.com/letsema/mfi/pkg/testutil"
)

// --- Mock implementations ---

type mockLoanRepository struct {
	findByIDFunc func(ctx context.Context, id string) (model.Loan, error)
	saveFunc     func(ctx context.Context, loan model.Loan) error
	savedLoans   []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, loan); err != nil {
			return err
		}
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, fmt.Errorf("%w: %s", model.ErrLoanNotFound, id)
}

func (m *mockLoanRepository) FindByBorrowerID(_ context.Context, _ string) ([]model.Loan, error) {
	return nil, nil
}

type mockRepaymentRepository struct {
	findByIDFunc     func(ctx context.Context, id string) (model.Repayment, error)
	findByLoanIDFunc func(ctx context.Context, loanID string) ([]model.Repayment, error)
	saveFunc         func(ctx context.Context, r model.Repayment) error
	savedRepayments  []model.Repayment
}

func (m *mockRepaymentRepository) Save(ctx context.Context, r model.Repayment) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, r); err != nil {
			return err
		}
	}
	m.savedRepayments = append(m.savedRepayments, r)
	return nil
}

func (m *mockRepaymentRepository) FindByID(ctx context.Context, id string) (model.Repayment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Repayment{}, fmt.Errorf("%w: %s", model.ErrRepaymentNotFound, id)
}

func (m *mockRepaymentRepository) FindByLoanID(ctx context.Context, loanID string) ([]model.Repayment, error) {
	if m.findByLoanIDFunc != nil {
		return m.findByLoanIDFunc(ctx, loanID)
	}
	return nil, nil
}

type mockLendingTx struct {
	loans      port.LoanRepository
	repayments port.RepaymentRepository
}

func (m *mockLendingTx) WithinTx(
	_ context.Context,
	fn func(loans port.LoanRepository, repayments port.RepaymentRepository) error,
) error {
	return fn(m.loans, m.repayments)
}

type mockInstitutionRepository struct {
	institutions map[string]model.Institution
	saved        []model.Institution
	saveErr      error
}

func newMockInstitutionRepository(insts ...model.Institution) *mockInstitutionRepository {
	m := &mockInstitutionRepository{institutions: map[string]model.Institution{}}
	for _, i := range insts {
		m.institutions[i.ID()] = i
	}
	return m
}

func (m *mockInstitutionRepository) Save(_ context.Context, inst model.Institution) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, inst)
	m.institutions[inst.ID()] = inst
	return nil
}

func (m *mockInstitutionRepository) FindByID(_ context.Context, id string) (model.Institution, error) {
	i, ok := m.institutions[id]
	if !ok {
		return model.Institution{}, fmt.Errorf("%w: %s", model.ErrInstitutionNotFound, id)
	}
	return i, nil
}

func (m *mockInstitutionRepository) FindByIDs(_ context.Context, ids []string) ([]model.Institution, error) {
	var out []model.Institution
	for _, id := range ids {
		if i, ok := m.institutions[id]; ok {
			out = append(out, i)
		}
	}
	return out, nil
}

type mockBorrowerRepository struct {
	borrowers map[string]model.Borrower
	saved     []model.Borrower
	saveErr   error
}

func newMockBorrowerRepository(bs ...model.Borrower) *mockBorrowerRepository {
	m := &mockBorrowerRepository{borrowers: map[string]model.Borrower{}}
	for _, b := range bs {
		m.borrowers[b.ID()] = b
	}
	return m
}

func (m *mockBorrowerRepository) Save(_ context.Context, b model.Borrower) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, b)
	m.borrowers[b.ID()] = b
	return nil
}

func (m *mockBorrowerRepository) FindByID(_ context.Context, id string) (model.Borrower, error) {
	b, ok := m.borrowers[id]
	if !ok {
		return model.Borrower{}, fmt.Errorf("%w: %s", model.ErrBorrowerNotFound, id)
	}
	return b, nil
}

func (m *mockBorrowerRepository) FindByNationalID(_ context.Context, nationalID string) ([]model.Borrower, error) {
	var out []model.Borrower
	for _, b := range m.borrowers {
		if b.NationalID() == nationalID {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockCreditRecordStore struct {
	records    []model.CreditRecord
	insertFunc func(ctx context.Context, r model.CreditRecord) error
}

func (m *mockCreditRecordStore) Insert(ctx context.Context, r model.CreditRecord) error {
	if m.insertFunc != nil {
		if err := m.insertFunc(ctx, r); err != nil {
			return err
		}
	}
	m.records = append(m.records, r)
	return nil
}

func (m *mockCreditRecordStore) FindByBorrowerIDs(_ context.Context, borrowerIDs []string) ([]model.CreditRecord, error) {
	var out []model.CreditRecord
	for _, r := range m.records {
		for _, id := range borrowerIDs {
			if r.BorrowerID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

type mockCreditProfileStore struct {
	profiles      map[string]model.ConsolidatedCreditProfile
	saveFunc      func(ctx context.Context, p model.ConsolidatedCreditProfile) error
	statsFunc     func(ctx context.Context) (model.CreditHistoryStats, error)
	savedProfiles []model.ConsolidatedCreditProfile
	appended      []model.AuditEntry
}

func newMockCreditProfileStore() *mockCreditProfileStore {
	return &mockCreditProfileStore{profiles: map[string]model.ConsolidatedCreditProfile{}}
}

func (m *mockCreditProfileStore) Find(_ context.Context, nationalID, locationCode string) (model.ConsolidatedCreditProfile, error) {
	p, ok := m.profiles[event.ProfileAggregateID(nationalID, locationCode)]
	if !ok {
		return model.ConsolidatedCreditProfile{}, model.ErrProfileNotFound
	}
	return p, nil
}

// Save stores the profile as a reload would see it: version bumped and
// pending audit entries folded into the log.
func (m *mockCreditProfileStore) Save(ctx context.Context, p model.ConsolidatedCreditProfile) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, p); err != nil {
			return err
		}
	}
	m.savedProfiles = append(m.savedProfiles, p)
	m.profiles[event.ProfileAggregateID(p.NationalID(), p.LocationCode())] = model.ReconstructConsolidatedCreditProfile(
		p.NationalID(), p.LocationCode(), p.BorrowerID(), p.Totals(),
		p.Contributors(), p.Snapshots(), p.AuditLog(), p.Version()+1, p.CreatedAt(), p.UpdatedAt(),
	)
	return nil
}

func (m *mockCreditProfileStore) AppendAudit(_ context.Context, nationalID, locationCode string, entries ...model.AuditEntry) error {
	key := event.ProfileAggregateID(nationalID, locationCode)
	p, ok := m.profiles[key]
	if !ok {
		return model.ErrProfileNotFound
	}
	m.appended = append(m.appended, entries...)
	m.profiles[key] = model.ReconstructConsolidatedCreditProfile(
		p.NationalID(), p.LocationCode(), p.BorrowerID(), p.Totals(),
		p.Contributors(), p.Snapshots(), append(p.AuditLog(), entries...), p.Version(), p.CreatedAt(), p.UpdatedAt(),
	)
	return nil
}

func (m *mockCreditProfileStore) Stats(ctx context.Context) (model.CreditHistoryStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return model.CreditHistoryStats{}, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	if m.publishFunc != nil {
		if err := m.publishFunc(ctx, events...); err != nil {
			return err
		}
	}
	m.publishedEvents = append(m.publishedEvents, events...)
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	out := make([]string, 0, len(m.publishedEvents))
	for _, e := range m.publishedEvents {
		out = append(out, e.EventType())
	}
	return out
}

// --- Fixtures ---

var (
	fixtureTime = time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	maseruInst  = model.ReconstructInstitution(testutil.InstitutionMaseru, "Maseru Microfinance", "REG-001", "Maseru", true, fixtureTime)
	maseru2Inst = model.ReconstructInstitution(testutil.InstitutionMaseru2, "Kingsway Lenders", "REG-002", "Kingsway, Maseru", true, fixtureTime)
	leribeInst  = model.ReconstructInstitution(testutil.InstitutionLeribe, "Hlotse Credit", "REG-003", "Leribe", true, fixtureTime)

	borrowerMaseru  = model.ReconstructBorrower(testutil.BorrowerAtMaseru, testutil.NationalID, "Palesa Mokoena", "+26650000001", testutil.InstitutionMaseru, testutil.BorrowerUser, fixtureTime)
	borrowerMaseru2 = model.ReconstructBorrower(testutil.BorrowerAtMaseru2, testutil.NationalID, "Palesa Mokoena", "+26650000001", testutil.InstitutionMaseru2, "", fixtureTime)
	borrowerLeribe  = model.ReconstructBorrower(testutil.BorrowerAtLeribe, testutil.NationalID, "Palesa Mokoena", "+26650000001", testutil.InstitutionLeribe, "", fixtureTime)

	maseruStaff = model.InstitutionStaff{InstitutionID: testutil.InstitutionMaseru, UserID: testutil.StaffUser}
	leribeStaff = model.InstitutionStaff{InstitutionID: testutil.InstitutionLeribe, UserID: testutil.StaffUser}
	borrowerMe  = model.BorrowerUser{BorrowerID: testutil.BorrowerAtMaseru, UserID: testutil.BorrowerUser}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loanFixture(status valueobject.LoanStatus, issued time.Time) model.Loan {
	term, _ := valueobject.NewLoanTerm(12)
	return model.ReconstructLoan(
		"loan-001", testutil.InstitutionMaseru, testutil.BorrowerAtMaseru,
		decimal.NewFromInt(1000), decimal.RequireFromString("0.12"),
		term, valueobject.LoanPurposeBusiness, status,
		"", "", "", issued, issued.AddDate(1, 0, 0), 1, issued, issued,
	)
}

func repaymentFixture(id string, amount int64, status valueobject.RepaymentStatus, paid *time.Time) model.Repayment {
	return model.ReconstructRepayment(
		id, "loan-001", testutil.InstitutionMaseru, testutil.BorrowerAtMaseru,
		decimal.NewFromInt(amount), decimal.Zero, fixtureTime, paid, "CASH", "", status, "", 1, fixtureTime, fixtureTime,
	)
}

func creditRecord(institutionID, borrowerID string, score int) model.CreditRecord {
	return model.CreditRecord{
		ID:                  "rec-" + institutionID + "-" + borrowerID,
		InstitutionID:       institutionID,
		BorrowerID:          borrowerID,
		NationalID:          testutil.NationalID,
		CreditScore:         score,
		TotalLoans:          1,
		ActiveLoans:         1,
		TotalAmountBorrowed: decimal.NewFromInt(500),
		TotalAmountRepaid:   decimal.NewFromInt(100),
		RecordedAt:          fixtureTime,
	}
}
