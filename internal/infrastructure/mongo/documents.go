package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
)

type creditRecordDoc struct {
	RecordedAt          time.Time            `bson:"recorded_at"`
	ID                  string               `bson:"_id"`
	InstitutionID       string               `bson:"institution_id"`
	BorrowerID          string               `bson:"borrower_id"`
	NationalID          string               `bson:"national_id"`
	TotalAmountBorrowed primitive.Decimal128 `bson:"total_amount_borrowed"`
	TotalAmountRepaid   primitive.Decimal128 `bson:"total_amount_repaid"`
	RiskFactors         []string             `bson:"risk_factors"`
	CreditScore         int                  `bson:"credit_score"`
	TotalLoans          int                  `bson:"total_loans"`
	ActiveLoans         int                  `bson:"active_loans"`
	OnTimePayments      int                  `bson:"on_time_payments"`
	LatePayments        int                  `bson:"late_payments"`
	DefaultedPayments   int                  `bson:"defaulted_payments"`
}

type contributorDoc struct {
	ID       string `bson:"id"`
	Name     string `bson:"name"`
	Location string `bson:"location"`
}

type snapshotDoc struct {
	LastUpdated         time.Time            `bson:"last_updated"`
	InstitutionName     string               `bson:"institution_name"`
	TotalAmountBorrowed primitive.Decimal128 `bson:"total_amount_borrowed"`
	CreditScore         int                  `bson:"credit_score"`
	TotalLoans          int                  `bson:"total_loans"`
	ActiveLoans         int                  `bson:"active_loans"`
	OnTimePayments      int                  `bson:"on_time_payments"`
	LatePayments        int                  `bson:"late_payments"`
	DefaultedPayments   int                  `bson:"defaulted_payments"`
}

// auditDoc stores both audit variants; Action selects which.
type auditDoc struct {
	Timestamp       time.Time `bson:"timestamp"`
	Action          string    `bson:"action"`
	InstitutionID   string    `bson:"institution_id"`
	InstitutionName string    `bson:"institution_name,omitempty"`
	UserID          string    `bson:"user_id,omitempty"`
	Purpose         string    `bson:"purpose,omitempty"`
}

type profileDoc struct {
	CreatedAt             time.Time              `bson:"created_at"`
	UpdatedAt             time.Time              `bson:"updated_at"`
	ID                    string                 `bson:"_id"`
	NationalID            string                 `bson:"national_id"`
	Location              string                 `bson:"location"`
	BorrowerID            string                 `bson:"borrower_id"`
	TotalAmountBorrowed   primitive.Decimal128   `bson:"total_amount_borrowed"`
	TotalAmountRepaid     primitive.Decimal128   `bson:"total_amount_repaid"`
	RiskFactors           []string               `bson:"risk_factors"`
	Contributors          []contributorDoc       `bson:"contributing_institutions"`
	Snapshots             map[string]snapshotDoc `bson:"institution_snapshots"`
	AuditLog              []auditDoc             `bson:"data_sharing_log"`
	AggregatedCreditScore int                    `bson:"aggregated_credit_score"`
	TotalLoans            int                    `bson:"total_loans"`
	ActiveLoans           int                    `bson:"active_loans"`
	OnTimePayments        int                    `bson:"on_time_payments"`
	LatePayments          int                    `bson:"late_payments"`
	DefaultedPayments     int                    `bson:"defaulted_payments"`
	Version               int                    `bson:"version"`
}

// ---------------------------------------------------------------------------
// Decimal helpers
// ---------------------------------------------------------------------------

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("decimal %s out of Decimal128 range: %w", d, err)
	}
	return v, nil
}

// toDecimal128s converts several amounts, stopping at the first failure.
func toDecimal128s(ds ...decimal.Decimal) ([]primitive.Decimal128, error) {
	out := make([]primitive.Decimal128, 0, len(ds))
	for _, d := range ds {
		v, err := toDecimal128(d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal128 %s: %w", v, err)
	}
	return d, nil
}

// ---------------------------------------------------------------------------
// Credit records
// ---------------------------------------------------------------------------

func toCreditRecordDoc(r model.CreditRecord) (creditRecordDoc, error) {
	amounts, err := toDecimal128s(r.TotalAmountBorrowed, r.TotalAmountRepaid)
	if err != nil {
		return creditRecordDoc{}, err
	}
	return creditRecordDoc{
		ID:                  r.ID,
		InstitutionID:       r.InstitutionID,
		BorrowerID:          r.BorrowerID,
		NationalID:          r.NationalID,
		CreditScore:         r.CreditScore,
		TotalLoans:          r.TotalLoans,
		ActiveLoans:         r.ActiveLoans,
		TotalAmountBorrowed: amounts[0],
		TotalAmountRepaid:   amounts[1],
		OnTimePayments:      r.OnTimePayments,
		LatePayments:        r.LatePayments,
		DefaultedPayments:   r.DefaultedPayments,
		RiskFactors:         r.RiskFactors,
		RecordedAt:          r.RecordedAt,
	}, nil
}

func (d creditRecordDoc) toModel() (model.CreditRecord, error) {
	borrowed, err := fromDecimal128(d.TotalAmountBorrowed)
	if err != nil {
		return model.CreditRecord{}, err
	}
	repaid, err := fromDecimal128(d.TotalAmountRepaid)
	if err != nil {
		return model.CreditRecord{}, err
	}
	return model.CreditRecord{
		ID:                  d.ID,
		InstitutionID:       d.InstitutionID,
		BorrowerID:          d.BorrowerID,
		NationalID:          d.NationalID,
		CreditScore:         d.CreditScore,
		TotalLoans:          d.TotalLoans,
		ActiveLoans:         d.ActiveLoans,
		TotalAmountBorrowed: borrowed,
		TotalAmountRepaid:   repaid,
		OnTimePayments:      d.OnTimePayments,
		LatePayments:        d.LatePayments,
		DefaultedPayments:   d.DefaultedPayments,
		RiskFactors:         d.RiskFactors,
		RecordedAt:          d.RecordedAt.UTC(),
	}, nil
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

func profileID(nationalID, locationCode string) string {
	return event.ProfileAggregateID(nationalID, locationCode)
}

func toAuditDocs(entries []model.AuditEntry) []auditDoc {
	out := make([]auditDoc, 0, len(entries))
	for _, e := range entries {
		doc := auditDoc{
			Timestamp:     e.At(),
			Action:        e.Action(),
			InstitutionID: e.Institution(),
		}
		switch v := e.(type) {
		case model.Contribution:
			doc.InstitutionName = v.InstitutionName
		case model.AccessQuery:
			doc.UserID = v.UserID
			doc.Purpose = v.Purpose
		}
		out = append(out, doc)
	}
	return out
}

func (d auditDoc) toModel() (model.AuditEntry, error) {
	switch d.Action {
	case model.AuditActionContribution:
		return model.Contribution{
			Timestamp:       d.Timestamp.UTC(),
			InstitutionID:   d.InstitutionID,
			InstitutionName: d.InstitutionName,
		}, nil
	case model.AuditActionAccessQuery:
		return model.AccessQuery{
			Timestamp:     d.Timestamp.UTC(),
			InstitutionID: d.InstitutionID,
			UserID:        d.UserID,
			Purpose:       d.Purpose,
		}, nil
	default:
		return nil, fmt.Errorf("unknown audit action %q", d.Action)
	}
}

func toContributorDocs(cs []model.ContributingInstitution) []contributorDoc {
	out := make([]contributorDoc, 0, len(cs))
	for _, c := range cs {
		out = append(out, contributorDoc{ID: c.ID, Name: c.Name, Location: c.Location})
	}
	return out
}

func toSnapshotDocs(snaps map[string]model.InstitutionSnapshot) (map[string]snapshotDoc, error) {
	out := make(map[string]snapshotDoc, len(snaps))
	for id, s := range snaps {
		amount, err := toDecimal128(s.TotalAmountBorrowed)
		if err != nil {
			return nil, err
		}
		out[id] = snapshotDoc{
			LastUpdated:         s.LastUpdated,
			InstitutionName:     s.InstitutionName,
			TotalAmountBorrowed: amount,
			CreditScore:         s.CreditScore,
			TotalLoans:          s.TotalLoans,
			ActiveLoans:         s.ActiveLoans,
			OnTimePayments:      s.OnTimePayments,
			LatePayments:        s.LatePayments,
			DefaultedPayments:   s.DefaultedPayments,
		}
	}
	return out, nil
}

// toProfileDoc renders p with its full audit log, as stored on insert.
func toProfileDoc(p model.ConsolidatedCreditProfile) (profileDoc, error) {
	t := p.Totals()
	amounts, err := toDecimal128s(t.TotalAmountBorrowed, t.TotalAmountRepaid)
	if err != nil {
		return profileDoc{}, err
	}
	snapshots, err := toSnapshotDocs(p.Snapshots())
	if err != nil {
		return profileDoc{}, err
	}
	return profileDoc{
		ID:                    profileID(p.NationalID(), p.LocationCode()),
		NationalID:            p.NationalID(),
		Location:              p.LocationCode(),
		BorrowerID:            p.BorrowerID(),
		AggregatedCreditScore: t.AggregatedCreditScore,
		TotalLoans:            t.TotalLoans,
		ActiveLoans:           t.ActiveLoans,
		TotalAmountBorrowed:   amounts[0],
		TotalAmountRepaid:     amounts[1],
		OnTimePayments:        t.OnTimePayments,
		LatePayments:          t.LatePayments,
		DefaultedPayments:     t.DefaultedPayments,
		RiskFactors:           t.RiskFactors,
		Contributors:          toContributorDocs(p.Contributors()),
		Snapshots:             snapshots,
		AuditLog:              toAuditDocs(p.AuditLog()),
		Version:               p.Version(),
		CreatedAt:             p.CreatedAt(),
		UpdatedAt:             p.UpdatedAt(),
	}, nil
}

func (d profileDoc) toModel() (model.ConsolidatedCreditProfile, error) {
	borrowed, err := fromDecimal128(d.TotalAmountBorrowed)
	if err != nil {
		return model.ConsolidatedCreditProfile{}, err
	}
	repaid, err := fromDecimal128(d.TotalAmountRepaid)
	if err != nil {
		return model.ConsolidatedCreditProfile{}, err
	}

	contributors := make([]model.ContributingInstitution, 0, len(d.Contributors))
	for _, c := range d.Contributors {
		contributors = append(contributors, model.ContributingInstitution{ID: c.ID, Name: c.Name, Location: c.Location})
	}

	snapshots := make(map[string]model.InstitutionSnapshot, len(d.Snapshots))
	for id, s := range d.Snapshots {
		amount, err := fromDecimal128(s.TotalAmountBorrowed)
		if err != nil {
			return model.ConsolidatedCreditProfile{}, err
		}
		snapshots[id] = model.InstitutionSnapshot{
			LastUpdated:         s.LastUpdated.UTC(),
			InstitutionName:     s.InstitutionName,
			TotalAmountBorrowed: amount,
			CreditScore:         s.CreditScore,
			TotalLoans:          s.TotalLoans,
			ActiveLoans:         s.ActiveLoans,
			OnTimePayments:      s.OnTimePayments,
			LatePayments:        s.LatePayments,
			DefaultedPayments:   s.DefaultedPayments,
		}
	}

	auditLog := make([]model.AuditEntry, 0, len(d.AuditLog))
	for _, a := range d.AuditLog {
		entry, err := a.toModel()
		if err != nil {
			return model.ConsolidatedCreditProfile{}, err
		}
		auditLog = append(auditLog, entry)
	}

	return model.ReconstructConsolidatedCreditProfile(
		d.NationalID, d.Location, d.BorrowerID,
		model.CreditTotals{
			TotalAmountBorrowed:   borrowed,
			TotalAmountRepaid:     repaid,
			RiskFactors:           d.RiskFactors,
			AggregatedCreditScore: d.AggregatedCreditScore,
			TotalLoans:            d.TotalLoans,
			ActiveLoans:           d.ActiveLoans,
			OnTimePayments:        d.OnTimePayments,
			LatePayments:          d.LatePayments,
			DefaultedPayments:     d.DefaultedPayments,
		},
		contributors, snapshots, auditLog, d.Version,
		d.CreatedAt.UTC(), d.UpdatedAt.UTC(),
	), nil
}
