package model

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/domain/event"
)

// ContributingInstitution identifies an institution whose records feed a
// profile.
type ContributingInstitution struct {
	ID       string
	Name     string
	Location string
}

// InstitutionSnapshot is the per-institution summary kept on a profile.
type InstitutionSnapshot struct {
	LastUpdated         time.Time
	InstitutionName     string
	TotalAmountBorrowed decimal.Decimal
	CreditScore         int
	TotalLoans          int
	ActiveLoans         int
	OnTimePayments      int
	LatePayments        int
	DefaultedPayments   int
}

// CreditTotals are the figures summed across every contributing record.
type CreditTotals struct {
	TotalAmountBorrowed   decimal.Decimal
	TotalAmountRepaid     decimal.Decimal
	RiskFactors           []string
	AggregatedCreditScore int
	TotalLoans            int
	ActiveLoans           int
	OnTimePayments        int
	LatePayments          int
	DefaultedPayments     int
}

// Aggregation is the result of merging a set of credit records. It is
// applied to a profile with NewConsolidatedCreditProfile or Merge.
type Aggregation struct {
	NationalID    string
	LocationCode  string
	BorrowerID    string
	Totals        CreditTotals
	Contributors  []ContributingInstitution
	Snapshots     map[string]InstitutionSnapshot
	Contributions []Contribution
}

// ---------------------------------------------------------------------------
// ConsolidatedCreditProfile aggregate root
// ---------------------------------------------------------------------------

// ConsolidatedCreditProfile is the cross-institution credit view of one
// national identity within one district. (nationalID, locationCode) is
// unique. The audit log only ever grows.
type ConsolidatedCreditProfile struct {
	nationalID   string
	locationCode string
	borrowerID   string
	totals       CreditTotals
	contributors []ContributingInstitution
	snapshots    map[string]InstitutionSnapshot
	auditLog     []AuditEntry
	pendingAudit []AuditEntry
	version      int
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// NewConsolidatedCreditProfile creates a profile from its first aggregation.
func NewConsolidatedCreditProfile(agg Aggregation, now time.Time) ConsolidatedCreditProfile {
	p := ConsolidatedCreditProfile{
		nationalID:   agg.NationalID,
		locationCode: agg.LocationCode,
		createdAt:    now,
	}
	return p.Merge(agg, now)
}

// ReconstructConsolidatedCreditProfile rebuilds a profile from persistence.
func ReconstructConsolidatedCreditProfile(
	nationalID, locationCode, borrowerID string,
	totals CreditTotals,
	contributors []ContributingInstitution,
	snapshots map[string]InstitutionSnapshot,
	auditLog []AuditEntry,
	version int,
	createdAt, updatedAt time.Time,
) ConsolidatedCreditProfile {
	return ConsolidatedCreditProfile{
		nationalID:   nationalID,
		locationCode: locationCode,
		borrowerID:   borrowerID,
		totals:       totals,
		contributors: contributors,
		snapshots:    snapshots,
		auditLog:     auditLog,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Merge overwrites the totals and snapshots with agg, appends one
// Contribution entry per record to the audit log and adds any institution
// not already listed as a contributor.
func (p ConsolidatedCreditProfile) Merge(agg Aggregation, now time.Time) ConsolidatedCreditProfile {
	next := p
	next.borrowerID = agg.BorrowerID
	next.totals = agg.Totals
	next.totals.RiskFactors = slices.Clone(agg.Totals.RiskFactors)
	next.snapshots = maps.Clone(agg.Snapshots)

	next.contributors = slices.Clone(p.contributors)
	for _, c := range agg.Contributors {
		if !slices.ContainsFunc(next.contributors, func(e ContributingInstitution) bool { return e.ID == c.ID }) {
			next.contributors = append(next.contributors, c)
		}
	}

	added := make([]AuditEntry, 0, len(agg.Contributions))
	for _, c := range agg.Contributions {
		added = append(added, c)
	}
	next.auditLog = append(slices.Clone(p.auditLog), added...)
	next.pendingAudit = append(slices.Clone(p.pendingAudit), added...)

	next.updatedAt = now
	next.domainEvents = copyEvents(p.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewCreditProfileAggregated(
		p.nationalID, p.locationCode, agg.Totals.AggregatedCreditScore, len(agg.Contributions),
	))
	return next
}

// RecordAccess appends an AccessQuery entry. Numeric fields are untouched.
func (p ConsolidatedCreditProfile) RecordAccess(q AccessQuery) ConsolidatedCreditProfile {
	next := p
	next.auditLog = append(slices.Clone(p.auditLog), q)
	next.pendingAudit = append(slices.Clone(p.pendingAudit), q)
	next.domainEvents = copyEvents(p.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewCreditProfileAccessed(
		p.nationalID, p.locationCode, q.InstitutionID, q.UserID, q.Purpose,
	))
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (p ConsolidatedCreditProfile) NationalID() string   { return p.nationalID }
func (p ConsolidatedCreditProfile) LocationCode() string { return p.locationCode }
func (p ConsolidatedCreditProfile) BorrowerID() string   { return p.borrowerID }
func (p ConsolidatedCreditProfile) Totals() CreditTotals { return p.totals }
func (p ConsolidatedCreditProfile) Version() int         { return p.version }
func (p ConsolidatedCreditProfile) CreatedAt() time.Time { return p.createdAt }
func (p ConsolidatedCreditProfile) UpdatedAt() time.Time { return p.updatedAt }

// IsNew reports whether the profile has never been persisted.
func (p ConsolidatedCreditProfile) IsNew() bool { return p.version == 0 }

func (p ConsolidatedCreditProfile) AggregatedCreditScore() int {
	return p.totals.AggregatedCreditScore
}

func (p ConsolidatedCreditProfile) Contributors() []ContributingInstitution {
	return slices.Clone(p.contributors)
}

func (p ConsolidatedCreditProfile) Snapshots() map[string]InstitutionSnapshot {
	return maps.Clone(p.snapshots)
}

func (p ConsolidatedCreditProfile) AuditLog() []AuditEntry {
	return slices.Clone(p.auditLog)
}

// PendingAudit returns the entries appended since the profile was loaded.
func (p ConsolidatedCreditProfile) PendingAudit() []AuditEntry {
	return slices.Clone(p.pendingAudit)
}

func (p ConsolidatedCreditProfile) DomainEvents() []event.DomainEvent { return p.domainEvents }

// ClearEvents returns a copy with no pending events.
func (p ConsolidatedCreditProfile) ClearEvents() ConsolidatedCreditProfile {
	next := p
	next.domainEvents = nil
	return next
}

// CreditHistoryStats summarises the consolidated profiles on file.
type CreditHistoryStats struct {
	ProfilesByLocation map[string]int
	UniqueNationalIDs  int
	AverageCreditScore float64
	TotalProfiles      int
	TotalActiveLoans   int
}
