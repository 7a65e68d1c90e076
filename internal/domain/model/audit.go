package model

import "time"

// Audit actions as stored in the data-sharing log.
const (
	AuditActionContribution = "data_contributed"
	AuditActionAccessQuery  = "API query"
)

// AuditEntry is one line of a profile's append-only data-sharing log. The
// concrete variants are Contribution and AccessQuery.
type AuditEntry interface {
	Action() string
	Institution() string
	At() time.Time
	auditEntry()
}

// Contribution records that an institution's credit record was merged into
// the profile.
type Contribution struct {
	Timestamp       time.Time
	InstitutionID   string
	InstitutionName string
}

func (c Contribution) Action() string      { return AuditActionContribution }
func (c Contribution) Institution() string { return c.InstitutionID }
func (c Contribution) At() time.Time       { return c.Timestamp }
func (Contribution) auditEntry()           {}

// AccessQuery records that a user of an institution read the profile.
type AccessQuery struct {
	Timestamp     time.Time
	InstitutionID string
	UserID        string
	Purpose       string
}

func (q AccessQuery) Action() string      { return AuditActionAccessQuery }
func (q AccessQuery) Institution() string { return q.InstitutionID }
func (q AccessQuery) At() time.Time       { return q.Timestamp }
func (AccessQuery) auditEntry()           {}
