package service

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// CreditAggregator – merges per-institution credit records of one identity
// ---------------------------------------------------------------------------

// AggregationInput carries everything the aggregator needs, already loaded.
type AggregationInput struct {
	BorrowerID string
	NationalID string
	// Institution is the institution the aggregation is run for.
	Institution model.Institution
	// OwnRecords are every credit record of BorrowerID.
	OwnRecords []model.CreditRecord
	// PeerRecords are credit records of other borrowers sharing NationalID.
	PeerRecords []model.CreditRecord
	// Institutions resolves every institution referenced by a record.
	Institutions map[string]model.Institution
}

// CreditAggregator builds consolidated credit figures. It holds no state.
type CreditAggregator struct{}

func NewCreditAggregator() *CreditAggregator {
	return &CreditAggregator{}
}

// ResolveLocation maps an institution's free-text location to a district.
func (a *CreditAggregator) ResolveLocation(inst model.Institution) (valueobject.District, error) {
	d, err := valueobject.ResolveDistrict(inst.Location())
	if err != nil {
		return valueobject.District{}, fmt.Errorf("institution %s: %w", inst.ID(), err)
	}
	return d, nil
}

// SelectRecords returns the borrower's own records followed by the peer
// records filed by an institution whose location contains the target
// institution's location, ignoring case.
func (a *CreditAggregator) SelectRecords(in AggregationInput) []model.CreditRecord {
	target := strings.ToLower(in.Institution.Location())

	selected := slices.Clone(in.OwnRecords)
	for _, r := range in.PeerRecords {
		if r.BorrowerID == in.BorrowerID || r.NationalID != in.NationalID {
			continue
		}
		inst, ok := in.Institutions[r.InstitutionID]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(inst.Location()), target) {
			selected = append(selected, r)
		}
	}
	return selected
}

// Aggregate merges the selected records. It returns nil when no record
// contributes; no profile should be created then.
func (a *CreditAggregator) Aggregate(in AggregationInput, now time.Time) (*model.Aggregation, error) {
	district, err := a.ResolveLocation(in.Institution)
	if err != nil {
		return nil, err
	}

	records := a.SelectRecords(in)
	if len(records) == 0 {
		return nil, nil
	}

	agg := &model.Aggregation{
		NationalID:   in.NationalID,
		LocationCode: district.Code,
		BorrowerID:   in.BorrowerID,
		Snapshots:    make(map[string]model.InstitutionSnapshot, len(records)),
		Totals: model.CreditTotals{
			TotalAmountBorrowed: decimal.Zero,
			TotalAmountRepaid:   decimal.Zero,
		},
	}

	scoreSum := 0
	risks := make([]string, 0)
	for _, r := range records {
		contributor := a.contributor(r.InstitutionID, in.Institutions)

		t := &agg.Totals
		t.TotalLoans += r.TotalLoans
		t.ActiveLoans += r.ActiveLoans
		t.TotalAmountBorrowed = t.TotalAmountBorrowed.Add(r.TotalAmountBorrowed)
		t.TotalAmountRepaid = t.TotalAmountRepaid.Add(r.TotalAmountRepaid)
		t.OnTimePayments += r.OnTimePayments
		t.LatePayments += r.LatePayments
		t.DefaultedPayments += r.DefaultedPayments
		scoreSum += r.CreditScore

		for _, f := range r.RiskFactors {
			if !slices.Contains(risks, f) {
				risks = append(risks, f)
			}
		}

		if !slices.ContainsFunc(agg.Contributors, func(c model.ContributingInstitution) bool { return c.ID == contributor.ID }) {
			agg.Contributors = append(agg.Contributors, contributor)
		}

		// Several records from one institution: the latest one is kept.
		if prev, ok := agg.Snapshots[r.InstitutionID]; !ok || !r.RecordedAt.Before(prev.LastUpdated) {
			agg.Snapshots[r.InstitutionID] = model.InstitutionSnapshot{
				LastUpdated:         r.RecordedAt,
				InstitutionName:     contributor.Name,
				TotalAmountBorrowed: r.TotalAmountBorrowed,
				CreditScore:         r.CreditScore,
				TotalLoans:          r.TotalLoans,
				ActiveLoans:         r.ActiveLoans,
				OnTimePayments:      r.OnTimePayments,
				LatePayments:        r.LatePayments,
				DefaultedPayments:   r.DefaultedPayments,
			}
		}

		agg.Contributions = append(agg.Contributions, model.Contribution{
			Timestamp:       now,
			InstitutionID:   r.InstitutionID,
			InstitutionName: contributor.Name,
		})
	}

	slices.Sort(risks)
	agg.Totals.RiskFactors = risks
	agg.Totals.AggregatedCreditScore = AverageScore(scoreSum, len(records))

	return agg, nil
}

func (a *CreditAggregator) contributor(id string, institutions map[string]model.Institution) model.ContributingInstitution {
	if inst, ok := institutions[id]; ok {
		return model.ContributingInstitution{ID: id, Name: inst.Name(), Location: inst.Location()}
	}
	return model.ContributingInstitution{ID: id, Name: "Institution " + id, Location: "Unknown"}
}

// AverageScore is floor(sum/count), or 0 for no records.
func AverageScore(sum, count int) int {
	if count == 0 {
		return 0
	}
	q := sum / count
	if sum%count != 0 && (sum < 0) != (count < 0) {
		q--
	}
	return q
}
