package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/event"
	"github.com/letsema/mfi/internal/domain/model"
	pkgkafka "github.com/letsema/mfi/pkg/kafka"
)

// maxAggregateAttempts bounds how often a lost profile race is replayed
// before the message is reported as failed.
const maxAggregateAttempts = 3

// Aggregator runs a credit history aggregation.
type Aggregator interface {
	Execute(ctx context.Context, req dto.AggregateCreditHistoryRequest) (dto.AggregateCreditHistoryResponse, error)
}

// CreditRecordHandler re-aggregates a borrower's profile whenever one of
// their institutions files a credit record. Other credit events on the
// topic are skipped.
type CreditRecordHandler struct {
	aggregator Aggregator
	logger     *slog.Logger
}

// NewCreditRecordHandler wires dependencies.
func NewCreditRecordHandler(aggregator Aggregator, logger *slog.Logger) *CreditRecordHandler {
	return &CreditRecordHandler{aggregator: aggregator, logger: logger}
}

// Handle satisfies pkgkafka.Handler.
func (h *CreditRecordHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	if msg.Headers["event_type"] != event.TypeCreditRecordRecorded {
		return nil
	}

	var evt event.CreditRecordRecorded
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		// Malformed payloads are dropped.
		h.logger.Error("discarding undecodable credit record event",
			"event_id", msg.Headers["event_id"],
			"error", err,
		)
		return nil
	}

	req := dto.AggregateCreditHistoryRequest{
		BorrowerID:    evt.BorrowerID,
		NationalID:    evt.NationalID,
		InstitutionID: evt.TenantID(),
	}
	var (
		resp dto.AggregateCreditHistoryResponse
		err  error
	)
	for attempt := 1; attempt <= maxAggregateAttempts; attempt++ {
		resp, err = h.aggregator.Execute(ctx, req)
		if !errors.Is(err, model.ErrConcurrentModification) || ctx.Err() != nil {
			break
		}
		// Aggregation recomputes from the source records, so a replay
		// picks up whatever the winning writer missed.
		h.logger.WarnContext(ctx, "credit profile changed concurrently, retrying",
			"record_id", evt.AggregateID(),
			"attempt", attempt,
		)
	}
	if err != nil {
		return fmt.Errorf("aggregate credit history for borrower %s: %w", evt.BorrowerID, err)
	}

	if resp.Profile != nil {
		h.logger.InfoContext(ctx, "credit profile refreshed",
			"record_id", evt.AggregateID(),
			"location_code", resp.Profile.LocationCode,
			"score", resp.Profile.AggregatedCreditScore,
		)
	}
	return nil
}
