package events

import (
	"encoding/json"
	"testing"
	"time"
)

type repaymentVerified struct {
	BaseEvent
	Amount string `json:"amount"`
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewBaseEvent("repayment.verified", "rep-1", "Repayment", "mfi-7")
	after := time.Now().UTC()

	if e.EventID() == "" {
		t.Error("expected non-empty event ID")
	}
	if e.EventType() != "repayment.verified" {
		t.Errorf("EventType() = %q", e.EventType())
	}
	if e.AggregateID() != "rep-1" || e.AggregateType() != "Repayment" {
		t.Errorf("aggregate = %q/%q", e.AggregateID(), e.AggregateType())
	}
	if e.TenantID() != "mfi-7" {
		t.Errorf("TenantID() = %q", e.TenantID())
	}
	if e.OccurredAt().Before(before) || e.OccurredAt().After(after) {
		t.Errorf("OccurredAt() = %v, want between %v and %v", e.OccurredAt(), before, after)
	}
}

func TestEmbeddedEnvelopeIsSerialised(t *testing.T) {
	evt := repaymentVerified{
		BaseEvent: NewBaseEvent("repayment.verified", "rep-1", "Repayment", "mfi-7"),
		Amount:    "400.00",
	}

	raw, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"event_id", "event_type", "aggregate_id", "aggregate_type", "tenant_id", "occurred_at", "amount"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing %q in %s", key, raw)
		}
	}

	var back repaymentVerified
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal typed: %v", err)
	}
	if back.EventID() != evt.EventID() || back.TenantID() != "mfi-7" {
		t.Errorf("envelope not restored: %+v", back.BaseEvent)
	}
}

func TestTenantOmittedWhenEmpty(t *testing.T) {
	raw, err := json.Marshal(NewBaseEvent("credit.profile.aggregated", "0101|MAS", "CreditProfile", ""))
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	if _, ok := decoded["tenant_id"]; ok {
		t.Errorf("tenant_id should be omitted: %s", raw)
	}
}

func TestEventCollector(t *testing.T) {
	var c EventCollector
	c.Record(NewBaseEvent("a", "1", "X", ""), NewBaseEvent("b", "1", "X", ""))
	c.Record(NewBaseEvent("c", "2", "Y", ""))

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if c.Events()[2].EventType() != "c" {
		t.Errorf("order not preserved: %v", c.Events())
	}
	if len(c.Events()) != 3 {
		t.Error("Events() must not clear")
	}

	cleared := c.ClearEvents()
	if len(cleared) != 3 || c.Len() != 0 {
		t.Errorf("ClearEvents returned %d, remaining %d", len(cleared), c.Len())
	}
	if c.ClearEvents() != nil {
		t.Error("expected nil from empty collector")
	}
}
