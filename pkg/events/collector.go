package events

// EventCollector gathers events raised by several aggregates within one
// unit of work so they can be published together.
type EventCollector struct {
	events []DomainEvent
}

// Record appends events in order.
func (c *EventCollector) Record(evts ...DomainEvent) {
	c.events = append(c.events, evts...)
}

// Events returns the collected events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// Len reports how many events are pending.
func (c *EventCollector) Len() int { return len(c.events) }

// ClearEvents returns the collected events and resets the collector.
func (c *EventCollector) ClearEvents() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
