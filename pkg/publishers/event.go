package publishers

import (
	"strconv"

	"github.com/samvad-hq/churl/internal/domain"
)

// Event represents the payload published downstream for every executed exchange.
type Event struct {
	Source   string          `json:"source"`
	Exchange domain.Exchange `json:"exchange"`
}

// NewEvent constructs an Event for the given exchange.
func NewEvent(source string, ex domain.Exchange) Event {
	return Event{
		Source:   source,
		Exchange: ex,
	}
}

// attributes returns the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"exchange_status": strconv.Itoa(e.Exchange.StatusCode),
	}
	if e.Exchange.Outcome != "" {
		attrs["exchange_outcome"] = e.Exchange.Outcome
	}
	return attrs
}
