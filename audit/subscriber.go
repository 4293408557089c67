// api/audit/subscriber.go
package audit

import (
	"context"
	"fmt"

	"github.com/campuspulse/api/util"
)

// EventDecision is the bus topic the guard publishes decision records on.
const EventDecision = "authz.decision"

// RegisterSubscriber wires the audit service onto the event bus so decision
// records are indexed off the request path.
func RegisterSubscriber(bus *util.EventBus, svc Service) {
	bus.Subscribe(EventDecision, func(ctx context.Context, event util.Event) error {
		record, ok := event.Payload.(DecisionRecord)
		if !ok {
			return fmt.Errorf("unexpected payload type %T on %s", event.Payload, EventDecision)
		}
		return svc.LogDecision(ctx, record)
	})
}
