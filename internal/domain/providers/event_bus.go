package providers

import (
	"context"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to triage events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.TriageEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.TriageEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel constants
const (
	// EventChannelTriage carries every processed voicemail
	EventChannelTriage = "triage:processed"

	// EventChannelEscalations carries emergency escalations only
	EventChannelEscalations = "triage:escalated"

	// EventChannelLocationPrefix is the prefix for per-site channels
	EventChannelLocationPrefix = "triage:location:"
)

// GetLocationChannel returns the channel name for a specific clinic site
func GetLocationChannel(locationID string) string {
	return EventChannelLocationPrefix + locationID
}
