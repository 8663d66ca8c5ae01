// Package messaging publishes domain events about pokemon records.
//
// The service layer depends on Publisher only. EventBridgePublisher sends
// events to an AWS EventBridge bus; NoopPublisher is used when no bus is
// configured.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types
const (
	EventPokemonCreated = "PokemonCreated"
	EventPokemonUpdated = "PokemonUpdated"
	EventPokemonDeleted = "PokemonDeleted"
	EventSeedExecuted   = "SeedExecuted"
)

// EventBridge accepts at most 10 entries per PutEvents call.
const maxEntriesPerPut = 10

// Event is one domain event. Detail is marshalled to JSON as the event body.
type Event struct {
	ID          string    `json:"event_id"`
	Type        string    `json:"event_type"`
	AggregateID string    `json:"aggregate_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Detail      any       `json:"detail,omitempty"`
}

// NewEvent stamps a new event with an ID and the current time.
func NewEvent(eventType, aggregateID string, detail any) Event {
	return Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Detail:      detail,
	}
}

// Publisher sends domain events to a bus.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// EventBridgeClient is the subset of the EventBridge API the publisher uses.
type EventBridgeClient interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher implements Publisher using AWS EventBridge
type EventBridgePublisher struct {
	client   EventBridgeClient
	eventBus string
	source   string
	logger   *zap.Logger
}

// NewEventBridgePublisher creates a new EventBridge publisher
func NewEventBridgePublisher(client EventBridgeClient, eventBus, source string, logger *zap.Logger) *EventBridgePublisher {
	if eventBus == "" {
		eventBus = "default"
	}
	if source == "" {
		source = "pokedex-backend"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBridgePublisher{
		client:   client,
		eventBus: eventBus,
		source:   source,
		logger:   logger.Named("events"),
	}
}

// Publish sends events in batches of up to ten.
func (p *EventBridgePublisher) Publish(ctx context.Context, events ...Event) error {
	for start := 0; start < len(events); start += maxEntriesPerPut {
		end := min(start+maxEntriesPerPut, len(events))
		if err := p.publishBatch(ctx, events[start:end]); err != nil {
			return fmt.Errorf("failed to publish event batch: %w", err)
		}
	}
	return nil
}

func (p *EventBridgePublisher) publishBatch(ctx context.Context, events []Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(events))
	for _, event := range events {
		detail, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
		}
		entry := types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBus),
			Source:       aws.String(p.source),
			DetailType:   aws.String(event.Type),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.OccurredAt),
		}
		if event.AggregateID != "" {
			entry.Resources = []string{event.AggregateID}
		}
		entries = append(entries, entry)
	}

	output, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to put events: %w", err)
	}
	if output.FailedEntryCount > 0 {
		for i, entry := range output.Entries {
			if entry.ErrorCode != nil {
				p.logger.Warn("event rejected by EventBridge",
					zap.String("event_type", events[i].Type),
					zap.String("code", aws.ToString(entry.ErrorCode)),
					zap.String("message", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", output.FailedEntryCount)
	}

	p.logger.Debug("events published", zap.Int("count", len(entries)), zap.String("bus", p.eventBus))
	return nil
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
