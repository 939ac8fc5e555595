package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// Broadcaster pushes a raw message to every connected websocket client.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Publisher is the slice of the Redis client used for fan-out.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotificationService turns lifecycle events into STATUS_UPDATE messages for
// websocket subscribers. With a Redis channel configured, messages go
// through pub/sub so every instance's bridge delivers to its local clients;
// without one, the local hub is written directly. Exactly one of the two
// paths runs per event, never both.
//
// Delivery is best effort. A failed emit is logged and dropped; it never
// affects the originating mutation.
type NotificationService struct {
	hub       Broadcaster
	publisher Publisher
	channel   string
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NotificationDependencies bundles collaborators. Publisher may be nil when
// Redis is unavailable.
type NotificationDependencies struct {
	Hub       Broadcaster
	Publisher Publisher
	Channel   string
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// NewNotificationService creates the emitter.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		hub:       deps.Hub,
		publisher: deps.Publisher,
		channel:   deps.Channel,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// RegisterHandlers subscribes the emitter to the lifecycle events worth
// telling clients about.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventComplaintAssigned, s.handleAssigned)
	dispatcher.Subscribe(events.EventComplaintStatusChanged, s.handleStatusChanged)
}

func (s *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintAssignedPayload)
	if !ok {
		return nil
	}
	extra := map[string]any{"agencyName": payload.AgencyName}
	if payload.AgencyID != nil {
		extra["agencyId"] = *payload.AgencyID
	}
	s.emit(ctx, event, payload.Status, extra)
	return nil
}

func (s *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
	if !ok {
		return nil
	}
	extra := map[string]any{"oldStatus": payload.OldStatus}
	if payload.Response != nil {
		extra["response"] = *payload.Response
	}
	s.emit(ctx, event, payload.NewStatus, extra)
	return nil
}

// emit builds the flat STATUS_UPDATE object clients expect and pushes it
// out. Extra fields merge into the top level next to the fixed ones.
func (s *NotificationService) emit(ctx context.Context, event events.Event, status domain.ComplaintStatus, extra map[string]any) {
	message := map[string]any{
		"type":        "STATUS_UPDATE",
		"complaintId": event.ComplaintID,
		"status":      status,
		"timestamp":   event.Timestamp,
	}
	for k, v := range extra {
		message[k] = v
	}

	encoded, err := json.Marshal(message)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to encode status update", zap.Error(err))
		}
		return
	}

	s.metrics.RecordEmitted(string(event.Type))

	if s.publisher != nil && s.channel != "" {
		if err := s.publisher.Publish(ctx, s.channel, encoded).Err(); err != nil {
			if s.logger != nil {
				s.logger.Warn("redis publish failed, falling back to local broadcast",
					zap.Int64("complaint_id", event.ComplaintID),
					zap.Error(err))
			}
			if s.hub != nil {
				s.hub.Broadcast(encoded)
			}
		}
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(encoded)
	}
}
