package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/auth"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/trigger"
	"github.com/bjorheimar/catalog-sync/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventSyncRequested = "SyncRequested"

type Consumer interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Dispatcher interface {
	Run(ctx context.Context, req trigger.Request) (*dto.SyncSummary, error)
}

type SyncRequestedEvent struct {
	EventID     string      `json:"event_id"`
	EventType   string      `json:"event_type"`
	Payload     SyncPayload `json:"payload"`
	RequestedBy string      `json:"requested_by,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

type SyncPayload struct {
	Scope   string `json:"scope"`
	StoreID string `json:"store_id,omitempty"`
}

// NewSyncRequested builds the event the listener consumes.
func NewSyncRequested(eventID string, req trigger.Request, requestedBy string, now time.Time) SyncRequestedEvent {
	return SyncRequestedEvent{
		EventID:     eventID,
		EventType:   EventSyncRequested,
		Payload:     SyncPayload{Scope: string(req.Scope), StoreID: req.StoreExternalID},
		RequestedBy: requestedBy,
		Timestamp:   now,
	}
}

type SyncListener struct {
	consumer   Consumer
	dispatcher Dispatcher
	logger     logger.Logger
	backoff    time.Duration
}

func NewSyncListener(consumer Consumer, dispatcher Dispatcher, logger logger.Logger) *SyncListener {
	return &SyncListener{
		consumer:   consumer,
		dispatcher: dispatcher,
		logger:     logger,
		backoff:    time.Second,
	}
}

// Start reads events until ctx is done. Events are handled one at a time.
func (l *SyncListener) Start(ctx context.Context) {
	l.logger.Info("Starting sync Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping sync Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *SyncListener) processMessage(ctx context.Context, value []byte) {
	var event SyncRequestedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventSyncRequested {
		return
	}

	scope, err := catalogsync.ParseScope(event.Payload.Scope)
	if err != nil {
		l.logger.Error("Rejected sync event", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}

	l.logger.Info("Processing SyncRequested event",
		zap.String("event_id", event.EventID),
		zap.String("scope", string(scope)),
		zap.String("store", event.Payload.StoreID),
	)

	if event.RequestedBy != "" {
		ctx = auth.WithSubject(ctx, event.RequestedBy)
	}
	summary, err := l.dispatcher.Run(ctx, trigger.Request{Scope: scope, StoreExternalID: event.Payload.StoreID})
	switch {
	case errors.Is(err, trigger.ErrBusy):
		// The running sync covers this request.
		l.logger.Warn("Sync already running, event dropped", zap.String("event_id", event.EventID))
	case err != nil:
		// No retry here; the producer re-publishes on its next schedule.
		l.logger.Error("Sync event failed", zap.String("event_id", event.EventID), zap.Error(err))
	default:
		l.logger.Info("Sync event done",
			zap.String("event_id", event.EventID),
			zap.Int("products_created", summary.ProductsCreated),
			zap.Int("inventory_inserted", summary.InventoryInserted),
		)
	}
}
