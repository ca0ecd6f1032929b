package listener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/auth"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/dto"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/trigger"
	"github.com/bjorheimar/catalog-sync/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueConsumer struct {
	mu   sync.Mutex
	msgs []kafka.Message
	errs []error
}

func (q *queueConsumer) ReadMessage(ctx context.Context) (kafka.Message, error) {
	q.mu.Lock()
	if len(q.errs) > 0 {
		err := q.errs[0]
		q.errs = q.errs[1:]
		q.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(q.msgs) > 0 {
		m := q.msgs[0]
		q.msgs = q.msgs[1:]
		q.mu.Unlock()
		return m, nil
	}
	q.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

type recordingDispatcher struct {
	mu       sync.Mutex
	reqs     []trigger.Request
	subjects []string
	err      error
	done     chan struct{}
}

func (r *recordingDispatcher) Run(ctx context.Context, req trigger.Request) (*dto.SyncSummary, error) {
	r.mu.Lock()
	r.reqs = append(r.reqs, req)
	r.subjects = append(r.subjects, auth.Subject(ctx))
	r.mu.Unlock()
	if r.done != nil {
		r.done <- struct{}{}
	}
	if r.err != nil {
		return nil, r.err
	}
	return &dto.SyncSummary{Scope: string(req.Scope)}, nil
}

func encode(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestProcessMessage(t *testing.T) {
	d := &recordingDispatcher{}
	l := NewSyncListener(&queueConsumer{}, d, logger.NewNop())
	ctx := context.Background()

	inv := trigger.Request{Scope: catalogsync.ScopeInventory, StoreExternalID: "104"}
	l.processMessage(ctx, encode(t, NewSyncRequested("e1", inv, "cron", time.Now())))
	l.processMessage(ctx, encode(t, NewSyncRequested("e2", trigger.Request{Scope: catalogsync.ScopeCatalog}, "", time.Now())))

	// Ignored: malformed JSON, foreign event types and unknown scopes.
	l.processMessage(ctx, []byte("{not json"))
	l.processMessage(ctx, encode(t, map[string]interface{}{"event_type": "OrderCreated", "payload": map[string]string{"scope": "all"}}))
	l.processMessage(ctx, encode(t, map[string]interface{}{"event_type": EventSyncRequested, "payload": map[string]string{"scope": "everything"}}))

	assert.Equal(t, []trigger.Request{inv, {Scope: catalogsync.ScopeCatalog}}, d.reqs)
	assert.Equal(t, []string{"cron", "system"}, d.subjects)
}

func TestProcessMessage_DispatchErrorsAreNotFatal(t *testing.T) {
	for _, err := range []error{trigger.ErrBusy, errors.New("boom")} {
		d := &recordingDispatcher{err: err}
		l := NewSyncListener(&queueConsumer{}, d, logger.NewNop())
		assert.NotPanics(t, func() {
			l.processMessage(context.Background(), encode(t, NewSyncRequested("e1", trigger.Request{Scope: catalogsync.ScopeAll}, "", time.Now())))
		})
		assert.Len(t, d.reqs, 1)
	}
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	consumer := &queueConsumer{
		errs: []error{errors.New("broker unavailable")},
		msgs: []kafka.Message{
			{Value: encode(t, NewSyncRequested("e1", trigger.Request{Scope: catalogsync.ScopeStores}, "", time.Now()))},
			{Value: encode(t, NewSyncRequested("e2", trigger.Request{Scope: catalogsync.ScopeProducts}, "", time.Now()))},
		},
	}
	d := &recordingDispatcher{done: make(chan struct{}, 2)}
	l := NewSyncListener(consumer, d, logger.NewNop())
	l.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(stopped)
	}()

	<-d.done
	<-d.done
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	assert.Equal(t, catalogsync.ScopeStores, d.reqs[0].Scope)
	assert.Equal(t, catalogsync.ScopeProducts, d.reqs[1].Scope)
}
