//go:build unit

package messaging

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageID_UniquePerLogEntry(t *testing.T) {
	refundID := uuid.New()
	failed, processing := refund.StatusFailed, refund.StatusProcessing
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	first := commands.RefundEvent{RefundID: refundID, PreviousStatus: &failed, NewStatus: refund.StatusProcessing, OccurredAt: at}
	second := first
	second.OccurredAt = at.Add(time.Minute)
	refail := commands.RefundEvent{RefundID: refundID, PreviousStatus: &processing, NewStatus: refund.StatusFailed, OccurredAt: at}
	created := commands.RefundEvent{RefundID: refundID, NewStatus: refund.StatusPending, OccurredAt: at}

	ids := map[string]bool{}
	for _, e := range []commands.RefundEvent{first, second, refail, created} {
		ids[MessageID(e)] = true
	}
	assert.Len(t, ids, 4)
	assert.Contains(t, MessageID(created), "NONE-PENDING")
	assert.Equal(t, MessageID(first), MessageID(first))
}

// silentListener accepts TCP connections and never answers the AMQP handshake.
func silentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	return ln.Addr().String()
}

func TestRabbitPublisher_UnresponsiveBroker(t *testing.T) {
	p := NewRabbitPublisher(config.RabbitMQConfig{
		URL:           "amqp://guest:guest@" + silentListener(t) + "/",
		RefundQueue:   "refund.events",
		DialTimeout:   100 * time.Millisecond,
		RedialBackoff: time.Minute,
	})
	defer func() { _ = p.Close() }()
	event := commands.RefundEvent{RefundID: uuid.New(), NewStatus: refund.StatusPending}

	started := time.Now()
	err := p.Publish(context.Background(), event)
	require.Error(t, err)
	assert.Less(t, time.Since(started), 2*time.Second, "dial is bounded by the timeout")

	started = time.Now()
	err = p.Publish(context.Background(), event)
	assert.True(t, errs.Is(err, ErrBrokerUnavailable))
	assert.Less(t, time.Since(started), 50*time.Millisecond, "later publishes fail fast until the backoff passes")
}

func TestRabbitPublisher_NothingToSend(t *testing.T) {
	p := NewRabbitPublisher(config.RabbitMQConfig{URL: "amqp://127.0.0.1:1/"})
	assert.NoError(t, p.Publish(context.Background()))
}
