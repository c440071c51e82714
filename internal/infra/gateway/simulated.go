package gateway

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"
)

var ErrSimulatedFailure = errs.NewKind("payment gateway rejected the refund", errs.ErrGatewayFailure)

// SimulatedClient stands in for a card processor. It fails a configurable
// share of calls by returning an error, the way real gateway SDKs do.
type SimulatedClient struct {
	failureRate float64
	latency     time.Duration
	clock       clock.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedClient(cfg config.GatewayConfig, clk clock.Clock) *SimulatedClient {
	return NewSimulatedClientWithRand(cfg, clk, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)))
}

func NewSimulatedClientWithRand(cfg config.GatewayConfig, clk clock.Clock, rng *rand.Rand) *SimulatedClient {
	return &SimulatedClient{
		failureRate: cfg.FailureRate,
		latency:     cfg.Latency,
		clock:       clk,
		rng:         rng,
	}
}

func (c *SimulatedClient) Refund(ctx context.Context, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
	slog.Info("gateway refund requested",
		"refund_id", req.RefundID,
		"payment_reference", req.PaymentReference,
		"amount", req.Amount)

	if c.latency > 0 {
		select {
		case <-ctx.Done():
			return nil, errs.Wrap(ctx.Err(), "simulated gateway call aborted")
		case <-time.After(c.latency):
		}
	}

	c.mu.Lock()
	roll := c.rng.Float64()
	suffix := strconv.FormatUint(c.rng.Uint64(), 36)
	c.mu.Unlock()

	if roll < c.failureRate {
		return nil, ErrSimulatedFailure
	}
	if len(suffix) > 9 {
		suffix = suffix[:9]
	}
	return &commands.GatewayResult{
		TransactionID: "REFUND_" + strconv.FormatInt(c.clock.Now().UnixMilli(), 10) + "_" + suffix,
		Success:       true,
		Message:       "refund processed",
	}, nil
}

var _ commands.GatewayClient = (*SimulatedClient)(nil)
