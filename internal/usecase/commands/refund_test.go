//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/infra/memstore"
	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// scriptedGateway answers the n-th call (zero-based) with script(n, req).
type scriptedGateway struct {
	mu     sync.Mutex
	calls  []commands.GatewayRefundRequest
	script func(n int, req commands.GatewayRefundRequest) (*commands.GatewayResult, error)
}

func (g *scriptedGateway) Refund(_ context.Context, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
	g.mu.Lock()
	n := len(g.calls)
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	return g.script(n, req)
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func approve(_ int, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
	return &commands.GatewayResult{TransactionID: "RF_" + req.RefundID.String()[:8], Success: true}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []commands.RefundEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...commands.RefundEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

type recordingEscalator struct {
	mu      sync.Mutex
	notices []commands.EscalationNotice
}

func (e *recordingEscalator) Escalate(_ context.Context, n commands.EscalationNotice) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices = append(e.notices, n)
	return nil
}

type recordingMetrics struct {
	mu          sync.Mutex
	transitions []string
	outcomes    []string
}

func (m *recordingMetrics) ObserveTransition(from *refund.Status, to refund.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := "NONE"
	if from != nil {
		f = from.String()
	}
	m.transitions = append(m.transitions, f+"->"+to.String())
}

func (m *recordingMetrics) ObserveGatewayCall(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

type RefundCommandsTestSuite struct {
	suite.Suite
	store     *memstore.Store
	clock     *clock.MockClock
	cfg       config.Config
	gateway   *scriptedGateway
	publisher *recordingPublisher
	escalator *recordingEscalator
	metrics   *recordingMetrics
	cmds      commands.RefundCommands
	owner     user.Actor
	admin     user.Actor
}

func (s *RefundCommandsTestSuite) SetupTest() {
	s.store = memstore.New()
	s.clock = clock.NewMockClock(now)
	s.cfg = config.NewTestConfig()
	s.cfg.Refund.GatewayTimeout = 200 * time.Millisecond
	s.gateway = &scriptedGateway{script: approve}
	s.publisher = &recordingPublisher{}
	s.escalator = &recordingEscalator{}
	s.metrics = &recordingMetrics{}
	s.owner = user.NewActor(uuid.New(), user.RoleUser)
	s.admin = user.NewActor(uuid.New(), user.RoleAdmin)
	s.build()
}

// build recreates the coordinator so tests can tweak s.cfg first.
func (s *RefundCommandsTestSuite) build() {
	s.cmds = commands.NewRefundCommands(s.store, s.clock, s.gateway, s.publisher, s.escalator, s.metrics, s.cfg)
}

func TestRefundCommandsSuite(t *testing.T) {
	suite.Run(t, new(RefundCommandsTestSuite))
}

// addReservation stores a paid reservation of 10000 owned by s.owner that
// starts the given number of hours from now.
func (s *RefundCommandsTestSuite) addReservation(hoursAhead int) uuid.UUID {
	rec, pay := builder.NewReservationBuilder(now).
		WithUserID(s.owner.ID).
		StartingAt(now.Add(time.Duration(hoursAhead) * time.Hour)).
		Build()
	s.store.AddReservation(rec)
	s.store.AddPayment(pay)
	return rec.ID
}

func (s *RefundCommandsTestSuite) cancel(reservationID uuid.UUID, actor user.Actor) (*commands.RefundResult, error) {
	return s.cmds.Cancel(context.Background(), commands.CancelRequest{
		ReservationID: reservationID,
		Reason:        cancellation.ReasonUserRequest,
		Actor:         actor,
	})
}

func (s *RefundCommandsTestSuite) statuses(refundID uuid.UUID) []string {
	var out []string
	for _, e := range s.store.Logs(refundID) {
		from := "NONE"
		if e.PreviousStatus != nil {
			from = e.PreviousStatus.String()
		}
		out = append(out, from+"->"+e.NewStatus.String())
	}
	return out
}

func (s *RefundCommandsTestSuite) failingGateway(msg string) {
	s.gateway.script = func(int, commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		return nil, errs.New(msg)
	}
}

// ================================================================================
// Cancel
// ================================================================================

func (s *RefundCommandsTestSuite) TestCancel_EarlyTierRefundsInFull() {
	id := s.addReservation(30)

	res, err := s.cancel(id, s.owner)
	s.Require().NoError(err)

	s.Equal(int64(10000), res.RefundAmount)
	s.Equal(int64(0), res.FeeAmount)
	s.Equal(refund.StatusCompleted, res.Status)
	s.Require().NotNil(res.TransactionID)

	rec, ok := s.store.Reservation(id)
	s.Require().True(ok)
	s.Equal(reservation.StatusCancelled, rec.Status)
	s.Require().NotNil(rec.CancellationReason)
	s.Equal("USER_REQUEST", *rec.CancellationReason)

	s.Equal([]string{"NONE->PENDING", "PENDING->COMPLETED"}, s.statuses(res.RefundID))
	s.Equal([]string{"NONE->PENDING", "PENDING->COMPLETED"}, s.metrics.transitions)
	s.Equal([]string{commands.GatewayOutcomeSuccess}, s.metrics.outcomes)
	s.Len(s.publisher.events, 2)

	s.Require().Equal(1, s.gateway.callCount())
	call := s.gateway.calls[0]
	s.Equal(res.RefundID, call.RefundID)
	s.Equal(int64(10000), call.Amount)
	s.Equal("USER_REQUEST", call.Reason)
}

func (s *RefundCommandsTestSuite) TestCancel_StandardTierChargesHalf() {
	id := s.addReservation(10)

	res, err := s.cancel(id, s.owner)
	s.Require().NoError(err)

	s.Equal(int64(5000), res.RefundAmount)
	s.Equal(int64(5000), res.FeeAmount)
	s.Equal(res.OriginalAmount, res.RefundAmount+res.FeeAmount)
	s.Equal(refund.StatusCompleted, res.Status)
}

func (s *RefundCommandsTestSuite) TestCancel_InsideCutoffIsRejected() {
	id := s.addReservation(1)

	res, err := s.cancel(id, s.owner)
	s.Nil(res)
	s.Require().Error(err)
	s.True(errs.Is(err, cancellation.ErrCancellationNotAllowed))
	s.True(errs.Is(err, errs.ErrPolicyViolation))

	rec, _ := s.store.Reservation(id)
	s.Equal(reservation.StatusConfirmed, rec.Status)
	s.Zero(s.store.RefundCount())
	s.Zero(s.gateway.callCount())
}

func (s *RefundCommandsTestSuite) TestCancel_UsesStoredPolicy() {
	id := s.addReservation(10)
	rec, _ := s.store.Reservation(id)
	s.store.SetPolicy(rec.CafeID, cancellation.Policy{
		FreeCancellationHours: 48, EarlyRefundRate: 100, StandardRefundRate: 70, LateRefundRate: 30, NoRefundBeforeHours: 3,
	})

	res, err := s.cancel(id, s.owner)
	s.Require().NoError(err)
	s.Equal(int64(7000), res.RefundAmount)
	s.Equal(int64(3000), res.FeeAmount)
}

func (s *RefundCommandsTestSuite) TestCancel_ZeroRefundSkipsGateway() {
	id := s.addReservation(10)
	rec, _ := s.store.Reservation(id)
	s.store.SetPolicy(rec.CafeID, cancellation.Policy{
		FreeCancellationHours: 24, EarlyRefundRate: 100, StandardRefundRate: 0, LateRefundRate: 0, NoRefundBeforeHours: 2,
	})

	res, err := s.cancel(id, s.owner)
	s.Require().NoError(err)

	s.Equal(int64(0), res.RefundAmount)
	s.Equal(int64(10000), res.FeeAmount)
	s.Equal(refund.StatusCompleted, res.Status)
	s.Nil(res.TransactionID)
	s.Zero(s.gateway.callCount())
	s.Equal([]string{"NONE->PENDING", "PENDING->COMPLETED"}, s.statuses(res.RefundID))
}

func (s *RefundCommandsTestSuite) TestCancel_Authorization() {
	s.Run("another user is rejected", func() {
		id := s.addReservation(30)
		stranger := user.NewActor(uuid.New(), user.RoleUser)

		_, err := s.cancel(id, stranger)
		s.True(errs.Is(err, commands.ErrUnauthorizedCancellation))
		s.True(errs.Is(err, errs.ErrUnauthorized))
	})

	s.Run("owners of other records are rejected too", func() {
		id := s.addReservation(30)
		_, err := s.cancel(id, user.NewActor(uuid.New(), user.RoleOwner))
		s.True(errs.Is(err, commands.ErrUnauthorizedCancellation))
	})

	s.Run("administrator may cancel any reservation", func() {
		id := s.addReservation(30)
		res, err := s.cancel(id, s.admin)
		s.Require().NoError(err)
		s.Equal(refund.StatusCompleted, res.Status)
		logs := s.store.Logs(res.RefundID)
		s.Equal(s.admin.Ref(), logs[0].Actor)
	})
}

func (s *RefundCommandsTestSuite) TestCancel_StateChecks() {
	s.Run("unknown reservation", func() {
		_, err := s.cancel(uuid.New(), s.owner)
		s.True(errs.Is(err, reservation.ErrReservationNotFound))
	})

	s.Run("second cancel reports the existing refund", func() {
		id := s.addReservation(30)
		_, err := s.cancel(id, s.owner)
		s.Require().NoError(err)

		_, err = s.cancel(id, s.owner)
		s.True(errs.Is(err, refund.ErrRefundAlreadyExists))
	})

	s.Run("completed reservation", func() {
		rec, pay := builder.NewReservationBuilder(now).WithUserID(s.owner.ID).WithStatus(reservation.StatusCompleted).Build()
		s.store.AddReservation(rec)
		s.store.AddPayment(pay)

		_, err := s.cancel(rec.ID, s.owner)
		s.True(errs.Is(err, reservation.ErrAlreadyCompleted))
	})

	s.Run("payment not completed", func() {
		rec, pay := builder.NewReservationBuilder(now).WithUserID(s.owner.ID).WithPaymentStatus(reservation.PaymentPending).Build()
		s.store.AddReservation(rec)
		s.store.AddPayment(pay)

		_, err := s.cancel(rec.ID, s.owner)
		s.True(errs.Is(err, reservation.ErrPaymentNotFound))
		stored, _ := s.store.Reservation(rec.ID)
		s.Equal(reservation.StatusConfirmed, stored.Status)
	})

	s.Run("invalid reason", func() {
		id := s.addReservation(30)
		_, err := s.cmds.Cancel(context.Background(), commands.CancelRequest{ReservationID: id, Reason: "BORED", Actor: s.owner})
		s.True(errs.Is(err, cancellation.ErrInvalidReason))
	})
}

func (s *RefundCommandsTestSuite) TestCancel_ConcurrentCallsCreateOneRefund() {
	id := s.addReservation(30)

	const callers = 8
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = s.cancel(id, s.owner)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, dup int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errs.Is(err, refund.ErrRefundAlreadyExists):
			dup++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(callers-1, dup)
	s.Equal(1, s.store.RefundCount())
	s.Equal(1, s.gateway.callCount())
}

// ================================================================================
// Gateway failures
// ================================================================================

func (s *RefundCommandsTestSuite) TestCancel_GatewayFailureKeepsCancellation() {
	s.failingGateway("connection refused")
	id := s.addReservation(30)

	res, err := s.cancel(id, s.owner)
	s.Require().Error(err)
	s.True(errs.Is(err, commands.ErrRefundProcessingFailed))
	s.True(errs.Is(err, errs.ErrGatewayFailure))

	s.Require().NotNil(res)
	s.Equal(refund.StatusFailed, res.Status)
	s.Zero(res.RetryCount)
	s.Require().NotNil(res.FailureReason)
	s.Contains(*res.FailureReason, "connection refused")

	rec, _ := s.store.Reservation(id)
	s.Equal(reservation.StatusCancelled, rec.Status)
	s.Equal([]string{"NONE->PENDING", "PENDING->FAILED"}, s.statuses(res.RefundID))
	s.Equal([]string{commands.GatewayOutcomeError}, s.metrics.outcomes)
	s.Empty(s.escalator.notices)
}

func (s *RefundCommandsTestSuite) TestCancel_GatewayDeclineUsesItsMessage() {
	s.gateway.script = func(int, commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		return &commands.GatewayResult{Success: false, Message: "card expired"}, nil
	}
	id := s.addReservation(30)

	res, err := s.cancel(id, s.owner)
	s.True(errs.Is(err, commands.ErrRefundProcessingFailed))
	s.Require().NotNil(res.FailureReason)
	s.Equal("card expired", *res.FailureReason)
	s.Equal([]string{commands.GatewayOutcomeDeclined}, s.metrics.outcomes)
}

func (s *RefundCommandsTestSuite) TestCancel_GatewayTimeout() {
	s.cfg.Refund.GatewayTimeout = 30 * time.Millisecond
	s.build()
	release := make(chan struct{})
	defer close(release)
	s.gateway.script = func(int, commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		<-release
		return &commands.GatewayResult{Success: true, TransactionID: "late"}, nil
	}
	id := s.addReservation(30)

	res, err := s.cancel(id, s.owner)
	s.True(errs.Is(err, commands.ErrRefundProcessingFailed))
	s.Equal(refund.StatusFailed, res.Status)
	s.Require().NotNil(res.FailureReason)
	s.Equal("gateway timeout", *res.FailureReason)
	s.Equal([]string{commands.GatewayOutcomeTimeout}, s.metrics.outcomes)
}

func (s *RefundCommandsTestSuite) TestCancel_GatewayPanicIsContained() {
	s.gateway.script = func(int, commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		panic("nil map write")
	}
	id := s.addReservation(30)

	res, err := s.cancel(id, s.owner)
	s.True(errs.Is(err, commands.ErrRefundProcessingFailed))
	s.Equal(refund.StatusFailed, res.Status)
	s.Contains(*res.FailureReason, "nil map write")
}

func (s *RefundCommandsTestSuite) TestCancel_TransientErrorsAreRetriedInCall() {
	s.cfg.Refund.GatewayAttempts = 3
	s.cfg.Refund.GatewayBackoff = time.Millisecond
	s.build()
	s.gateway.script = func(n int, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		if n == 0 {
			return nil, errs.Wrap(commands.ErrGatewayTransient, "503")
		}
		return approve(n, req)
	}
	id := s.addReservation(30)

	res, err := s.cancel(id, s.owner)
	s.Require().NoError(err)
	s.Equal(refund.StatusCompleted, res.Status)
	s.Zero(res.RetryCount)
	s.Equal(2, s.gateway.callCount())
	s.Equal(s.gateway.calls[0].RefundID, s.gateway.calls[1].RefundID)
	s.Equal(s.gateway.calls[0].Attempt, s.gateway.calls[1].Attempt)
}

func (s *RefundCommandsTestSuite) TestCancel_CallerCancellationDoesNotStrandRefund() {
	ctx, cancel := context.WithCancel(context.Background())
	s.gateway.script = func(n int, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		cancel()
		return approve(n, req)
	}
	id := s.addReservation(30)

	res, err := s.cmds.Cancel(ctx, commands.CancelRequest{ReservationID: id, Reason: cancellation.ReasonEmergency, Actor: s.owner})
	s.Require().NoError(err)
	s.Equal(refund.StatusCompleted, res.Status)
}

func (s *RefundCommandsTestSuite) TestCancel_PublisherErrorsAreIgnored() {
	s.publisher.err = errs.New("broker down")
	id := s.addReservation(30)

	res, err := s.cancel(id, s.owner)
	s.Require().NoError(err)
	s.Equal(refund.StatusCompleted, res.Status)
}

// ================================================================================
// RetryRefund
// ================================================================================

func (s *RefundCommandsTestSuite) TestRetry_SucceedsAfterFailure() {
	s.gateway.script = func(n int, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		if n == 0 {
			return nil, errs.New("gateway unavailable")
		}
		return approve(n, req)
	}
	id := s.addReservation(30)

	failed, err := s.cancel(id, s.owner)
	s.Require().Error(err)
	s.Require().NotNil(failed)
	before := len(s.store.Logs(failed.RefundID))

	res, err := s.cmds.RetryRefund(context.Background(), failed.RefundID, s.admin)
	s.Require().NoError(err)
	s.Equal(refund.StatusCompleted, res.Status)
	s.Equal(1, res.RetryCount)
	s.Nil(res.FailureReason)

	logs := s.store.Logs(failed.RefundID)
	s.Len(logs, before+2)
	s.Equal([]string{"NONE->PENDING", "PENDING->FAILED", "FAILED->PROCESSING", "PROCESSING->COMPLETED"}, s.statuses(failed.RefundID))
	s.Equal(s.admin.Ref(), logs[2].Actor)
	s.Equal(s.admin.Ref(), logs[3].Actor)

	s.Equal(failed.RefundID, s.gateway.calls[1].RefundID)
	s.Equal(0, s.gateway.calls[0].Attempt)
	s.Equal(1, s.gateway.calls[1].Attempt)
}

func (s *RefundCommandsTestSuite) TestRetry_ConcurrentCallsSettleOnce() {
	s.cfg.Refund.GatewayTimeout = 5 * time.Second
	s.build()
	release := make(chan struct{})
	s.gateway.script = func(n int, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		if n == 0 {
			return nil, errs.New("gateway unavailable")
		}
		<-release
		return approve(n, req)
	}
	id := s.addReservation(30)
	failed, err := s.cancel(id, s.owner)
	s.Require().Error(err)

	const callers = 8
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*commands.RefundResult, callers)
		errsOut = make([]error, callers)
		settled = make(chan struct{}, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errsOut[i] = s.cmds.RetryRefund(context.Background(), failed.RefundID, s.admin)
			settled <- struct{}{}
		}(i)
	}
	close(start)

	// Every loser returns while the winner is still inside the gateway call.
	for range callers - 1 {
		<-settled
	}
	close(release)
	wg.Wait()

	var ok, rejected int
	for i, err := range errsOut {
		switch {
		case err == nil:
			ok++
			s.Equal(refund.StatusCompleted, results[i].Status)
		case errs.Is(err, refund.ErrInvalidRefundStatus):
			rejected++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(callers-1, rejected)
	s.Equal(2, s.gateway.callCount())

	rec, _ := s.store.Refund(failed.RefundID)
	s.Equal(refund.StatusCompleted, rec.Status)
	s.Equal(1, rec.RetryCount)
	s.Equal([]string{"NONE->PENDING", "PENDING->FAILED", "FAILED->PROCESSING", "PROCESSING->COMPLETED"}, s.statuses(failed.RefundID))
}

func (s *RefundCommandsTestSuite) TestRetry_CapAndEscalation() {
	s.failingGateway("issuer declined")
	id := s.addReservation(30)

	first, err := s.cancel(id, s.owner)
	s.Require().Error(err)
	refundID := first.RefundID

	for attempt := 1; attempt <= s.cfg.Refund.MaxRetries; attempt++ {
		res, err := s.cmds.RetryRefund(context.Background(), refundID, s.admin)
		s.True(errs.Is(err, commands.ErrRefundProcessingFailed), "attempt %d", attempt)
		s.Equal(refund.StatusFailed, res.Status)
		s.Equal(attempt, res.RetryCount)
		if attempt < s.cfg.Refund.MaxRetries {
			s.Empty(s.escalator.notices, "attempt %d", attempt)
		}
	}

	s.Require().Len(s.escalator.notices, 1)
	notice := s.escalator.notices[0]
	want := commands.EscalationNotice{
		RefundID:      refundID,
		ReservationID: id,
		RefundAmount:  10000,
		RetryCount:    s.cfg.Refund.MaxRetries,
		FailureReason: "issuer declined",
		OccurredAt:    now,
	}
	if diff := cmp.Diff(want, notice); diff != "" {
		s.T().Errorf("escalation mismatch (-want +got):\n%s", diff)
	}

	calls := s.gateway.callCount()
	_, err = s.cmds.RetryRefund(context.Background(), refundID, s.admin)
	s.True(errs.Is(err, commands.ErrMaxRetryExceeded))
	s.True(errs.Is(err, errs.ErrRetryExhausted))
	s.Equal(calls, s.gateway.callCount())

	rec, _ := s.store.Refund(refundID)
	s.Equal(refund.StatusFailed, rec.Status)
	s.Equal(s.cfg.Refund.MaxRetries, rec.RetryCount)
}

func (s *RefundCommandsTestSuite) TestRetry_Rejections() {
	id := s.addReservation(30)
	done, err := s.cancel(id, s.owner)
	s.Require().NoError(err)

	s.Run("non-admin", func() {
		_, err := s.cmds.RetryRefund(context.Background(), done.RefundID, s.owner)
		s.True(errs.Is(err, commands.ErrAdminRequired))
	})

	s.Run("completed refund", func() {
		_, err := s.cmds.RetryRefund(context.Background(), done.RefundID, s.admin)
		s.True(errs.Is(err, refund.ErrInvalidRefundStatus))
	})

	s.Run("unknown refund", func() {
		_, err := s.cmds.RetryRefund(context.Background(), uuid.New(), s.admin)
		s.True(errs.Is(err, refund.ErrRefundNotFound))
	})
}

// ================================================================================
// UpdateStatus
// ================================================================================

func (s *RefundCommandsTestSuite) TestUpdateStatus() {
	s.failingGateway("timeout at acquirer")
	id := s.addReservation(30)
	failed, _ := s.cancel(id, s.owner)
	s.Require().NotNil(failed)

	s.Run("non-admin", func() {
		_, err := s.cmds.UpdateStatus(context.Background(), commands.UpdateStatusRequest{
			RefundID: failed.RefundID, Status: refund.StatusCompleted, Actor: s.owner,
		})
		s.True(errs.Is(err, commands.ErrAdminRequired))
	})

	s.Run("unknown status", func() {
		_, err := s.cmds.UpdateStatus(context.Background(), commands.UpdateStatusRequest{
			RefundID: failed.RefundID, Status: "REVERSED", Actor: s.admin,
		})
		s.True(errs.Is(err, refund.ErrUnknownStatus))
	})

	s.Run("FAILED to COMPLETED with note", func() {
		note := "paid out by bank transfer"
		res, err := s.cmds.UpdateStatus(context.Background(), commands.UpdateStatusRequest{
			RefundID: failed.RefundID, Status: refund.StatusCompleted, Note: &note, Actor: s.admin,
		})
		s.Require().NoError(err)
		s.Equal(refund.StatusCompleted, res.Status)
		s.Nil(res.FailureReason)

		rec, _ := s.store.Refund(failed.RefundID)
		s.Require().NotNil(rec.AdminNote)
		s.Equal(note, *rec.AdminNote)
		logs := s.store.Logs(failed.RefundID)
		last := logs[len(logs)-1]
		s.Equal(note, last.Reason)
		s.Equal(s.admin.Ref(), last.Actor)
	})

	s.Run("COMPLETED is final", func() {
		_, err := s.cmds.UpdateStatus(context.Background(), commands.UpdateStatusRequest{
			RefundID: failed.RefundID, Status: refund.StatusFailed, Actor: s.admin,
		})
		s.True(errs.Is(err, refund.ErrInvalidRefundStatus))
	})
}

func (s *RefundCommandsTestSuite) TestSettle_DropsOutcomeWhenRefundChangedMeanwhile() {
	var overrideErr error
	s.gateway.script = func(_ int, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
		_, overrideErr = s.cmds.UpdateStatus(context.Background(), commands.UpdateStatusRequest{
			RefundID: req.RefundID, Status: refund.StatusCompleted, Actor: s.admin,
		})
		return nil, errs.New("late failure")
	}
	id := s.addReservation(30)

	res, err := s.cancel(id, s.owner)
	s.Require().NoError(err)
	s.Require().NoError(overrideErr)
	refundID := res.RefundID
	s.Equal(refund.StatusCompleted, res.Status)
	s.Equal([]string{"NONE->PENDING", "PENDING->COMPLETED"}, s.statuses(refundID))
}
