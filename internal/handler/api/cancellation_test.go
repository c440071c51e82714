//go:build unit

package api_test

import (
	"net/http"
	"strings"
	"testing"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/handler/api"
	reqdto "refund-settlement-engine/internal/handler/dto/request"
	resdto "refund-settlement-engine/internal/handler/dto/response"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"
	"refund-settlement-engine/tests/common/httptest"
	"refund-settlement-engine/tests/common/testutil"
	commandsmock "refund-settlement-engine/tests/mock/commands"
	queriesmock "refund-settlement-engine/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testRoleHeader = "X-Test-Role"

var testUserID = uuid.MustParse("7b0c4b7e-3f57-4b36-9a8e-0c1f7a0d5e11")

// fakeAuth authenticates every request carrying a bearer token as testUserID.
// The role defaults to user and can be overridden per request.
func fakeAuth(c *gin.Context) {
	if c.GetHeader("Authorization") == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
		return
	}
	role := user.RoleUser
	if h := c.GetHeader(testRoleHeader); h != "" {
		role = user.Role(h)
	}
	c.Set("user_id", testUserID)
	c.Set("user_role", role)
	c.Next()
}

func asRole(role user.Role) map[string]string {
	return map[string]string{testRoleHeader: string(role)}
}

type CancellationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockRefundCommands
	mockQueries  *queriesmock.MockCancellationQueries
	handler      *api.CancellationHandler
}

func (s *CancellationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockRefundCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCancellationQueries(s.mockCtrl)
	s.handler = api.NewCancellationHandler(s.mockCommands, s.mockQueries)

	s.router.GET("/reservations/:id/cancellation/fee", fakeAuth, s.handler.CalculateFee)
	s.router.GET("/reservations/:id/cancellation/preview", fakeAuth, s.handler.Preview)
	s.router.GET("/reservations/:id/cancellation", fakeAuth, s.handler.Details)
	s.router.POST("/reservations/:id/cancel", fakeAuth, s.handler.Cancel)
}

func (s *CancellationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCancellationHandlerSuite(t *testing.T) {
	suite.Run(t, new(CancellationHandlerTestSuite))
}

func sampleResult(reservationID uuid.UUID, status refund.Status) *commands.RefundResult {
	return &commands.RefundResult{
		RefundID:       uuid.New(),
		ReservationID:  reservationID,
		OriginalAmount: 10000,
		RefundAmount:   5000,
		FeeAmount:      5000,
		Status:         status,
	}
}

// ================================================================================
// TestCalculateFee
// ================================================================================

func (s *CancellationHandlerTestSuite) TestCalculateFee() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/cancellation/fee"

	s.Run("success: returns the quote", func() {
		view := &queries.FeeView{
			ReservationID:     reservationID,
			OriginalAmount:    10000,
			RefundAmount:      5000,
			FeeAmount:         5000,
			FeeRatePercent:    50,
			RefundRatePercent: 50,
			HoursBeforeStart:  10,
			Tier:              cancellation.TierStandard,
			CanCancel:         true,
		}
		s.mockQueries.EXPECT().
			CalculateFee(gomock.Any(), reservationID, user.NewActor(testUserID, user.RoleUser)).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body resdto.FeeResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(int64(5000), body.RefundAmount)
		s.Equal(int64(5000), body.FeeAmount)
		s.Equal(50.0, body.FeeRatePercent)
		s.Equal(cancellation.TierStandard, body.Tier)
	})

	s.Run("error: 400 on malformed reservation id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/not-a-uuid/cancellation/fee", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: maps engine errors to status codes", func() {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"not found", reservation.ErrReservationNotFound, http.StatusNotFound, "NOT_FOUND"},
			{"already cancelled", reservation.ErrAlreadyCancelled, http.StatusConflict, "INVALID_STATE"},
			{"not owner", queries.ErrAccessDenied, http.StatusForbidden, "UNAUTHORIZED"},
			{"unexpected", errs.New("connection reset"), http.StatusInternalServerError, "INTERNAL"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockQueries.EXPECT().CalculateFee(gomock.Any(), reservationID, gomock.Any()).
					Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
				body := httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.code)
				if tc.status == http.StatusInternalServerError {
					s.Equal("Internal server error", body.Error.Message)
				}
			})
		}
	})
}

// ================================================================================
// TestPreview
// ================================================================================

func (s *CancellationHandlerTestSuite) TestPreview() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/cancellation/preview"

	s.Run("success: refusal is reported in the body", func() {
		reason := cancellation.ReasonAlreadyStarted
		s.mockQueries.EXPECT().CanCancel(gomock.Any(), reservationID, gomock.Any()).
			Return(&queries.CanCancelView{CanCancel: false, Reason: &reason}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body resdto.CanCancelResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.False(body.CanCancel)
		s.Require().NotNil(body.Reason)
		s.Equal(reason, *body.Reason)
		s.Nil(body.Calculation)
	})
}

// ================================================================================
// TestDetails
// ================================================================================

func (s *CancellationHandlerTestSuite) TestDetails() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/cancellation"

	s.Run("success: includes the existing refund", func() {
		view := &queries.CancellationDetailsView{
			Reservation: queries.ReservationSummary{ID: reservationID, Status: "CANCELLED"},
			Policy:      queries.PolicyView{IsDefault: true, FreeCancellationHours: 24},
			Refund:      &queries.RefundView{ID: uuid.New(), ReservationID: reservationID, Status: refund.StatusCompleted},
		}
		s.mockQueries.EXPECT().GetCancellationDetails(gomock.Any(), reservationID, gomock.Any()).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body resdto.CancellationDetailsResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(reservationID, body.Reservation.ID)
		s.True(body.Policy.IsDefault)
		s.Require().NotNil(body.Refund)
		s.Equal(refund.StatusCompleted, body.Refund.Status)
	})
}

// ================================================================================
// TestCancel
// ================================================================================

func (s *CancellationHandlerTestSuite) TestCancel() {
	reservationID := uuid.New()
	url := "/reservations/" + reservationID.String() + "/cancel"
	note := "plans changed"
	reqBody := reqdto.CancelReservationRequest{Reason: string(cancellation.ReasonUserRequest), Note: &note}

	s.Run("success: returns the completed refund", func() {
		want := commands.CancelRequest{
			ReservationID: reservationID,
			Reason:        cancellation.ReasonUserRequest,
			Note:          &note,
			Actor:         user.NewActor(testUserID, user.RoleUser),
		}
		s.mockCommands.EXPECT().Cancel(gomock.Any(), want).
			Return(sampleResult(reservationID, refund.StatusCompleted), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body resdto.RefundResultResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(reservationID, body.ReservationID)
		s.Equal(refund.StatusCompleted, body.Status)
	})

	s.Run("gateway failure: 502 with the failed refund in detail", func() {
		result := sampleResult(reservationID, refund.StatusFailed)
		reason := "card issuer unavailable"
		result.FailureReason = &reason
		s.mockCommands.EXPECT().Cancel(gomock.Any(), gomock.Any()).
			Return(result, errs.Wrap(commands.ErrRefundProcessingFailed, reason)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		body := httptest.AssertErrorResponse(s.T(), rec, http.StatusBadGateway, "GATEWAY_FAILURE")
		s.Contains(string(body.Detail), `"status":"FAILED"`)
		s.Contains(string(body.Detail), result.RefundID.String())
	})

	s.Run("error: engine errors", func() {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"policy forbids", errs.Wrap(cancellation.ErrCancellationNotAllowed, "too late"), http.StatusUnprocessableEntity, "POLICY_VIOLATION"},
			{"refund exists", refund.ErrRefundAlreadyExists, http.StatusConflict, "INVALID_STATE"},
			{"not owner", commands.ErrUnauthorizedCancellation, http.StatusForbidden, "UNAUTHORIZED"},
			{"no payment", reservation.ErrPaymentNotFound, http.StatusNotFound, "NOT_FOUND"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Cancel(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.code)
			})
		}
	})

	s.Run("error: request validation", func() {
		cases := []struct {
			name       string
			mutate     func(m map[string]any)
			expectCode int
		}{
			{"missing reason", testutil.Field("reason", nil), http.StatusBadRequest},
			{"note too long", testutil.Field("note", strings.Repeat("a", 501)), http.StatusBadRequest},
			{"unknown reason", testutil.Field("reason", "BORED"), http.StatusConflict},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
			})
		}
	})

	s.Run("error: 401 without token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
