package httperr

import (
	"net/http"

	"refund-settlement-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code,omitempty"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	abort(c, status, "", err, msg, detail)
}

func abort(c *gin.Context, status int, code string, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Code = code
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

type mapping struct {
	status int
	code   string
}

var categoryStatus = map[error]mapping{
	errs.ErrNotFound:        {http.StatusNotFound, "NOT_FOUND"},
	errs.ErrInvalidState:    {http.StatusConflict, "INVALID_STATE"},
	errs.ErrPolicyViolation: {http.StatusUnprocessableEntity, "POLICY_VIOLATION"},
	errs.ErrUnauthorized:    {http.StatusForbidden, "UNAUTHORIZED"},
	errs.ErrGatewayFailure:  {http.StatusBadGateway, "GATEWAY_FAILURE"},
	errs.ErrRetryExhausted:  {http.StatusConflict, "RETRY_EXHAUSTED"},
}

// StatusOf maps an engine error to its HTTP status and error code.
func StatusOf(err error) (int, string) {
	if m, ok := categoryStatus[errs.Category(err)]; ok {
		return m.status, m.code
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// AbortWithEngineError answers with the status of err's category. Messages of
// categorised errors are safe to show; anything else is reported generically.
func AbortWithEngineError(c *gin.Context, err error, detail any) {
	status, code := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	abort(c, status, code, err, msg, detail)
}
