package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Success bool    `json:"success"`
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Stack   *string `json:"stack"`
}

func statusOf(err error) int {
	switch common.KindOf(err) {
	case common.ErrorBadRequest:
		return http.StatusBadRequest
	case common.ErrorUnauthorized:
		return http.StatusUnauthorized
	case common.ErrorNotFound:
		return http.StatusNotFound
	case common.ErrorConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func detailOf(err error) string {
	var e *common.Error
	if errors.As(err, &e) {
		return e.Detail()
	}
	return err.Error()
}

// fail aborts the request with the JSON error envelope for err. The
// cause chain is exposed as "stack" only in development.
func (s *RESTServer) fail(c *gin.Context, err error) {
	status := statusOf(err)
	msg := common.MessageOf(err)

	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "path", c.Request.URL.Path, "error", detailOf(err))
	} else {
		s.logger.Debug(ctx, "request rejected", "path", c.Request.URL.Path, "status", status, "error", detailOf(err))
	}

	var stack *string
	if s.development {
		d := detailOf(err)
		stack = &d
	}
	respondError(c, status, msg, stack)
}

func respondError(c *gin.Context, status int, msg string, stack *string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Success: false,
		Status:  status,
		Message: msg,
		Stack:   stack,
	})
}

func (s *RESTServer) recovered(c *gin.Context, rec any) {
	s.fail(c, common.Wrap(common.ErrorInternal, fmt.Errorf("panic: %v", rec), "Something went wrong"))
}
