package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArishaRashid/WhoYap/internal/llm"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"github.com/ArishaRashid/WhoYap/internal/service"
	"github.com/ArishaRashid/WhoYap/internal/upload"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reason codes returned next to every error message.
const (
	ReasonNotFound             = "not_found"
	ReasonEmptyCorpus          = "empty_corpus"
	ReasonJoinRequestDecided   = "join_request_decided"
	ReasonRoundAlreadyAnswered = "round_already_answered"
	ReasonInvalidRoundToken    = "invalid_round_token"
	ReasonInvalidInput         = "invalid_input"
	ReasonStoreError           = "store_error"
	ReasonUnavailable          = "unavailable"
	ReasonInternal             = "internal"
)

// statusFor maps an error from the service layer to an HTTP status and
// reason code.
func statusFor(err error) (int, string) {
	var storeErr *repository.StoreError
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, upload.ErrNotFound):
		return http.StatusNotFound, ReasonNotFound
	case errors.Is(err, service.ErrEmptyCorpus):
		return http.StatusConflict, ReasonEmptyCorpus
	case errors.Is(err, service.ErrJoinRequestDecided):
		return http.StatusConflict, ReasonJoinRequestDecided
	case errors.Is(err, service.ErrRoundAlreadyAnswered):
		return http.StatusConflict, ReasonRoundAlreadyAnswered
	case errors.Is(err, service.ErrInvalidRoundToken):
		return http.StatusBadRequest, ReasonInvalidRoundToken
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, llm.ErrEmptyPrompt):
		return http.StatusBadRequest, ReasonInvalidInput
	case errors.As(err, &storeErr):
		return http.StatusServiceUnavailable, ReasonStoreError
	default:
		return http.StatusInternalServerError, ReasonInternal
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, reason := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.String("reason", reason), zap.Error(err))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		} else {
			msg = "storage unavailable"
		}
	}
	c.JSON(status, gin.H{"error": msg, "reason": reason})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "reason": ReasonInvalidInput})
}

// paramID parses a positive int64 path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
