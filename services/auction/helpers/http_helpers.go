package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-live/internal/auctionerrors"
	"auction-live/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload", "invalid_request")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/engine errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrPlayerNotFound):
		return http.StatusNotFound, "player not found"
	case errors.Is(err, auctionerrors.ErrTeamNotFound):
		return http.StatusNotFound, "team not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusConflict, "no bids committed for player"
	case errors.Is(err, auctionerrors.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, auctionerrors.ErrAuctionNotLive):
		return http.StatusConflict, "auction is not live"
	case errors.Is(err, auctionerrors.ErrPlayerNotBiddable):
		return http.StatusConflict, "player is not open for bidding"
	case errors.Is(err, auctionerrors.ErrBidBelowIncrement):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrInsufficientPurse):
		return http.StatusConflict, "team purse cannot cover bid"
	case errors.Is(err, auctionerrors.ErrTeamNotInAuction):
		return http.StatusConflict, "team does not belong to this auction"
	case errors.Is(err, auctionerrors.ErrAlreadyFinalized):
		return http.StatusConflict, "player already finalized"
	case errors.Is(err, auctionerrors.ErrAmountMismatch):
		return http.StatusConflict, "finalize amount does not match winning bid"
	case errors.Is(err, auctionerrors.ErrInvalidTransition):
		return http.StatusConflict, "invalid auction status transition"
	case errors.Is(err, auctionerrors.ErrBusy):
		return http.StatusServiceUnavailable, "player is busy, retry"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError sends the mapped JSON error for a domain failure and logs it.
func RespondError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message, auctionerrors.Reason(err))

	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["handler"] = handlerName
	ctx["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+message, ctx)
	} else {
		utils.Warn(handlerName+": "+message, ctx)
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
