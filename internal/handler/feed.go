package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// GET /users/{userID}/feed
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	opts, err := parseFeedOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	resp, err := h.service.GetFeed(r.Context(), userID, opts)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /users/{userID}/feed/unread-count
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	since, err := parseSince(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	types, err := parseTypes(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	n, err := h.service.GetUnreadCount(r.Context(), userID, types, *since)
	if err != nil {
		h.writeServiceError(w, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, UnreadCountResponse{
		UserID: userID,
		Since:  *since,
		Unread: n,
	})
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return 0, false
	}
	return userID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found",
			fmt.Sprintf("User with ID %d does not exist", userID))
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout",
			"Request timed out, please try again")
	default:
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("feed request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
