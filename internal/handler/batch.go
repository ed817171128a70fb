package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
)

const (
	defaultBatchUsers    = 20
	maxBatchUsers        = 100
	maxBatchPage         = 10000
	defaultBatchFeedSize = 10
)

// GET /feeds/batch?page&limit&feed_limit&types&since
//
// page and limit select users; feed_limit, types and since shape the first
// feed page composed for each of them.
func (h *Handler) GetBatchFeeds(w http.ResponseWriter, r *http.Request) {
	opts, err := parseBatchOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	result, err := h.service.GetBatchFeeds(r.Context(), opts)
	if err != nil {
		h.logger.Error().Err(err).Int("page", opts.Page).Int("limit", opts.Limit).Msg("batch feeds failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseBatchOptions(q url.Values) (domain.BatchOptions, error) {
	opts := domain.BatchOptions{
		Page:  1,
		Limit: defaultBatchUsers,
		Feed:  domain.FeedOptions{Page: 1, Limit: defaultBatchFeedSize},
	}

	page, err := boundedInt(q, "page", opts.Page, maxBatchPage)
	if err != nil {
		return opts, err
	}
	opts.Page = page

	limit, err := boundedInt(q, "limit", opts.Limit, maxBatchUsers)
	if err != nil {
		return opts, err
	}
	opts.Limit = limit

	if s := q.Get("feed_limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return opts, fmt.Errorf("invalid feed_limit %q", s)
		}
		opts.Feed.Limit = min(max(n, 1), maxFeedLimit)
	}

	if opts.Feed.Types, err = parseTypes(q); err != nil {
		return opts, err
	}
	since, err := parseSince(q)
	if err != nil && !errors.Is(err, errMissingSince) {
		return opts, err
	}
	opts.Feed.Since = since

	return opts, nil
}

// boundedInt parses a user-paging parameter that must lie in [1, upper].
func boundedInt(q url.Values, name string, def, upper int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > upper {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return n, nil
}
