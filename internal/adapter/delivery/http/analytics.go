package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/pkg/response"
)

const dateLayout = time.DateOnly

var invalidRangeResponse = response.ErrorResponse(
	"Invalid Date Range",
	"from and to must be YYYY-MM-DD dates, from not after to, spanning at most 366 days.",
)

type analyticsHandler struct {
	useCase analyticsUseCase
}

func newAnalyticsHandler(useCase analyticsUseCase) *analyticsHandler {
	return &analyticsHandler{useCase: useCase}
}

func (h *analyticsHandler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")
	owner, _ := ownerIDFromContext(r.Context())

	dr, ok := parseDateRange(r)
	if !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRangeResponse)
		return
	}

	res, err := h.useCase.LinkAnalytics(r.Context(), shortCode, owner, dr)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidRange):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidRangeResponse)
		case errors.Is(err, entity.ErrLinkNotFound):
			renderNotFound(w, r)
		case errors.Is(err, entity.ErrForbidden):
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.ForbiddenResponse)
		default:
			renderServerError(w, r, err)
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAnalyticsResponse(res))
}

// parseDateRange reads the optional from and to query dates. Both are inclusive
// days, so the exclusive end is the day after to.
func parseDateRange(r *http.Request) (entity.DateRange, bool) {
	var dr entity.DateRange

	if v := r.URL.Query().Get("from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return dr, false
		}
		dr.From = from
	}

	if v := r.URL.Query().Get("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return dr, false
		}
		dr.To = to.AddDate(0, 0, 1)
	}

	return dr, true
}
