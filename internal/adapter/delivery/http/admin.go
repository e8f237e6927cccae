package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/pkg/response"
)

var (
	invalidOwnerIDResponse = response.ErrorResponse("Bad Request", "Owner id must be a valid uuid.")
	invalidRateResponse    = response.ErrorResponse(
		"Invalid Rate",
		"CPM rate must be positive and revenue share must lie between 0 and 100 percent.",
	)
	missingRateResponse = response.ErrorResponse(
		"Bad Request",
		"Provide cpm_rate or revenue_share_percent, or set reset.",
	)
)

type adminHandler struct {
	useCase revenueUseCase
}

func newAdminHandler(useCase revenueUseCase) *adminHandler {
	return &adminHandler{useCase: useCase}
}

func ownerIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "ownerID"))
	return id, err == nil
}

func (h *adminHandler) updateRates(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerIDParam(r)
	if !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidOwnerIDResponse)
		return
	}

	var req ratesRequest

	if !decodeRequest(w, r, nil, &req) {
		return
	}

	var (
		rate entity.Rate
		err  error
	)

	switch {
	case req.Reset:
		rate, err = h.useCase.ResetOwnerRates(r.Context(), owner, req.Retroactive)
	case req.CPMRate == nil && req.RevenueSharePercent == nil:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, missingRateResponse)
		return
	default:
		rate, err = h.useCase.UpdateOwnerRates(r.Context(), req.toOverride(owner), req.Retroactive)
	}

	if err != nil {
		if errors.Is(err, entity.ErrInvalidRate) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidRateResponse)
			return
		}

		renderServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toRatesResponse(owner, rate, req.Retroactive))
}

func (h *adminHandler) recalculate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerIDParam(r)
	if !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidOwnerIDResponse)
		return
	}

	n, err := h.useCase.Recalculate(r.Context(), owner)
	if err != nil {
		renderServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response.SuccessResponse("earnings recalculated", recalculateResponse{
		OwnerID:      &owner,
		LinksUpdated: n,
	}))
}

func (h *adminHandler) reconcile(w http.ResponseWriter, r *http.Request) {
	n, err := h.useCase.Reconcile(r.Context())
	if err != nil {
		renderServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response.SuccessResponse("earnings reconciled", recalculateResponse{
		LinksUpdated: n,
	}))
}
