package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/internal/metrics"
	"github.com/vadimbarashkov/linksplit/internal/usecase"
)

type redirectHandler struct {
	useCase   redirectUseCase
	limits    limitsUseCase
	validate  *validator.Validate
	metrics   *metrics.Metrics
	countdown int
}

func newRedirectHandler(
	useCase redirectUseCase,
	limits limitsUseCase,
	validate *validator.Validate,
	m *metrics.Metrics,
	countdown int,
) *redirectHandler {
	return &redirectHandler{
		useCase:   useCase,
		limits:    limits,
		validate:  validate,
		metrics:   m,
		countdown: countdown,
	}
}

// legacyRedirect sends old-style short URLs to the interstitial page.
func (h *redirectHandler) legacyRedirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")
	http.Redirect(w, r, "/link/"+url.PathEscape(shortCode), http.StatusFound)
}

func (h *redirectHandler) issue(w http.ResponseWriter, r *http.Request) {
	res, err := h.useCase.Issue(r.Context(), usecase.IssueRequest{
		SessionID: sessionIDFromContext(r.Context()),
		ClientID:  ClientIP(r),
		ShortCode: chi.URLParam(r, "shortCode"),
		Referrer:  r.Referer(),
	})
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			renderNotFound(w, r)
			return
		}

		renderServerError(w, r, err)
		return
	}

	h.metrics.CredentialIssued()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toIssueResponse(res, h.countdown))
}

func (h *redirectHandler) completeView(w http.ResponseWriter, r *http.Request) {
	var req completeViewRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	res, err := h.useCase.CompleteView(r.Context(), usecase.CompleteViewRequest{
		SessionID:             sessionIDFromContext(r.Context()),
		ClientID:              ClientIP(r),
		ShortCode:             req.Code,
		Token:                 req.Token,
		UserAgent:             r.UserAgent(),
		Referrer:              r.Referer(),
		TimeToCompleteSeconds: req.TimeToCompleteSeconds,
	})
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			renderNotFound(w, r)
			return
		}

		renderServerError(w, r, err)
		return
	}

	switch {
	case res.Recorded:
		h.metrics.ViewCompleted(metrics.OutcomeRecorded)
	case res.Message == usecase.MsgInvalidToken:
		h.metrics.ViewCompleted(metrics.OutcomeInvalidToken)
	default:
		h.metrics.ViewCompleted(metrics.OutcomeRateLimited)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, completeViewResponse{
		Recorded: res.Recorded,
		Message:  res.Message,
	})
}

func (h *redirectHandler) getLimits(w http.ResponseWriter, r *http.Request) {
	clientID := ClientIP(r)

	counts, err := h.limits.Stats(r.Context(), clientID)
	if err != nil {
		renderServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLimitsResponse(clientID, counts))
}
