package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/pkg/response"
)

type linkHandler struct {
	useCase  linkUseCase
	validate *validator.Validate
}

func newLinkHandler(useCase linkUseCase, validate *validator.Validate) *linkHandler {
	return &linkHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func (h *linkHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req linkRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	var owner *uuid.UUID
	if id, ok := ownerIDFromContext(r.Context()); ok {
		owner = &id
	}

	link, err := h.useCase.ShortenURL(r.Context(), req.URL, owner)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidURL):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidURLResponse)
		case errors.Is(err, entity.ErrExhaustedRetries):
			httplog.LogEntrySetField(r.Context(), "alert", slog.StringValue("short code space exhausted"))
			renderServerError(w, r, err)
		default:
			renderServerError(w, r, err)
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toLinkResponse(link))
}

func (h *linkHandler) listLinks(w http.ResponseWriter, r *http.Request) {
	owner, _ := ownerIDFromContext(r.Context())

	links, err := h.useCase.ListOwnerLinks(r.Context(), owner)
	if err != nil {
		renderServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLinkResponses(links))
}

func (h *linkHandler) getLink(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	link, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			renderNotFound(w, r)
			return
		}

		renderServerError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLinkResponse(link))
}

func (h *linkHandler) deactivateLink(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")
	owner, _ := ownerIDFromContext(r.Context())

	if err := h.useCase.DeactivateLink(r.Context(), shortCode, owner); err != nil {
		switch {
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

	w.WriteHeader(http.StatusNoContent)
}
