package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/internal/usecase"
	"github.com/vadimbarashkov/linksplit/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type linkUseCase interface {
	ShortenURL(ctx context.Context, originalURL string, ownerID *uuid.UUID) (*entity.Link, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
	ListOwnerLinks(ctx context.Context, ownerID uuid.UUID) ([]*entity.Link, error)
	DeactivateLink(ctx context.Context, shortCode string, ownerID uuid.UUID) error
}

type analyticsUseCase interface {
	LinkAnalytics(ctx context.Context, shortCode string, ownerID uuid.UUID, dr entity.DateRange) (*entity.LinkAnalytics, error)
}

type redirectUseCase interface {
	Issue(ctx context.Context, req usecase.IssueRequest) (*usecase.IssueResult, error)
	CompleteView(ctx context.Context, req usecase.CompleteViewRequest) (entity.RecordResult, error)
}

type limitsUseCase interface {
	Stats(ctx context.Context, clientID string) ([]entity.WindowCount, error)
}

type revenueUseCase interface {
	UpdateOwnerRates(ctx context.Context, override entity.RateOverride, retroactive bool) (entity.Rate, error)
	ResetOwnerRates(ctx context.Context, ownerID uuid.UUID, retroactive bool) (entity.Rate, error)
	Recalculate(ctx context.Context, ownerID uuid.UUID) (int, error)
	Reconcile(ctx context.Context) (int, error)
}

// newValidator reports validation errors under the json field names.
func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// decodeRequest decodes and validates the JSON body into v. It writes the error
// response itself and reports whether the handler may continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		render.Status(r, http.StatusBadRequest)

		if errors.Is(err, io.EOF) {
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return false
		}

		render.JSON(w, r, response.BadRequestResponse)
		return false
	}

	if validate == nil {
		return true
	}

	if err := validate.Struct(v); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return false
	}

	return true
}

func renderServerError(w http.ResponseWriter, r *http.Request, err error) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.ServerErrorResponse)
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, response.ResourceNotFoundResponse)
}
