package empresa

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/sisgestion/empresas/internal/api"
)

// Handler is the REST adapter over the empresa service.
//
//	GET    /api/empresas       -> GetAll
//	GET    /api/empresas/{id}  -> GetByID
//	POST   /api/empresas       -> Create
//	PUT    /api/empresas/{id}  -> Update
//	DELETE /api/empresas/{id}  -> Delete
type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// RegisterRoutes mounts the CRUD routes on the given router. The caller is
// responsible for wrapping the router with the bearer-token middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.GetAll)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EmpresaHandler").Start(r.Context(), "GetAll")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetAll"))
	l.InfoContext(ctx, "API: obteniendo todas las empresas")

	empresas, err := h.service.GetAll(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to retrieve empresas", slog.Any("error", err))
		span.SetStatus(codes.Error, "service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, empresas)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EmpresaHandler").Start(r.Context(), "GetByID")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetByID"))

	id, err := idParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid empresa id")
		return
	}

	e, err := h.service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Empresa no encontrada")
			return
		}
		l.ErrorContext(ctx, "Failed to retrieve empresa", slog.Int("id", id), slog.Any("error", err))
		span.SetStatus(codes.Error, "service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, e)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EmpresaHandler").Start(r.Context(), "Create")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Create"))

	var e Empresa
	if err := api.DecodeJSONBody(w, r, &e); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if errs := e.Validate(); len(errs) > 0 {
		api.WriteJSONResponse(w, r, http.StatusBadRequest, api.Fail("Datos de empresa inválidos.", errs...))
		return
	}

	created, err := h.service.Create(ctx, &e)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create empresa", slog.Any("error", err))
		span.SetStatus(codes.Error, "service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	l.InfoContext(ctx, "API: empresa creada", slog.Int("empresa_id", created.EmpresaID))
	w.Header().Set("Location", fmt.Sprintf("/api/empresas/%d", created.EmpresaID))
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EmpresaHandler").Start(r.Context(), "Update")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Update"))

	id, err := idParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid empresa id")
		return
	}

	var e Empresa
	if err := api.DecodeJSONBody(w, r, &e); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// The id in the URL must match the id in the body.
	if id != e.EmpresaID {
		api.ErrorResponse(w, r, http.StatusBadRequest, "El id de la URL no coincide con el del cuerpo")
		return
	}
	if errs := e.Validate(); len(errs) > 0 {
		api.WriteJSONResponse(w, r, http.StatusBadRequest, api.Fail("Datos de empresa inválidos.", errs...))
		return
	}

	exists, err := h.service.Exists(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to check empresa", slog.Int("id", id), slog.Any("error", err))
		span.SetStatus(codes.Error, "service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if !exists {
		api.ErrorResponse(w, r, http.StatusNotFound, "Empresa no encontrada")
		return
	}

	if err := h.service.Update(ctx, &e); err != nil {
		l.ErrorContext(ctx, "Failed to update empresa", slog.Int("id", id), slog.Any("error", err))
		span.SetStatus(codes.Error, "service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	l.InfoContext(ctx, "API: empresa actualizada", slog.Int("empresa_id", id))
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EmpresaHandler").Start(r.Context(), "Delete")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Delete"))

	id, err := idParam(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid empresa id")
		return
	}

	deleted, err := h.service.Delete(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete empresa", slog.Int("id", id), slog.Any("error", err))
		span.SetStatus(codes.Error, "service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if !deleted {
		api.ErrorResponse(w, r, http.StatusNotFound, "Empresa no encontrada")
		return
	}

	l.InfoContext(ctx, "API: empresa eliminada", slog.Int("empresa_id", id))
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
