package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/sisgestion/empresas/internal/api"
)

// AuthHandler handles HTTP requests for authentication operations.
type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid login payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			// Never reveal whether the email or the password was wrong.
			l.WarnContext(ctx, "Login failed", slog.String("email", req.Email))
			api.WriteJSONResponse(w, r, http.StatusUnauthorized, api.Fail("Credenciales inválidas."))
			return
		}
		l.ErrorContext(ctx, "Login error", slog.Any("error", err))
		span.SetStatus(codes.Error, "login failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	l.InfoContext(ctx, "Login successful", slog.String("email", req.Email))
	api.WriteJSONResponse(w, r, http.StatusOK, api.Ok(resp, ""))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid register payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Register(ctx, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			l.WarnContext(ctx, "Registration failed",
				slog.String("email", req.Email),
				slog.Any("errors", verr.Errors))
			api.WriteJSONResponse(w, r, http.StatusBadRequest, api.Fail("Error en el registro.", verr.Errors...))
			return
		}
		l.ErrorContext(ctx, "Registration error", slog.Any("error", err))
		span.SetStatus(codes.Error, "registration failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	l.InfoContext(ctx, "Registration successful", slog.String("email", req.Email))
	api.WriteJSONResponse(w, r, http.StatusOK, api.Ok(resp, ""))
}
