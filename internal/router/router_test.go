package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sisgestion/empresas/config"
	"github.com/sisgestion/empresas/internal/api"
	"github.com/sisgestion/empresas/internal/api/auth"
	"github.com/sisgestion/empresas/internal/api/empresa"
)

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, string, string) (*auth.AuthResponse, error) {
	return nil, api.ErrUnauthenticated
}

func (stubAuthService) Register(context.Context, string, string, string) (*auth.AuthResponse, error) {
	return nil, api.ErrUnauthenticated
}

type stubEmpresaService struct{}

func (stubEmpresaService) GetAll(context.Context) ([]empresa.Empresa, error) {
	return []empresa.Empresa{}, nil
}
func (stubEmpresaService) GetByID(context.Context, int) (*empresa.Empresa, error) {
	return nil, api.ErrNotFound
}
func (stubEmpresaService) Create(context.Context, *empresa.Empresa) (*empresa.Empresa, error) {
	return nil, api.ErrNotFound
}
func (stubEmpresaService) Update(context.Context, *empresa.Empresa) error { return nil }
func (stubEmpresaService) Delete(context.Context, int) (bool, error)     { return false, nil }
func (stubEmpresaService) Exists(context.Context, int) (bool, error)     { return false, nil }

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtCfg := config.JWTConfig{SecretKey: "test-secret", Issuer: "empresas-api", Audience: "empresas-spa"}

	return SetupRouter(&Config{
		AuthHandler:            auth.NewAuthHandler(stubAuthService{}, logger),
		EmpresaHandler:         empresa.NewHandler(stubEmpresaService{}, logger),
		AuthenticateMiddleware: auth.Authenticate(logger, jwtCfg),
		CORSOrigins:            []string{"http://localhost:4200"},
	})
}

func TestRouter(t *testing.T) {
	r := setupTestRouter(t)

	t.Run("ping is public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pong", rr.Body.String())
	})

	t.Run("login is public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.ServeHTTP(rr, req)
		// Reaches the handler (400: empty body), not the auth middleware (401).
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empresas require a bearer token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/empresas", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("preflight from the SPA origin is allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/empresas", nil)
		req.Header.Set("Origin", "http://localhost:4200")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, "http://localhost:4200", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
