package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/sisgestion/empresas/internal/api"
	"github.com/sisgestion/empresas/internal/api/auth"
	"github.com/sisgestion/empresas/internal/api/empresa"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionName = "empresas_session"

// Handler is the server-rendered adapter: the same empresa service as the
// REST API behind a cookie session instead of a bearer token.
type Handler struct {
	logger   *slog.Logger
	store    *sessions.CookieStore
	auth     auth.AuthService
	empresas empresa.Service
	tmpl     *template.Template
}

func NewHandler(authService auth.AuthService, empresaService empresa.Service, sessionKey string, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"deref": func(b *bool) bool { return b != nil && *b },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Handler{
		logger:   logger,
		store:    store,
		auth:     authService,
		empresas: empresaService,
		tmpl:     tmpl,
	}, nil
}

// RegisterRoutes mounts the HTML routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/login", h.LoginForm)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Get("/error", h.ErrorPage)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireLogin)
		r.Get("/empresas", h.Index)
		r.Get("/empresas/new", h.CreateForm)
		r.Post("/empresas/new", h.Create)
		r.Get("/empresas/{id}", h.Details)
		r.Get("/empresas/{id}/edit", h.EditForm)
		r.Post("/empresas/{id}/edit", h.Edit)
		r.Post("/empresas/{id}/delete", h.Delete)
	})
}

// RequireLogin redirects to the login view when the cookie session holds no
// authenticated user.
func (h *Handler) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.store.Get(r, sessionName)
		if email, ok := session.Values["email"].(string); !ok || email == "" {
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginView struct {
	Email   string
	Message string
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", loginView{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", loginView{Message: "Solicitud inválida."})
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	// The cookie surface reuses the same credential check as the API; the
	// issued token is discarded, the cookie session is the credential here.
	resp, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			h.logger.WarnContext(r.Context(), "Web login failed", slog.String("email", email))
			h.render(w, r, "login.html", loginView{Email: email, Message: "Credenciales inválidas."})
			return
		}
		h.logger.ErrorContext(r.Context(), "Web login error", slog.Any("error", err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}

	session, _ := h.store.Get(r, sessionName)
	session.Values["email"] = resp.Email
	if err := session.Save(r, w); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to save session", slog.Any("error", err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/empresas", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, sessionName)
	// Drop the values too, not just the cookie lifetime, so a replayed
	// cookie holds no identity.
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

func (h *Handler) ErrorPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "error.html", nil)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	empresas, err := h.empresas.GetAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list empresas", slog.Any("error", err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	h.render(w, r, "index.html", empresas)
}

func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	e, ok := h.loadEmpresa(w, r)
	if !ok {
		return
	}
	h.render(w, r, "details.html", e)
}

type formView struct {
	Empresa empresa.Empresa
	Errors  []string
	IsEdit  bool
}

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "form.html", formView{})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	e, err := empresaFromForm(r)
	if err != nil {
		h.notFound(w, r)
		return
	}
	if errs := e.Validate(); len(errs) > 0 {
		h.render(w, r, "form.html", formView{Empresa: *e, Errors: errs})
		return
	}
	if _, err := h.empresas.Create(r.Context(), e); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to create empresa", slog.Any("error", err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/empresas", http.StatusFound)
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	e, ok := h.loadEmpresa(w, r)
	if !ok {
		return
	}
	h.render(w, r, "form.html", formView{Empresa: *e, IsEdit: true})
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r)
		return
	}

	e, err := empresaFromForm(r)
	if err != nil {
		h.notFound(w, r)
		return
	}
	if id != e.EmpresaID {
		h.notFound(w, r)
		return
	}
	if errs := e.Validate(); len(errs) > 0 {
		h.render(w, r, "form.html", formView{Empresa: *e, Errors: errs, IsEdit: true})
		return
	}

	// Same raced-delete behavior as the API adapter: confirm existence,
	// then overwrite.
	exists, err := h.empresas.Exists(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to check empresa", slog.Any("error", err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	if !exists {
		h.notFound(w, r)
		return
	}

	if err := h.empresas.Update(r.Context(), e); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to update empresa", slog.Any("error", err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/empresas", http.StatusFound)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r)
		return
	}
	// A repeated delete finds nothing; that is benign here.
	if _, err := h.empresas.Delete(r.Context(), id); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to delete empresa", slog.Any("error", err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/empresas", http.StatusFound)
}

func (h *Handler) loadEmpresa(w http.ResponseWriter, r *http.Request) (*empresa.Empresa, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r)
		return nil, false
	}
	e, err := h.empresas.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			h.notFound(w, r)
			return nil, false
		}
		h.logger.ErrorContext(r.Context(), "Failed to load empresa", slog.Any("error", err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return nil, false
	}
	return e, true
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	if err := h.tmpl.ExecuteTemplate(w, "notfound.html", nil); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render template", slog.Any("error", err))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render template",
			slog.String("template", name), slog.Any("error", err))
	}
}

// empresaFromForm binds the posted form fields onto an Empresa. Optional
// fields left blank stay nil.
func empresaFromForm(r *http.Request) (*empresa.Empresa, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	e := &empresa.Empresa{
		CedRuc:      r.PostFormValue("cedRuc"),
		RazonSocial: r.PostFormValue("razonSocial"),
	}
	if raw := r.PostFormValue("empresaId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		e.EmpresaID = id
	}
	if v := r.PostFormValue("nombreComercial"); v != "" {
		e.NombreComercial = &v
	}
	// The checkbox is paired with a hidden "false" input, so a submission
	// always carries the field: "true" wins when checked, "false" when not,
	// and only a form without the field at all leaves the flag nil.
	if vals, ok := r.PostForm["obligadoContabilidad"]; ok && len(vals) > 0 {
		checked := false
		for _, v := range vals {
			if v == "true" {
				checked = true
			}
		}
		e.ObligadoContabilidad = &checked
	}
	if v := r.PostFormValue("fechaDoc"); v != "" {
		e.FechaDoc = &v
	}
	if v := r.PostFormValue("estado"); v != "" {
		e.Estado = &v
	}
	return e, nil
}
