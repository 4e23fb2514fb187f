package empresa

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the business layer shared by the REST adapter and the
// server-rendered adapter. It stays authentication-agnostic.
type Service interface {
	GetAll(ctx context.Context) ([]Empresa, error)
	GetByID(ctx context.Context, id int) (*Empresa, error)
	Create(ctx context.Context, e *Empresa) (*Empresa, error)
	Update(ctx context.Context, e *Empresa) error
	Delete(ctx context.Context, id int) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   EmpresaRepository
	cache  *gocache.Cache
}

func NewService(repo EmpresaRepository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		// Short-lived read cache for single-row lookups. Every write
		// invalidates the affected id so reads after writes stay exact.
		cache: gocache.New(30*time.Second, time.Minute),
	}
}

func cacheKey(id int) string {
	return strconv.Itoa(id)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Empresa, error) {
	return s.repo.GetAll(ctx)
}

func (s *ServiceImpl) GetByID(ctx context.Context, id int) (*Empresa, error) {
	if cached, found := s.cache.Get(cacheKey(id)); found {
		e := cached.(Empresa)
		return &e, nil
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(cacheKey(id), *e)
	return e, nil
}

func (s *ServiceImpl) Create(ctx context.Context, e *Empresa) (*Empresa, error) {
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Empresa creada",
		slog.Int("empresa_id", created.EmpresaID),
		slog.String("razon_social", created.RazonSocial))
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, e *Empresa) error {
	if err := s.repo.Update(ctx, e); err != nil {
		return err
	}
	s.cache.Delete(cacheKey(e.EmpresaID))
	s.logger.InfoContext(ctx, "Empresa actualizada", slog.Int("empresa_id", e.EmpresaID))
	return nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete empresa: %w", err)
	}
	s.cache.Delete(cacheKey(id))
	if deleted {
		s.logger.InfoContext(ctx, "Empresa eliminada", slog.Int("empresa_id", id))
	}
	return deleted, nil
}

func (s *ServiceImpl) Exists(ctx context.Context, id int) (bool, error) {
	if _, found := s.cache.Get(cacheKey(id)); found {
		return true, nil
	}
	return s.repo.Exists(ctx, id)
}
