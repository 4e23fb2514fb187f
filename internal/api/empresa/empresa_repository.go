package empresa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sisgestion/empresas/app/observability/metrics"
	"github.com/sisgestion/empresas/internal/api"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
// Declared here so tests can substitute a pgxmock pool.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ EmpresaRepository = (*PostgresEmpresaRepository)(nil)

// EmpresaRepository is a direct single-table mapping over empresas.
// Not-found is a normal outcome (api.ErrNotFound or a false boolean);
// any other failure is a storage fault the caller surfaces as a 500.
type EmpresaRepository interface {
	GetAll(ctx context.Context) ([]Empresa, error)
	GetByID(ctx context.Context, id int) (*Empresa, error)
	Create(ctx context.Context, e *Empresa) (*Empresa, error)
	// Update overwrites the full row. It does not signal not-found; the
	// endpoint layer confirms existence first.
	Update(ctx context.Context, e *Empresa) error
	Delete(ctx context.Context, id int) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}

type PostgresEmpresaRepository struct {
	logger *slog.Logger
	pgpool PgxPool
}

func NewPostgresEmpresaRepository(pgpool PgxPool, logger *slog.Logger) *PostgresEmpresaRepository {
	return &PostgresEmpresaRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

const empresaColumns = "empresa_id, ced_ruc, razon_social, nom_tit, obligado_contabilidad, fec_doc, estado"

func (r *PostgresEmpresaRepository) GetAll(ctx context.Context) ([]Empresa, error) {
	defer r.observe(ctx, "GetAll", time.Now())

	rows, err := r.pgpool.Query(ctx, "SELECT "+empresaColumns+" FROM empresas ORDER BY empresa_id")
	if err != nil {
		r.countError(ctx)
		return nil, fmt.Errorf("failed to query empresas: %w", err)
	}
	defer rows.Close()

	empresas := []Empresa{}
	for rows.Next() {
		var e Empresa
		if err := rows.Scan(&e.EmpresaID, &e.CedRuc, &e.RazonSocial,
			&e.NombreComercial, &e.ObligadoContabilidad, &e.FechaDoc, &e.Estado); err != nil {
			r.countError(ctx)
			return nil, fmt.Errorf("failed to scan empresa row: %w", err)
		}
		empresas = append(empresas, e)
	}
	if err := rows.Err(); err != nil {
		r.countError(ctx)
		return nil, fmt.Errorf("failed to iterate empresa rows: %w", err)
	}
	return empresas, nil
}

func (r *PostgresEmpresaRepository) GetByID(ctx context.Context, id int) (*Empresa, error) {
	defer r.observe(ctx, "GetByID", time.Now())

	var e Empresa
	err := r.pgpool.QueryRow(ctx,
		"SELECT "+empresaColumns+" FROM empresas WHERE empresa_id = $1",
		id).Scan(&e.EmpresaID, &e.CedRuc, &e.RazonSocial,
		&e.NombreComercial, &e.ObligadoContabilidad, &e.FechaDoc, &e.Estado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		r.countError(ctx)
		return nil, fmt.Errorf("failed to find empresa %d: %w", id, err)
	}
	return &e, nil
}

func (r *PostgresEmpresaRepository) Create(ctx context.Context, e *Empresa) (*Empresa, error) {
	defer r.observe(ctx, "Create", time.Now())

	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO empresas (ced_ruc, razon_social, nom_tit, obligado_contabilidad, fec_doc, estado)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING empresa_id`,
		e.CedRuc, e.RazonSocial, e.NombreComercial,
		e.ObligadoContabilidad, e.FechaDoc, e.Estado).Scan(&e.EmpresaID)
	if err != nil {
		r.countError(ctx)
		return nil, fmt.Errorf("failed to insert empresa: %w", err)
	}
	return e, nil
}

func (r *PostgresEmpresaRepository) Update(ctx context.Context, e *Empresa) error {
	defer r.observe(ctx, "Update", time.Now())

	_, err := r.pgpool.Exec(ctx,
		`UPDATE empresas
         SET ced_ruc = $1, razon_social = $2, nom_tit = $3,
             obligado_contabilidad = $4, fec_doc = $5, estado = $6
         WHERE empresa_id = $7`,
		e.CedRuc, e.RazonSocial, e.NombreComercial,
		e.ObligadoContabilidad, e.FechaDoc, e.Estado, e.EmpresaID)
	if err != nil {
		r.countError(ctx)
		return fmt.Errorf("failed to update empresa %d: %w", e.EmpresaID, err)
	}
	return nil
}

func (r *PostgresEmpresaRepository) Delete(ctx context.Context, id int) (bool, error) {
	defer r.observe(ctx, "Delete", time.Now())

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM empresas WHERE empresa_id = $1", id)
	if err != nil {
		r.countError(ctx)
		return false, fmt.Errorf("failed to delete empresa %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresEmpresaRepository) Exists(ctx context.Context, id int) (bool, error) {
	defer r.observe(ctx, "Exists", time.Now())

	var exists bool
	err := r.pgpool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM empresas WHERE empresa_id = $1)", id).Scan(&exists)
	if err != nil {
		r.countError(ctx)
		return false, fmt.Errorf("failed to check empresa %d: %w", id, err)
	}
	return exists, nil
}

func (r *PostgresEmpresaRepository) observe(ctx context.Context, op string, start time.Time) {
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", op)))
}

func (r *PostgresEmpresaRepository) countError(ctx context.Context) {
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
}
