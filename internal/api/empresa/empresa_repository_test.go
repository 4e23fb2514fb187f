package empresa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisgestion/empresas/app/observability/metrics"
	"github.com/sisgestion/empresas/internal/api"
)

var empresaRowColumns = []string{
	"empresa_id", "ced_ruc", "razon_social", "nom_tit",
	"obligado_contabilidad", "fec_doc", "estado",
}

func setupEmpresaRepoTest(t *testing.T) (*PostgresEmpresaRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	metrics.InitAppMetrics()

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresEmpresaRepository(mockPool, logger), mockPool
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestPostgresEmpresaRepository_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("returns every row in id order", func(t *testing.T) {
		repo, mockPool := setupEmpresaRepoTest(t)
		rows := pgxmock.NewRows(empresaRowColumns).
			AddRow(1, "0999999999001", "ACME S.A.", strPtr("ACME"), boolPtr(true), strPtr("2024-01-01"), strPtr("ACTIVO")).
			AddRow(2, "0888888888001", "Globex S.A.", nil, nil, nil, nil)
		mockPool.ExpectQuery("SELECT (.+) FROM empresas ORDER BY empresa_id").WillReturnRows(rows)

		empresas, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, empresas, 2)
		assert.Equal(t, 1, empresas[0].EmpresaID)
		assert.Equal(t, "ACME S.A.", empresas[0].RazonSocial)
		assert.Nil(t, empresas[1].NombreComercial)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("empty table yields an empty list, not nil", func(t *testing.T) {
		repo, mockPool := setupEmpresaRepoTest(t)
		mockPool.ExpectQuery("SELECT (.+) FROM empresas ORDER BY empresa_id").
			WillReturnRows(pgxmock.NewRows(empresaRowColumns))

		empresas, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empresas)
		assert.Empty(t, empresas)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		repo, mockPool := setupEmpresaRepoTest(t)
		mockPool.ExpectQuery("SELECT (.+) FROM empresas ORDER BY empresa_id").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetAll(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query empresas")
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresEmpresaRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mockPool := setupEmpresaRepoTest(t)
		rows := pgxmock.NewRows(empresaRowColumns).
			AddRow(7, "0999999999001", "ACME S.A.", nil, nil, nil, nil)
		mockPool.ExpectQuery("SELECT (.+) FROM empresas WHERE empresa_id").
			WithArgs(7).WillReturnRows(rows)

		e, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, e.EmpresaID)
		assert.Equal(t, "0999999999001", e.CedRuc)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("absent id maps to ErrNotFound", func(t *testing.T) {
		repo, mockPool := setupEmpresaRepoTest(t)
		mockPool.ExpectQuery("SELECT (.+) FROM empresas WHERE empresa_id").
			WithArgs(99).WillReturnRows(pgxmock.NewRows(empresaRowColumns))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, api.ErrNotFound)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresEmpresaRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := setupEmpresaRepoTest(t)

	e := &Empresa{
		CedRuc:               "0999999999001",
		RazonSocial:          "ACME S.A.",
		NombreComercial:      strPtr("ACME"),
		ObligadoContabilidad: boolPtr(true),
	}
	mockPool.ExpectQuery("INSERT INTO empresas (.+) RETURNING empresa_id").
		WithArgs(e.CedRuc, e.RazonSocial, e.NombreComercial, e.ObligadoContabilidad, e.FechaDoc, e.Estado).
		WillReturnRows(pgxmock.NewRows([]string{"empresa_id"}).AddRow(42))

	created, err := repo.Create(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, 42, created.EmpresaID)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresEmpresaRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := setupEmpresaRepoTest(t)

	e := &Empresa{EmpresaID: 7, CedRuc: "0999999999001", RazonSocial: "ACME S.A."}
	mockPool.ExpectExec("UPDATE empresas").
		WithArgs(e.CedRuc, e.RazonSocial, e.NombreComercial, e.ObligadoContabilidad, e.FechaDoc, e.Estado, e.EmpresaID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(ctx, e))
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresEmpresaRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing row reports true", func(t *testing.T) {
		repo, mockPool := setupEmpresaRepoTest(t)
		mockPool.ExpectExec("DELETE FROM empresas WHERE empresa_id").
			WithArgs(7).WillReturnResult(pgxmock.NewResult("DELETE", 1))

		deleted, err := repo.Delete(ctx, 7)
		require.NoError(t, err)
		assert.True(t, deleted)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("absent row reports false without error", func(t *testing.T) {
		repo, mockPool := setupEmpresaRepoTest(t)
		mockPool.ExpectExec("DELETE FROM empresas WHERE empresa_id").
			WithArgs(99).WillReturnResult(pgxmock.NewResult("DELETE", 0))

		deleted, err := repo.Delete(ctx, 99)
		require.NoError(t, err)
		assert.False(t, deleted)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresEmpresaRepository_Exists(t *testing.T) {
	ctx := context.Background()
	repo, mockPool := setupEmpresaRepoTest(t)

	mockPool.ExpectQuery("SELECT EXISTS").
		WithArgs(7).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(ctx, 7)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mockPool.ExpectationsWereMet())
}
