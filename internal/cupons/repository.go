package cupons

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

const cuponColumns = `id, codigo, descuento, fecha_expiracion, activo, uso_maximo, uso_actual, version`

const uniqueViolation = "23505"

type cuponRow struct {
	ID              string    `db:"id"`
	Codigo          string    `db:"codigo"`
	Descuento       float64   `db:"descuento"`
	FechaExpiracion time.Time `db:"fecha_expiracion"`
	Activo          bool      `db:"activo"`
	UsoMaximo       int       `db:"uso_maximo"`
	UsoActual       int       `db:"uso_actual"`
	Version         int       `db:"version"`
}

func toCuponRow(c *domain.Cupon) cuponRow {
	return cuponRow{
		ID:              c.ID,
		Codigo:          c.Codigo,
		Descuento:       c.Descuento,
		FechaExpiracion: c.FechaExpiracion.Time,
		Activo:          c.Activo,
		UsoMaximo:       c.UsoMaximo,
		UsoActual:       c.UsoActual,
		Version:         c.Version,
	}
}

func (r cuponRow) toDomain() *domain.Cupon {
	return &domain.Cupon{
		ID:              r.ID,
		Codigo:          r.Codigo,
		Descuento:       r.Descuento,
		FechaExpiracion: domain.DateOf(r.FechaExpiracion),
		Activo:          r.Activo,
		UsoMaximo:       r.UsoMaximo,
		UsoActual:       r.UsoActual,
		Version:         r.Version,
	}
}

type CuponRepository struct {
	db *sqlx.DB
}

func NewCuponRepository(db *sqlx.DB) *CuponRepository {
	return &CuponRepository{db: db}
}

func (r *CuponRepository) List(ctx context.Context) ([]domain.Cupon, error) {
	return r.selectMany(ctx, `
		SELECT `+cuponColumns+`
		FROM cupons
		ORDER BY created_at DESC
	`)
}

func (r *CuponRepository) ListActive(ctx context.Context) ([]domain.Cupon, error) {
	return r.selectMany(ctx, `
		SELECT `+cuponColumns+`
		FROM cupons
		WHERE activo
		ORDER BY created_at DESC
	`)
}

func (r *CuponRepository) GetByID(ctx context.Context, id string) (*domain.Cupon, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return r.selectOne(ctx, `SELECT `+cuponColumns+` FROM cupons WHERE id = $1`, id)
}

func (r *CuponRepository) GetByCodigo(ctx context.Context, codigo string) (*domain.Cupon, error) {
	return r.selectOne(ctx, `SELECT `+cuponColumns+` FROM cupons WHERE codigo = $1`, domain.NormalizeCodigo(codigo))
}

func (r *CuponRepository) Create(ctx context.Context, cupon *domain.Cupon) error {
	cupon.ID = uuid.New().String()
	cupon.Version = 1

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cupons (`+cuponColumns+`, created_at, updated_at)
		VALUES (:id, :codigo, :descuento, :fecha_expiracion, :activo, :uso_maximo, :uso_actual, :version, NOW(), NOW())
	`, toCuponRow(cupon))
	if isUniqueViolation(err) {
		return domain.Errorf(domain.ErrConflict, "cupon with codigo %s already exists", cupon.Codigo)
	}
	return err
}

// Update replaces the stored cupon if its version still equals
// cupon.Version and bumps the version on success.
func (r *CuponRepository) Update(ctx context.Context, cupon *domain.Cupon) error {
	row := toCuponRow(cupon)

	result, err := r.db.ExecContext(ctx, `
		UPDATE cupons
		SET codigo = $3, descuento = $4, fecha_expiracion = $5, activo = $6,
		    uso_maximo = $7, uso_actual = $8, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, row.ID, row.Version, row.Codigo, row.Descuento, row.FechaExpiracion, row.Activo, row.UsoMaximo, row.UsoActual)
	if isUniqueViolation(err) {
		return domain.Errorf(domain.ErrConflict, "cupon with codigo %s already exists", cupon.Codigo)
	}
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM cupons WHERE id = $1)`, row.ID); err != nil {
			return err
		}
		if !exists {
			return domain.Errorf(domain.ErrNotFound, "cupon not found")
		}
		return domain.Errorf(domain.ErrConflict, "cupon was modified concurrently")
	}

	cupon.Version++
	return nil
}

func (r *CuponRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM cupons WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *CuponRepository) Redeem(ctx context.Context, id string, today domain.Date) (*domain.Cupon, error) {
	return r.selectOne(ctx, `
		UPDATE cupons
		SET uso_actual = uso_actual + 1, version = version + 1, updated_at = NOW()
		WHERE id = $1
		  AND activo
		  AND uso_actual < uso_maximo
		  AND fecha_expiracion >= $2
		RETURNING `+cuponColumns, id, today.Time)
}

func (r *CuponRepository) selectOne(ctx context.Context, query string, args ...any) (*domain.Cupon, error) {
	var row cuponRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *CuponRepository) selectMany(ctx context.Context, query string, args ...any) ([]domain.Cupon, error) {
	var rows []cuponRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	cupons := make([]domain.Cupon, 0, len(rows))
	for _, row := range rows {
		cupons = append(cupons, *row.toDomain())
	}
	return cupons, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
