package orders

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

const orderColumns = `id, producto, descripcion, cantidad, precio, descuento, total, cliente, estado, fecha_entrega, version`

type orderRow struct {
	ID           string    `db:"id"`
	Producto     string    `db:"producto"`
	Descripcion  string    `db:"descripcion"`
	Cantidad     int       `db:"cantidad"`
	Precio       float64   `db:"precio"`
	Descuento    float64   `db:"descuento"`
	Total        float64   `db:"total"`
	Cliente      string    `db:"cliente"`
	Estado       string    `db:"estado"`
	FechaEntrega time.Time `db:"fecha_entrega"`
	Version      int       `db:"version"`
}

func toOrderRow(o *domain.Order) orderRow {
	return orderRow{
		ID:           o.ID,
		Producto:     o.Producto,
		Descripcion:  o.Descripcion,
		Cantidad:     o.Cantidad,
		Precio:       o.Precio,
		Descuento:    o.Descuento,
		Total:        o.Total,
		Cliente:      o.Cliente,
		Estado:       string(o.Estado),
		FechaEntrega: o.FechaEntrega.Time,
		Version:      o.Version,
	}
}

func (r orderRow) toDomain() domain.Order {
	return domain.Order{
		ID:           r.ID,
		Producto:     r.Producto,
		Descripcion:  r.Descripcion,
		Cantidad:     r.Cantidad,
		Precio:       r.Precio,
		Descuento:    r.Descuento,
		Total:        r.Total,
		Cliente:      r.Cliente,
		Estado:       domain.OrderStatus(r.Estado),
		FechaEntrega: domain.DateOf(r.FechaEntrega),
		Version:      r.Version,
	}
}

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

func (r *OrderRepository) ListByEstado(ctx context.Context, estado domain.OrderStatus) ([]domain.Order, error) {
	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE estado = $1
		ORDER BY created_at DESC
	`, string(estado))
	if err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var row orderRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	order := row.toDomain()
	return &order, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	order.ID = uuid.New().String()
	order.Version = 1

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`, created_at, updated_at)
		VALUES (:id, :producto, :descripcion, :cantidad, :precio, :descuento, :total, :cliente, :estado, :fecha_entrega, :version, NOW(), NOW())
	`, toOrderRow(order))
	return err
}

// Update replaces the stored order if its version still equals order.Version
// and bumps the version on success.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	row := toOrderRow(order)

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET producto = $3, descripcion = $4, cantidad = $5, precio = $6, descuento = $7,
		    total = $8, cliente = $9, estado = $10, fecha_entrega = $11,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, row.ID, row.Version, row.Producto, row.Descripcion, row.Cantidad, row.Precio, row.Descuento,
		row.Total, row.Cliente, row.Estado, row.FechaEntrega)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, row.ID); err != nil {
			return err
		}
		if !exists {
			return domain.Errorf(domain.ErrNotFound, "order not found")
		}
		return domain.Errorf(domain.ErrConflict, "order was modified concurrently")
	}

	order.Version++
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func toOrders(rows []orderRow) []domain.Order {
	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toDomain())
	}
	return orders
}
