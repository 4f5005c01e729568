package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo órdenes de traspaso con sus líneas (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, source_id, destination_id, status, notes, created_by, completed_by,
	created_at, updated_at, completed_at`

func (r *TransferRepo) Create(ctx context.Context, o *entity.TransferOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfer_orders (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.SourceID, o.DestinationID, o.Status, o.Notes, o.CreatedBy, o.CompletedBy,
		o.CreatedAt, o.UpdatedAt, o.CompletedAt)
	if err != nil {
		return mapWriteError("insert transfer", err)
	}
	for _, it := range o.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_order_items (id, transfer_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)`,
			it.ID, o.ID, it.ProductID, it.Quantity)
		if err != nil {
			return mapWriteError("insert transfer item", err)
		}
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.TransferOrder, error) {
	return r.get(ctx, id, "")
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferOrder, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *TransferRepo) get(ctx context.Context, id, suffix string) (*entity.TransferOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfer_orders WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	items, err := r.itemsFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *TransferRepo) UpdateStatus(ctx context.Context, o *entity.TransferOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE transfer_orders
		SET status = $2, completed_by = $3, completed_at = $4, updated_at = $5
		WHERE id = $1`,
		o.ID, o.Status, o.CompletedBy, o.CompletedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: traspaso %s", domain.ErrNotFound, o.ID)
	}
	return nil
}

func (r *TransferRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.TransferOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+transferColumns+` FROM transfer_orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		status, listLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	var (
		list []*entity.TransferOrder
		ids  []string
	)
	for rows.Next() {
		o, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, nil
}

func (r *TransferRepo) itemsFor(ctx context.Context, ids []string) (map[string][]*entity.TransferOrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, product_id, quantity
		FROM transfer_order_items WHERE transfer_id = ANY($1)
		ORDER BY product_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]*entity.TransferOrderItem, len(ids))
	for rows.Next() {
		var it entity.TransferOrderItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		out[it.TransferID] = append(out[it.TransferID], &it)
	}
	return out, rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.TransferOrder, error) {
	var o entity.TransferOrder
	if err := row.Scan(&o.ID, &o.SourceID, &o.DestinationID, &o.Status, &o.Notes, &o.CreatedBy,
		&o.CompletedBy, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
