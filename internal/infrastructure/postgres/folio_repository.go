package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var (
	_ repository.FolioRepository        = (*FolioRepo)(nil)
	_ repository.FolioHistoryRepository = (*FolioHistoryRepo)(nil)
)

// FolioRepo agregado folio_requests + folio_items (usable con pool o tx).
type FolioRepo struct {
	q Querier
}

// NewFolioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFolioRepository(q Querier) *FolioRepo {
	return &FolioRepo{q: q}
}

const folioColumns = `id, folio_number, requester_id, hospital_id, status, priority, metadata, notes,
	rejected_by, rejection_reason, created_at, updated_at`

// Create persiste encabezado y líneas. ErrDuplicate si el folio_number ya existe.
func (r *FolioRepo) Create(ctx context.Context, f *entity.FolioRequest) error {
	metadata, err := json.Marshal(f.Metadata)
	if err != nil {
		return fmt.Errorf("marshal folio metadata: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO folio_requests (`+folioColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		f.ID, f.FolioNumber, f.RequesterID, f.HospitalID, f.Status, f.Priority, metadata, f.Notes,
		f.RejectedBy, f.RejectionReason, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert folio", err)
	}
	for _, it := range f.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO folio_items (id, folio_id, product_id, quantity_requested, quantity_approved, quantity_received, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, f.ID, it.ProductID, it.QuantityRequested, it.QuantityApproved, it.QuantityReceived, it.CreatedAt,
		)
		if err != nil {
			return mapWriteError("insert folio item", err)
		}
	}
	return nil
}

func (r *FolioRepo) GetByID(ctx context.Context, id string) (*entity.FolioRequest, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea el encabezado; las líneas solo se modifican con el encabezado bloqueado.
func (r *FolioRepo) GetForUpdate(ctx context.Context, id string) (*entity.FolioRequest, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *FolioRepo) get(ctx context.Context, id, suffix string) (*entity.FolioRequest, error) {
	if !validID(id) {
		return nil, nil
	}
	f, err := scanFolio(r.q.QueryRow(ctx, `SELECT `+folioColumns+` FROM folio_requests WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folio: %w", err)
	}
	items, err := r.itemsFor(ctx, []string{f.ID})
	if err != nil {
		return nil, err
	}
	f.Items = items[f.ID]
	return f, nil
}

func (r *FolioRepo) UpdateStatus(ctx context.Context, f *entity.FolioRequest) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE folio_requests
		SET status = $2, rejected_by = $3, rejection_reason = $4, updated_at = $5
		WHERE id = $1`,
		f.ID, f.Status, f.RejectedBy, f.RejectionReason, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update folio status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: folio %s", domain.ErrNotFound, f.ID)
	}
	return nil
}

func (r *FolioRepo) UpdateItems(ctx context.Context, items []*entity.FolioItem) error {
	for _, it := range items {
		tag, err := r.q.Exec(ctx, `
			UPDATE folio_items SET quantity_approved = $3, quantity_received = $4
			WHERE id = $1 AND folio_id = $2`,
			it.ID, it.FolioID, it.QuantityApproved, it.QuantityReceived)
		if err != nil {
			return mapWriteError("update folio item", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, it.ID)
		}
	}
	return nil
}

// List devuelve los folios más recientes primero, con sus líneas.
func (r *FolioRepo) List(ctx context.Context, f repository.FolioFilter) ([]*entity.FolioRequest, error) {
	query := `SELECT ` + folioColumns + ` FROM folio_requests WHERE true`
	var args []any
	pos := 1
	if f.HospitalID != "" {
		if !validID(f.HospitalID) {
			return nil, nil
		}
		query += fmt.Sprintf(" AND hospital_id = $%d", pos)
		args = append(args, f.HospitalID)
		pos++
	}
	if f.RequesterID != "" {
		query += fmt.Sprintf(" AND requester_id = $%d", pos)
		args = append(args, f.RequesterID)
		pos++
	}
	if len(f.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", pos)
		args = append(args, f.Statuses)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, folio_number DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, listLimit(f.Limit), f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folios: %w", err)
	}
	var (
		list []*entity.FolioRequest
		ids  []string
	)
	for rows.Next() {
		folio, err := scanFolio(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan folio: %w", err)
		}
		list = append(list, folio)
		ids = append(ids, folio.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list folios: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, folio := range list {
		folio.Items = items[folio.ID]
	}
	return list, nil
}

func (r *FolioRepo) itemsFor(ctx context.Context, folioIDs []string) (map[string][]*entity.FolioItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, folio_id, product_id, quantity_requested, quantity_approved, quantity_received, created_at
		FROM folio_items WHERE folio_id = ANY($1)
		ORDER BY created_at, product_id`, folioIDs)
	if err != nil {
		return nil, fmt.Errorf("list folio items: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]*entity.FolioItem, len(folioIDs))
	for rows.Next() {
		var it entity.FolioItem
		if err := rows.Scan(&it.ID, &it.FolioID, &it.ProductID, &it.QuantityRequested,
			&it.QuantityApproved, &it.QuantityReceived, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan folio item: %w", err)
		}
		out[it.FolioID] = append(out[it.FolioID], &it)
	}
	return out, rows.Err()
}

func scanFolio(row pgx.Row) (*entity.FolioRequest, error) {
	var (
		f        entity.FolioRequest
		metadata []byte
	)
	if err := row.Scan(&f.ID, &f.FolioNumber, &f.RequesterID, &f.HospitalID, &f.Status, &f.Priority,
		&metadata, &f.Notes, &f.RejectedBy, &f.RejectionReason, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &f.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal folio metadata: %w", err)
		}
	}
	return &f, nil
}

// FolioHistoryRepo bitácora append-only de transiciones.
type FolioHistoryRepo struct {
	q Querier
}

// NewFolioHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFolioHistoryRepository(q Querier) *FolioHistoryRepo {
	return &FolioHistoryRepo{q: q}
}

func (r *FolioHistoryRepo) Append(ctx context.Context, e *entity.FolioHistoryEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO folio_history (id, folio_id, actor_id, action, previous_status, new_status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.FolioID, e.ActorID, e.Action, e.PreviousStatus, e.NewStatus, e.Notes, e.CreatedAt)
	if err != nil {
		return mapWriteError("append folio history", err)
	}
	return nil
}

// ListByFolio devuelve la bitácora en orden cronológico.
func (r *FolioHistoryRepo) ListByFolio(ctx context.Context, folioID string) ([]*entity.FolioHistoryEntry, error) {
	if !validID(folioID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, folio_id, actor_id, action, previous_status, new_status, notes, created_at
		FROM folio_history WHERE folio_id = $1
		ORDER BY created_at, id`, folioID)
	if err != nil {
		return nil, fmt.Errorf("list folio history: %w", err)
	}
	defer rows.Close()
	var list []*entity.FolioHistoryEntry
	for rows.Next() {
		var e entity.FolioHistoryEntry
		if err := rows.Scan(&e.ID, &e.FolioID, &e.ActorID, &e.Action, &e.PreviousStatus,
			&e.NewStatus, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan folio history: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
