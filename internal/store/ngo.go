package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donationhub/internal/utils"
	"donationhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ngoTableName = "donationhub.ngos"

var ngoColumns = utils.StructTagValues(types.NGO{})

type NGORepository struct {
	pool *pgxpool.Pool
}

func NewNGORepository(pool *pgxpool.Pool) *NGORepository {
	return &NGORepository{pool: pool}
}

// ngoDetailSelect joins each NGO with its admin account and counts its
// donations.
func ngoDetailSelect() sq.SelectBuilder {
	columns := append(prefixColumns("n", ngoColumns),
		"u.name AS admin_name",
		"u.email AS admin_email",
		"(SELECT COUNT(*) FROM "+donationTableName+" d WHERE d.ngo_id = n.id) AS donation_count",
	)

	return psql().
		Select(columns...).
		From(ngoTableName + " n").
		LeftJoin(userTableName + " u ON u.id = n.admin_id")
}

func (r *NGORepository) NGO(ctx context.Context, ngoID string) (*types.NGO, error) {
	query, args, err := psql().
		Select(ngoColumns...).
		From(ngoTableName).
		Where(sq.Eq{"id": ngoID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo query: %w", err)
	}

	var ngo types.NGO
	err = pgxscan.Get(ctx, r.pool, &ngo, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNGONotFound
		}
		return nil, fmt.Errorf("failed to fetch ngo: %w", err)
	}

	return &ngo, nil
}

// NGOByAdminID returns the NGO administered by adminID, or nil when the
// admin has none.
func (r *NGORepository) NGOByAdminID(ctx context.Context, adminID string) (*types.NGO, error) {
	query, args, err := psql().
		Select(ngoColumns...).
		From(ngoTableName).
		Where(sq.Eq{"admin_id": adminID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo by admin query: %w", err)
	}

	var ngo types.NGO
	err = pgxscan.Get(ctx, r.pool, &ngo, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch ngo by admin: %w", err)
	}

	return &ngo, nil
}

// NGOs lists the public directory, newest first.
func (r *NGORepository) NGOs(ctx context.Context) ([]*types.NGO, error) {
	query, args, err := psql().
		Select(ngoColumns...).
		From(ngoTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngos query: %w", err)
	}

	ngos := make([]*types.NGO, 0)
	err = pgxscan.Select(ctx, r.pool, &ngos, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ngos: %w", err)
	}

	return ngos, nil
}

func (r *NGORepository) NGODetails(ctx context.Context) ([]*types.NGODetail, error) {
	query, args, err := ngoDetailSelect().
		OrderBy("n.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo details query: %w", err)
	}

	details := make([]*types.NGODetail, 0)
	err = pgxscan.Select(ctx, r.pool, &details, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ngo details: %w", err)
	}

	return details, nil
}

func (r *NGORepository) NGODetail(ctx context.Context, ngoID string) (*types.NGODetail, error) {
	return r.ngoDetail(ctx, sq.Eq{"n.id": ngoID})
}

func (r *NGORepository) NGODetailByAdminID(ctx context.Context, adminID string) (*types.NGODetail, error) {
	return r.ngoDetail(ctx, sq.Eq{"n.admin_id": adminID})
}

func (r *NGORepository) ngoDetail(ctx context.Context, where sq.Eq) (*types.NGODetail, error) {
	query, args, err := ngoDetailSelect().
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo detail query: %w", err)
	}

	var detail types.NGODetail
	err = pgxscan.Get(ctx, r.pool, &detail, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNGONotFound
		}
		return nil, fmt.Errorf("failed to fetch ngo detail: %w", err)
	}

	return &detail, nil
}

// UpsertNGO inserts or refreshes a seeded NGO by ID.
func (r *NGORepository) UpsertNGO(ctx context.Context, ngo *types.NGO) error {
	now := time.Now()
	ngo.CreatedAt = now
	ngo.UpdatedAt = now

	query, args, err := psql().
		Insert(ngoTableName).
		SetMap(utils.StructToMap(ngo)).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, description = EXCLUDED.description, address = EXCLUDED.address, phone = EXCLUDED.phone, website = EXCLUDED.website, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, city = EXCLUDED.city, admin_id = EXCLUDED.admin_id, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert ngo query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert ngo")
}

func (r *NGORepository) UpdateNGO(ctx context.Context, ngoID string, update types.NGOUpdate) (*types.NGO, error) {
	return r.updateNGO(ctx, sq.Eq{"id": ngoID}, update)
}

func (r *NGORepository) UpdateNGOByAdminID(ctx context.Context, adminID string, update types.NGOUpdate) (*types.NGO, error) {
	return r.updateNGO(ctx, sq.Eq{"admin_id": adminID}, update)
}

func (r *NGORepository) updateNGO(ctx context.Context, where sq.Eq, update types.NGOUpdate) (*types.NGO, error) {
	query, args, err := ngoUpdateQuery(where, update, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate update ngo query: %w", err)
	}

	var ngo types.NGO
	err = pgxscan.Get(ctx, r.pool, &ngo, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNGONotFound
		}
		return nil, fmt.Errorf("failed to update ngo: %w", err)
	}

	return &ngo, nil
}

func ngoUpdateQuery(where sq.Eq, update types.NGOUpdate, now time.Time) (string, []any, error) {
	builder := psql().Update(ngoTableName)

	set := func(column string, value any, present bool) {
		if present {
			builder = builder.Set(column, value)
		}
	}

	set("name", update.Name, update.Name != nil)
	set("email", update.Email, update.Email != nil)
	set("description", update.Description, update.Description != nil)
	set("address", update.Address, update.Address != nil)
	set("phone", update.Phone, update.Phone != nil)
	set("website", update.Website, update.Website != nil)
	set("latitude", update.Latitude, update.Latitude != nil)
	set("longitude", update.Longitude, update.Longitude != nil)
	set("city", update.City, update.City != nil)

	return builder.
		Set("updated_at", now).
		Where(where).
		Suffix(returning(ngoColumns)).
		ToSql()
}

// DeleteNGO removes an NGO that has no donations together with its admin
// account. ErrNGOHasDonations is returned when a donation references it.
func (r *NGORepository) DeleteNGO(ctx context.Context, ngoID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin ngo delete transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	deleteQuery, deleteArgs, err := ngoDeleteQuery(ngoID)
	if err != nil {
		return fmt.Errorf("failed to generate ngo delete query: %w", err)
	}

	var adminID *string
	err = tx.QueryRow(ctx, deleteQuery, deleteArgs...).Scan(&adminID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to delete ngo: %w", err)
		}

		// Nothing deleted: either the NGO is gone or it has donations.
		var exists bool
		existsQuery := "SELECT EXISTS (SELECT 1 FROM " + ngoTableName + " WHERE id = $1)"
		if err := tx.QueryRow(ctx, existsQuery, ngoID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check ngo existence: %w", err)
		}
		if !exists {
			return types.ErrNGONotFound
		}
		return types.ErrNGOHasDonations
	}

	if adminID != nil {
		userQuery, userArgs, err := psql().
			Delete(userTableName).
			Where(sq.Eq{"id": *adminID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate ngo admin delete query: %w", err)
		}

		if _, err := tx.Exec(ctx, userQuery, userArgs...); err != nil {
			return fmt.Errorf("failed to delete ngo admin: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ngo delete transaction: %w", err)
	}

	return nil
}

func ngoDeleteQuery(ngoID string) (string, []any, error) {
	return psql().
		Delete(ngoTableName).
		Where(sq.Eq{"id": ngoID}).
		Where(sq.Expr("NOT EXISTS (SELECT 1 FROM "+donationTableName+" d WHERE d.ngo_id = ?)", ngoID)).
		Suffix("RETURNING admin_id").
		ToSql()
}
