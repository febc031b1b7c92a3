package store

import (
	"context"
	"fmt"
	"time"

	"donationhub/internal/utils"
	"donationhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const donationTableName = "donationhub.donations"

var donationColumns = utils.StructTagValues(types.Donation{})

// pendingFirst orders PENDING before APPROVED before REJECTED.
const pendingFirst = "CASE d.status WHEN 'PENDING' THEN 0 WHEN 'APPROVED' THEN 1 ELSE 2 END"

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

func (r *DonationRepository) CreateDonation(ctx context.Context, donation *types.Donation) error {

	now := time.Now()
	donation.ID = utils.NanoID()
	donation.CreatedAt = now
	donation.UpdatedAt = now

	query, args, err := psql().
		Insert(donationTableName).
		SetMap(utils.StructToMap(donation)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donation query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create donation")
}

func (r *DonationRepository) Donation(ctx context.Context, donationID string) (*types.Donation, error) {

	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"id": donationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation query: %w", err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, r.pool, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation: %w", err)
	}

	return &donation, nil
}

// Donations lists donations with their donor and NGO, newest first.
func (r *DonationRepository) Donations(ctx context.Context, filter types.DonationFilter) ([]*types.DonationRecord, error) {
	return r.donationRecords(ctx, donationSelect(filter).OrderBy("d.created_at DESC"))
}

// DonationsPendingFirst lists donations with pending ones on top, each group
// newest first.
func (r *DonationRepository) DonationsPendingFirst(ctx context.Context, filter types.DonationFilter) ([]*types.DonationRecord, error) {
	return r.donationRecords(ctx, donationSelect(filter).OrderBy(pendingFirst, "d.created_at DESC"))
}

func (r *DonationRepository) donationRecords(ctx context.Context, builder sq.SelectBuilder) ([]*types.DonationRecord, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations query: %w", err)
	}

	records := make([]*types.DonationRecord, 0)
	err = pgxscan.Select(ctx, r.pool, &records, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donations: %w", err)
	}

	return records, nil
}

func donationSelect(filter types.DonationFilter) sq.SelectBuilder {
	columns := append(prefixColumns("d", donationColumns),
		"u.name AS donor_name",
		"u.email AS donor_email",
		"n.name AS ngo_name",
	)

	builder := psql().
		Select(columns...).
		From(donationTableName + " d").
		Join(userTableName + " u ON u.id = d.user_id").
		LeftJoin(ngoTableName + " n ON n.id = d.ngo_id")

	if filter.UserID != nil {
		builder = builder.Where(sq.Eq{"d.user_id": *filter.UserID})
	}

	if filter.PoolOnly {
		builder = builder.Where(sq.Eq{"d.ngo_id": nil})
	} else if filter.NGOID != nil {
		builder = builder.Where(sq.Eq{"d.ngo_id": *filter.NGOID})
	}

	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"d.status": string(*filter.Status)})
	}

	return builder
}

// Decide moves a pending donation to its final status in one statement.
// It returns ErrAlreadyDecided when no pending row in scope matched, which
// is how a concurrent reviewer losing the race finds out.
func (r *DonationRepository) Decide(ctx context.Context, decision types.Decision) (*types.Donation, error) {
	query, args, err := decideQuery(decision)
	if err != nil {
		return nil, fmt.Errorf("failed to generate decide donation query: %w", err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, r.pool, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("failed to decide donation %s: %w", decision.DonationID, err)
	}

	return &donation, nil
}

func decideQuery(decision types.Decision) (string, []any, error) {
	builder := psql().
		Update(donationTableName).
		Set("status", string(decision.Status)).
		Set("admin_notes", decision.AdminNotes).
		Set("ngo_id", sq.Expr("COALESCE(ngo_id, ?)", decision.AssignNGOID)).
		Set("updated_at", decision.DecidedAt).
		Where(sq.Eq{"id": decision.DonationID}).
		Where(sq.Eq{"status": string(types.DonationStatusPending)})

	if decision.ScopeNGOID != nil {
		builder = builder.Where(sq.Or{
			sq.Eq{"ngo_id": nil},
			sq.Eq{"ngo_id": *decision.ScopeNGOID},
		})
	}

	return builder.Suffix(returning(donationColumns)).ToSql()
}
