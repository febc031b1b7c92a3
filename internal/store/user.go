package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"donationhub/internal/utils"
	"donationhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "donationhub.users"

var userColumns = utils.StructTagValues(types.User{})

// errEmailTaken is returned when another account already holds the email a
// sign-in carries.
var errEmailTaken = types.Validationf("An account with this email already exists. Contact an administrator to link it.")

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// Users returns every account, newest first.
func (r *UserRepository) Users(ctx context.Context) ([]*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate users query: %w", err)
	}

	users := make([]*types.User, 0)
	err = pgxscan.Select(ctx, r.pool, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, nil
}

// UpsertProfile writes the profile columns of a seeded account. The role is
// only written on insert.
func (r *UserRepository) UpsertProfile(ctx context.Context, user *types.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, city = EXCLUDED.city, country = EXCLUDED.country, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// UpsertIdentity records the identity provider's view of an account. New
// accounts are donors; an existing account keeps its role.
func (r *UserRepository) UpsertIdentity(ctx context.Context, userID, email, name string) error {
	now := time.Now()

	query, args, err := psql().
		Insert(userTableName).
		Columns("id", "email", "name", "role", "created_at", "updated_at").
		Values(userID, strings.TrimSpace(email), nullable(strings.TrimSpace(name)), types.RoleUser, now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = COALESCE(EXCLUDED.name, " + userTableName + ".name), updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert identity user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return errEmailTaken
		}
		return fmt.Errorf("failed to upsert user identity fields: %w", err)
	}

	return nil
}
