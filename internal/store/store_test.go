package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"donationhub/internal/utils"
	"donationhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestDecideQuery_GuardsOnPendingStatus(t *testing.T) {
	decidedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	query, args, err := decideQuery(types.Decision{
		DonationID:  "don-1",
		Status:      types.DonationStatusApproved,
		AdminNotes:  utils.StringPtr("looks good"),
		AssignNGOID: utils.StringPtr("ngo-1"),
		ScopeNGOID:  utils.StringPtr("ngo-1"),
		DecidedAt:   decidedAt,
	})
	if err != nil {
		t.Fatalf("decideQuery returned error: %v", err)
	}

	wantPrefix := "UPDATE donationhub.donations SET status = $1, admin_notes = $2, ngo_id = COALESCE(ngo_id, $3), updated_at = $4 WHERE id = $5 AND status = $6 AND (ngo_id IS NULL OR ngo_id = $7) RETURNING "
	if !strings.HasPrefix(query, wantPrefix) {
		t.Fatalf("unexpected query:\n got: %s\nwant prefix: %s", query, wantPrefix)
	}

	if !strings.HasSuffix(query, returning(donationColumns)) {
		t.Fatalf("expected query to return donation columns, got %s", query)
	}

	if len(args) != 7 {
		t.Fatalf("expected 7 args, got %d: %v", len(args), args)
	}
	if args[0] != "APPROVED" {
		t.Fatalf("expected status arg APPROVED, got %#v", args[0])
	}
	if args[4] != "don-1" {
		t.Fatalf("expected donation id arg, got %#v", args[4])
	}
	if args[5] != "PENDING" {
		t.Fatalf("expected pending guard arg, got %#v", args[5])
	}
	if args[6] != "ngo-1" {
		t.Fatalf("expected scope arg ngo-1, got %#v", args[6])
	}
}

func TestDecideQuery_UnscopedForAdminWithoutNGO(t *testing.T) {
	query, args, err := decideQuery(types.Decision{
		DonationID: "don-2",
		Status:     types.DonationStatusRejected,
		DecidedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("decideQuery returned error: %v", err)
	}

	if strings.Contains(query, "ngo_id IS NULL") {
		t.Fatalf("expected no scope clause, got %s", query)
	}
	if !strings.Contains(query, "WHERE id = $5 AND status = $6 RETURNING") {
		t.Fatalf("expected id and status guard only, got %s", query)
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(args))
	}
}

func TestNGODeleteQuery_RequiresNoDonations(t *testing.T) {
	query, args, err := ngoDeleteQuery("ngo-9")
	if err != nil {
		t.Fatalf("ngoDeleteQuery returned error: %v", err)
	}

	want := "DELETE FROM donationhub.ngos WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM donationhub.donations d WHERE d.ngo_id = $2) RETURNING admin_id"
	if query != want {
		t.Fatalf("unexpected query:\n got: %s\nwant: %s", query, want)
	}

	if len(args) != 2 || args[0] != "ngo-9" || args[1] != "ngo-9" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestNGOUpdateQuery_SetsOnlyProvidedFields(t *testing.T) {
	now := time.Now()

	query, args, err := ngoUpdateQuery(sq.Eq{"admin_id": "admin-1"}, types.NGOUpdate{
		Name:     utils.StringPtr("Seva Trust"),
		Latitude: utils.Float64Ptr(18.52),
	}, now)
	if err != nil {
		t.Fatalf("ngoUpdateQuery returned error: %v", err)
	}

	wantPrefix := "UPDATE donationhub.ngos SET name = $1, latitude = $2, updated_at = $3 WHERE admin_id = $4 RETURNING "
	if !strings.HasPrefix(query, wantPrefix) {
		t.Fatalf("unexpected query:\n got: %s\nwant prefix: %s", query, wantPrefix)
	}

	for _, column := range []string{"email =", "description =", "city ="} {
		if strings.Contains(query, column) {
			t.Fatalf("expected %q to be left alone, got %s", column, query)
		}
	}

	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
}

func TestDonationSelect_PoolOnlyWinsOverNGO(t *testing.T) {
	status := types.DonationStatusPending

	query, args, err := donationSelect(types.DonationFilter{
		NGOID:    utils.StringPtr("ngo-1"),
		Status:   &status,
		PoolOnly: true,
	}).ToSql()
	if err != nil {
		t.Fatalf("donationSelect returned error: %v", err)
	}

	if !strings.Contains(query, "WHERE d.ngo_id IS NULL AND d.status = $1") {
		t.Fatalf("expected pool and status filters, got %s", query)
	}
	if strings.Contains(query, "d.ngo_id = $") {
		t.Fatalf("expected ngo filter to be ignored for pool listing, got %s", query)
	}
	if len(args) != 1 || args[0] != "PENDING" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestDonationSelect_JoinsDonorAndNGO(t *testing.T) {
	query, _, err := donationSelect(types.DonationFilter{UserID: utils.StringPtr("user-1")}).ToSql()
	if err != nil {
		t.Fatalf("donationSelect returned error: %v", err)
	}

	for _, fragment := range []string{
		"d.id, d.user_id",
		"d.needs_pickup",
		"u.email AS donor_email",
		"n.name AS ngo_name",
		"JOIN donationhub.users u ON u.id = d.user_id",
		"LEFT JOIN donationhub.ngos n ON n.id = d.ngo_id",
		"WHERE d.user_id = $1",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected %q in query, got %s", fragment, query)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	if !isUniqueViolation(fmt.Errorf("exec: %w", dup)) {
		t.Fatal("expected wrapped unique violation to be detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("connection reset")) {
		t.Fatal("plain error is not a unique violation")
	}

	if !errors.Is(errEmailTaken, types.ErrValidation) {
		t.Fatalf("expected email conflict to be a validation error, got %v", errEmailTaken)
	}
}
