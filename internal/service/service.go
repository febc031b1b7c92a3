package service

import (
	"context"
	"errors"
	"fmt"

	"donationhub/pkg/types"
)

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	Users(ctx context.Context) ([]*types.User, error)
}

// NGOOwnerLookup resolves the NGO an admin runs, returning nil when the
// admin runs none.
type NGOOwnerLookup interface {
	NGOByAdminID(ctx context.Context, adminID string) (*types.NGO, error)
}

type NGOStore interface {
	NGOOwnerLookup

	NGO(ctx context.Context, ngoID string) (*types.NGO, error)
	NGOs(ctx context.Context) ([]*types.NGO, error)
	NGODetails(ctx context.Context) ([]*types.NGODetail, error)
	NGODetail(ctx context.Context, ngoID string) (*types.NGODetail, error)
	NGODetailByAdminID(ctx context.Context, adminID string) (*types.NGODetail, error)
	UpdateNGO(ctx context.Context, ngoID string, update types.NGOUpdate) (*types.NGO, error)
	UpdateNGOByAdminID(ctx context.Context, adminID string, update types.NGOUpdate) (*types.NGO, error)
	DeleteNGO(ctx context.Context, ngoID string) error
}

type DonationStore interface {
	CreateDonation(ctx context.Context, donation *types.Donation) error
	Donation(ctx context.Context, donationID string) (*types.Donation, error)
	Donations(ctx context.Context, filter types.DonationFilter) ([]*types.DonationRecord, error)
	DonationsPendingFirst(ctx context.Context, filter types.DonationFilter) ([]*types.DonationRecord, error)
	// Decide applies a review only while the donation is still pending and
	// in scope, returning types.ErrAlreadyDecided otherwise.
	Decide(ctx context.Context, decision types.Decision) (*types.Donation, error)
}

// Dispatcher runs a task after the caller has returned.
type Dispatcher interface {
	Dispatch(task string, fn func(ctx context.Context) error)
}

// ownedNGO returns the NGO run by adminID, or nil for an admin without one.
func ownedNGO(ctx context.Context, ngos NGOOwnerLookup, adminID string) (*types.NGO, error) {
	ngo, err := ngos.NGOByAdminID(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ngo for admin %s: %w", adminID, err)
	}
	return ngo, nil
}

func requireAdmin(principal *types.Principal) error {
	if principal == nil || principal.ID == "" {
		return types.Unauthenticatedf("Unauthorized")
	}

	switch principal.Role {
	case types.RoleAdmin:
		return nil
	case types.RoleUser:
		return types.Forbiddenf("Forbidden")
	}

	return types.Forbiddenf("Forbidden")
}

func requireDonor(principal *types.Principal) error {
	if principal == nil || principal.ID == "" {
		return types.Unauthenticatedf("You must be logged in to submit a donation.")
	}

	switch principal.Role {
	case types.RoleUser:
		return nil
	case types.RoleAdmin:
		return types.Forbiddenf("Only users can submit donations.")
	}

	return types.Forbiddenf("Only users can submit donations.")
}

func isNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}
