package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"donationhub/internal/notify"
	"donationhub/internal/utils"
	"donationhub/pkg/types"

	"github.com/sirupsen/logrus"
)

const defaultDonorName = "Donor"

type ReviewService struct {
	logger     *logrus.Logger
	donations  DonationStore
	ngos       NGOOwnerLookup
	users      UserStore
	notifier   notify.Notifier
	dispatcher Dispatcher

	now func() time.Time
}

func NewReviewService(
	logger *logrus.Logger,
	donations DonationStore,
	ngos NGOOwnerLookup,
	users UserStore,
	notifier notify.Notifier,
	dispatcher Dispatcher,
) *ReviewService {
	return &ReviewService{
		logger:     logger,
		donations:  donations,
		ngos:       ngos,
		users:      users,
		notifier:   notifier,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// ListForAdmin returns the donations an admin manages together with the
// pending pool. An admin without an NGO manages every donation.
func (s *ReviewService) ListForAdmin(ctx context.Context, principal *types.Principal) (*types.AdminDonations, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	ngo, err := ownedNGO(ctx, s.ngos, principal.ID)
	if err != nil {
		return nil, err
	}

	var filter types.DonationFilter
	if ngo != nil {
		filter.NGOID = &ngo.ID
	}

	donations, err := s.donations.Donations(ctx, filter)
	if err != nil {
		return nil, err
	}

	pending := types.DonationStatusPending
	pool, err := s.donations.Donations(ctx, types.DonationFilter{PoolOnly: true, Status: &pending})
	if err != nil {
		return nil, err
	}

	return &types.AdminDonations{
		Donations:     donations,
		PoolDonations: pool,
		Stats:         donationStats(donations, pool),
	}, nil
}

// donationStats counts statuses over donations. Pickup counts run over both
// lists, so a pool donation an admin without an NGO also sees in donations is
// counted twice.
func donationStats(donations, pool []*types.DonationRecord) types.DonationStats {
	stats := types.DonationStats{
		TotalDonations: len(donations),
		PoolDonations:  len(pool),
	}

	for _, d := range donations {
		switch d.Status {
		case types.DonationStatusPending:
			stats.PendingDonations++
		case types.DonationStatusApproved:
			stats.ApprovedDonations++
		case types.DonationStatusRejected:
			stats.RejectedDonations++
		}
	}

	for _, list := range [][]*types.DonationRecord{donations, pool} {
		for _, d := range list {
			if !d.NeedsPickup {
				continue
			}
			stats.PickupRequests++
			if d.PickupPending() {
				stats.PendingPickups++
			}
		}
	}

	return stats
}

// Review approves or rejects a pending donation. Checks run in a fixed order
// and the first failure is returned.
func (s *ReviewService) Review(ctx context.Context, principal *types.Principal, donationID string, action types.ReviewAction, adminNotes *string) (*types.ReviewedDonation, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	donationID = strings.TrimSpace(donationID)
	if donationID == "" || action == "" {
		return nil, types.Validationf("Donation ID and action are required.")
	}

	status, ok := action.Outcome()
	if !ok {
		return nil, types.Validationf("Action must be either \"approve\" or \"reject\".")
	}

	donation, err := s.donations.Donation(ctx, donationID)
	if err != nil {
		return nil, err
	}

	ngo, err := ownedNGO(ctx, s.ngos, principal.ID)
	if err != nil {
		return nil, err
	}

	decision := types.Decision{
		DonationID: donation.ID,
		Status:     status,
		AdminNotes: utils.TrimmedPtr(adminNotes),
		DecidedAt:  s.now(),
	}

	if ngo != nil {
		if donation.NGOID != nil && *donation.NGOID != ngo.ID {
			return nil, types.Forbiddenf("You can only manage donations for your NGO or from the general pool.")
		}
		decision.AssignNGOID = &ngo.ID
		decision.ScopeNGOID = &ngo.ID
	}

	if donation.Status != types.DonationStatusPending {
		return nil, types.ErrAlreadyDecided
	}

	updated, err := s.donations.Decide(ctx, decision)
	if err != nil {
		return nil, err
	}

	entry := s.logger.WithFields(logrus.Fields{
		"donation_id": updated.ID,
		"admin_id":    principal.ID,
		"status":      updated.Status,
	})
	if ngo != nil {
		entry = entry.WithField("ngo_id", ngo.ID)
	} else {
		entry = entry.WithField("super_admin", true)
	}
	entry.Info("donation reviewed")

	s.queueDonorNotice(updated)

	return &types.ReviewedDonation{
		ID:         updated.ID,
		Status:     updated.Status,
		UpdatedAt:  updated.UpdatedAt,
		AdminNotes: updated.AdminNotes,
		NGOID:      updated.NGOID,
	}, nil
}

func (s *ReviewService) queueDonorNotice(donation *types.Donation) {
	notice := notify.DonorNotice{
		ItemName:   reviewedItemName(donation),
		Quantity:   donation.Quantity,
		Status:     donation.Status,
		DonationID: donation.ID,
		AdminNotes: donation.AdminNotes,
	}
	userID := donation.UserID

	s.dispatcher.Dispatch("donor_notification", func(ctx context.Context) error {
		donor, err := s.users.User(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load donor %s: %w", userID, err)
		}

		notice.DonorName = utils.StringOr(donor.Name, defaultDonorName)
		notice.DonorEmail = donor.Email

		return s.notifier.NotifyDonor(ctx, notice)
	})
}

func reviewedItemName(donation *types.Donation) string {
	if donation.DonationType == types.DonationTypeMoney && donation.Amount != nil {
		return fmt.Sprintf("%s (₹%s)", types.MoneyDonationItemName, formatAmount(*donation.Amount))
	}
	return donation.ItemName
}
