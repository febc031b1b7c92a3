package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"donationhub/internal/notify"
	"donationhub/internal/utils"
	"donationhub/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	pickupDateLayout = "2006-01-02"
	unknownDonorName = "Unknown"
)

var pickupTimeLayouts = []string{"15:04", "15:04:05"}

type SubmissionService struct {
	logger     *logrus.Logger
	donations  DonationStore
	ngos       NGOStore
	users      UserStore
	notifier   notify.Notifier
	dispatcher Dispatcher

	location *time.Location
	now      func() time.Time
}

func NewSubmissionService(
	logger *logrus.Logger,
	donations DonationStore,
	ngos NGOStore,
	users UserStore,
	notifier notify.Notifier,
	dispatcher Dispatcher,
	location *time.Location,
) *SubmissionService {
	if location == nil {
		location = time.Local
	}

	return &SubmissionService{
		logger:     logger,
		donations:  donations,
		ngos:       ngos,
		users:      users,
		notifier:   notifier,
		dispatcher: dispatcher,
		location:   location,
		now:        time.Now,
	}
}

// Submit records a new pending donation for a donor and queues the admin
// notification.
func (s *SubmissionService) Submit(ctx context.Context, principal *types.Principal, req *types.DonationRequest) (*types.DonationReceipt, error) {
	if err := requireDonor(principal); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, types.Validationf("Donation type must be either \"MONEY\" or \"ITEMS\".")
	}

	donation := &types.Donation{
		UserID:       principal.ID,
		DonationType: req.DonationType,
		Status:       types.DonationStatusPending,
	}

	switch req.DonationType {
	case types.DonationTypeMoney:
		if err := applyMoney(donation, req); err != nil {
			return nil, err
		}
	case types.DonationTypeItems:
		if err := s.applyItems(donation, req); err != nil {
			return nil, err
		}
	default:
		return nil, types.Validationf("Donation type must be either \"MONEY\" or \"ITEMS\".")
	}

	ngoID := normalizeNGOID(req.NGOID)
	if ngoID != nil {
		if _, err := s.ngos.NGO(ctx, *ngoID); err != nil {
			if isNotFound(err) {
				return nil, types.Validationf("Selected NGO not found.")
			}
			return nil, err
		}
	}
	donation.NGOID = ngoID

	if err := s.donations.CreateDonation(ctx, donation); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"donation_id":   donation.ID,
		"user_id":       donation.UserID,
		"donation_type": donation.DonationType,
		"pool":          donation.NGOID == nil,
	}).Info("donation submitted")

	s.queueAdminNotice(donation)

	return &types.DonationReceipt{
		ID:        donation.ID,
		ItemName:  donation.ItemName,
		Quantity:  donation.Quantity,
		Status:    donation.Status,
		CreatedAt: donation.CreatedAt,
	}, nil
}

func applyMoney(donation *types.Donation, req *types.DonationRequest) error {
	if req.Amount == nil || math.IsNaN(*req.Amount) || math.IsInf(*req.Amount, 0) || *req.Amount <= 0 {
		return types.Validationf("Valid amount is required for money donations.")
	}

	amount := *req.Amount
	donation.Amount = &amount
	donation.ItemName = types.MoneyDonationItemName
	donation.Quantity = 1
	donation.Description = fmt.Sprintf("Money donation of ₹%s", formatAmount(amount))
	donation.NeedsPickup = false

	return nil
}

func (s *SubmissionService) applyItems(donation *types.Donation, req *types.DonationRequest) error {
	itemName := utils.TrimmedPtr(req.ItemName)
	if itemName == nil {
		return types.Validationf("Item name is required for item donations.")
	}

	quantity := 1
	if req.Quantity != nil {
		q := *req.Quantity
		if q <= 0 || q != math.Trunc(q) || q > math.MaxInt32 {
			return types.Validationf("Quantity must be a positive integer.")
		}
		quantity = int(q)
	}

	description := *itemName
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		if trimmed == "" {
			return types.Validationf("Description cannot be empty if provided.")
		}
		description = trimmed
	}

	donation.ItemName = *itemName
	donation.Quantity = quantity
	donation.Description = description

	if !req.NeedsPickup {
		return nil
	}

	pickup, err := s.schedulePickup(req)
	if err != nil {
		return err
	}
	donation.DonationPickup = *pickup

	return nil
}

func (s *SubmissionService) schedulePickup(req *types.DonationRequest) (*types.DonationPickup, error) {
	date := utils.TrimmedPtr(req.PickupDate)
	clock := utils.TrimmedPtr(req.PickupTime)
	address := utils.TrimmedPtr(req.PickupAddress)
	if date == nil || clock == nil || address == nil {
		return nil, types.Validationf("Pickup date, time, and address are required when pickup service is requested.")
	}

	day, err := time.ParseInLocation(pickupDateLayout, *date, s.location)
	if err != nil {
		return nil, types.Validationf("Pickup date must be in YYYY-MM-DD format.")
	}

	at, err := parsePickupTime(*date, *clock, s.location)
	if err != nil {
		return nil, types.Validationf("Pickup time must be in HH:MM format.")
	}

	if at.Before(s.now()) {
		return nil, types.Validationf("Pickup date and time cannot be in the past.")
	}

	pickupDate := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	status := types.PickupStatusScheduled

	return &types.DonationPickup{
		NeedsPickup:   true,
		PickupDate:    &pickupDate,
		PickupTime:    clock,
		PickupAddress: address,
		PickupNotes:   utils.TrimmedPtr(req.PickupNotes),
		PickupStatus:  &status,
	}, nil
}

func parsePickupTime(date, clock string, location *time.Location) (time.Time, error) {
	var err error
	for _, layout := range pickupTimeLayouts {
		var at time.Time
		at, err = time.ParseInLocation(pickupDateLayout+" "+layout, date+" "+clock, location)
		if err == nil {
			return at, nil
		}
	}
	return time.Time{}, err
}

// normalizeNGOID maps a blank id or the literal "null" to the pool.
func normalizeNGOID(ngoID *string) *string {
	trimmed := utils.TrimmedPtr(ngoID)
	if trimmed == nil || *trimmed == "null" {
		return nil
	}
	return trimmed
}

func (s *SubmissionService) queueAdminNotice(donation *types.Donation) {
	notice := notify.AdminNotice{
		ItemName:    donation.ItemName,
		Quantity:    donation.Quantity,
		Description: donation.Description,
		DonationID:  donation.ID,
	}
	userID := donation.UserID

	s.dispatcher.Dispatch("admin_notification", func(ctx context.Context) error {
		donor, err := s.users.User(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load donor %s: %w", userID, err)
		}

		notice.DonorName = utils.StringOr(donor.Name, unknownDonorName)
		notice.DonorEmail = donor.Email

		return s.notifier.NotifyAdmin(ctx, notice)
	})
}

// ListDonations lists donations for any signed in caller. Donors only see
// their own. An unrecognised status filter is ignored.
func (s *SubmissionService) ListDonations(ctx context.Context, principal *types.Principal, status string) ([]*types.DonationRecord, error) {
	if principal == nil || principal.ID == "" {
		return nil, types.Unauthenticatedf("Unauthorized")
	}

	var filter types.DonationFilter
	switch principal.Role {
	case types.RoleUser:
		filter.UserID = &principal.ID
	case types.RoleAdmin:
	default:
		return nil, types.Forbiddenf("Forbidden")
	}

	if parsed, ok := types.ParseDonationStatus(strings.TrimSpace(status)); ok {
		filter.Status = &parsed
	}

	return s.donations.DonationsPendingFirst(ctx, filter)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
