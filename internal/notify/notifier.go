package notify

import (
	"context"

	"donationhub/pkg/types"
)

// AdminNotice tells the admin inbox a donation is waiting for review.
type AdminNotice struct {
	DonorName   string
	DonorEmail  string
	ItemName    string
	Quantity    int
	Description string
	DonationID  string
}

// DonorNotice tells a donor how their donation was reviewed.
type DonorNotice struct {
	DonorName  string
	DonorEmail string
	ItemName   string
	Quantity   int
	Status     types.DonationStatus
	DonationID string
	AdminNotes *string
}

type Notifier interface {
	NotifyAdmin(ctx context.Context, notice AdminNotice) error
	NotifyDonor(ctx context.Context, notice DonorNotice) error
}
