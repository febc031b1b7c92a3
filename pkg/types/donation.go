package types

import (
	"time"
)

type DonationType string

const (
	DonationTypeMoney DonationType = "MONEY"
	DonationTypeItems DonationType = "ITEMS"
)

type DonationStatus string

const (
	DonationStatusPending  DonationStatus = "PENDING"
	DonationStatusApproved DonationStatus = "APPROVED"
	DonationStatusRejected DonationStatus = "REJECTED"
)

func ParseDonationStatus(s string) (DonationStatus, bool) {
	switch DonationStatus(s) {
	case DonationStatusPending, DonationStatusApproved, DonationStatusRejected:
		return DonationStatus(s), true
	}
	return "", false
}

type PickupStatus string

const (
	PickupStatusScheduled  PickupStatus = "SCHEDULED"
	PickupStatusInProgress PickupStatus = "IN_PROGRESS"
	PickupStatusCompleted  PickupStatus = "COMPLETED"
	PickupStatusCancelled  PickupStatus = "CANCELLED"
)

// ReviewAction is what an admin does to a pending donation.
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
)

func (a ReviewAction) Outcome() (DonationStatus, bool) {
	switch a {
	case ReviewActionApprove:
		return DonationStatusApproved, true
	case ReviewActionReject:
		return DonationStatusRejected, true
	}
	return "", false
}

const MoneyDonationItemName = "Money Donation"

type Donation struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"userId"`
	DonationType DonationType   `db:"donation_type" json:"donationType"`
	ItemName     string         `db:"item_name" json:"itemName"`
	Quantity     int            `db:"quantity" json:"quantity"`
	Description  string         `db:"description" json:"description"`
	Amount       *float64       `db:"amount" json:"amount"`
	Status       DonationStatus `db:"status" json:"status"`
	AdminNotes   *string        `db:"admin_notes" json:"adminNotes"`
	NGOID        *string        `db:"ngo_id" json:"ngoId"`

	DonationPickup

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type DonationPickup struct {
	NeedsPickup   bool          `db:"needs_pickup" json:"needsPickup"`
	PickupDate    *time.Time    `db:"pickup_date" json:"pickupDate"`
	PickupTime    *string       `db:"pickup_time" json:"pickupTime"`
	PickupAddress *string       `db:"pickup_address" json:"pickupAddress"`
	PickupNotes   *string       `db:"pickup_notes" json:"pickupNotes"`
	PickupStatus  *PickupStatus `db:"pickup_status" json:"pickupStatus"`
}

// PickupPending reports whether a requested pickup has not happened yet.
func (p DonationPickup) PickupPending() bool {
	if !p.NeedsPickup || p.PickupStatus == nil {
		return false
	}

	switch *p.PickupStatus {
	case PickupStatusScheduled, PickupStatusInProgress:
		return true
	}
	return false
}

// DonationRecord is a donation joined with its donor and NGO.
type DonationRecord struct {
	Donation

	DonorName  *string `db:"donor_name" json:"-"`
	DonorEmail string  `db:"donor_email" json:"-"`
	NGOName    *string `db:"ngo_name" json:"-"`
}

type DonationFilter struct {
	UserID *string
	NGOID  *string
	Status *DonationStatus
	// PoolOnly restricts to donations with no NGO.
	PoolOnly bool
}

// DonationRequest is what a donor submits. Pointer fields are optional.
type DonationRequest struct {
	DonationType  DonationType `json:"donationType"`
	ItemName      *string      `json:"itemName"`
	Quantity      *float64     `json:"quantity"`
	Description   *string      `json:"description"`
	Amount        *float64     `json:"amount"`
	NGOID         *string      `json:"ngoId"`
	NeedsPickup   bool         `json:"needsPickup"`
	PickupDate    *string      `json:"pickupDate"`
	PickupTime    *string      `json:"pickupTime"`
	PickupAddress *string      `json:"pickupAddress"`
	PickupNotes   *string      `json:"pickupNotes"`
}

type DonationReceipt struct {
	ID        string         `json:"id"`
	ItemName  string         `json:"itemName"`
	Quantity  int            `json:"quantity"`
	Status    DonationStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Decision is the conditional write of a review.
type Decision struct {
	DonationID string
	Status     DonationStatus
	AdminNotes *string
	// AssignNGOID is written only when the donation has no NGO yet.
	AssignNGOID *string
	// ScopeNGOID, when set, limits the write to pool donations and
	// donations of that NGO.
	ScopeNGOID *string
	DecidedAt  time.Time
}

type ReviewedDonation struct {
	ID         string         `json:"id"`
	Status     DonationStatus `json:"status"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	AdminNotes *string        `json:"adminNotes"`
	NGOID      *string        `json:"ngoId"`
}

type DonationStats struct {
	TotalDonations    int `json:"totalDonations"`
	PendingDonations  int `json:"pendingDonations"`
	ApprovedDonations int `json:"approvedDonations"`
	RejectedDonations int `json:"rejectedDonations"`
	PoolDonations     int `json:"poolDonations"`
	PickupRequests    int `json:"pickupRequests"`
	PendingPickups    int `json:"pendingPickups"`
}

type AdminDonations struct {
	Donations     []*DonationRecord
	PoolDonations []*DonationRecord
	Stats         DonationStats
}
