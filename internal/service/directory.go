package service

import (
	"context"
	"math"
	"net/mail"
	"strings"

	"donationhub/pkg/types"

	"github.com/sirupsen/logrus"
)

const ngoUpdateAction = "update"

type DirectoryService struct {
	logger *logrus.Logger
	ngos   NGOStore
}

func NewDirectoryService(logger *logrus.Logger, ngos NGOStore) *DirectoryService {
	return &DirectoryService{logger: logger, ngos: ngos}
}

// ListPublic is the public directory. It needs no caller.
func (s *DirectoryService) ListPublic(ctx context.Context) ([]*types.NGO, error) {
	return s.ngos.NGOs(ctx)
}

func (s *DirectoryService) OwnNGO(ctx context.Context, principal *types.Principal) (*types.NGODetail, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	return s.ngos.NGODetailByAdminID(ctx, principal.ID)
}

func (s *DirectoryService) UpdateOwnNGO(ctx context.Context, principal *types.Principal, update types.NGOUpdate) (*types.NGO, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	update, err := validateNGOUpdate(update)
	if err != nil {
		return nil, err
	}

	ngo, err := s.ngos.UpdateNGOByAdminID(ctx, principal.ID, update)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ngo_id":   ngo.ID,
		"admin_id": principal.ID,
	}).Info("ngo updated by its admin")

	return ngo, nil
}

func (s *DirectoryService) ListAll(ctx context.Context, principal *types.Principal) ([]*types.NGODetail, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	return s.ngos.NGODetails(ctx)
}

func (s *DirectoryService) UpdateNGO(ctx context.Context, principal *types.Principal, ngoID, action string, update types.NGOUpdate) (*types.NGO, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	ngoID = strings.TrimSpace(ngoID)
	if ngoID == "" {
		return nil, types.Validationf("NGO ID is required")
	}

	if _, err := s.ngos.NGO(ctx, ngoID); err != nil {
		return nil, err
	}

	if action != ngoUpdateAction {
		return nil, types.Validationf("Invalid action")
	}

	update, err := validateNGOUpdate(update)
	if err != nil {
		return nil, err
	}

	ngo, err := s.ngos.UpdateNGO(ctx, ngoID, update)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ngo_id":   ngo.ID,
		"admin_id": principal.ID,
	}).Info("ngo updated")

	return ngo, nil
}

// DeleteNGO removes an NGO with no donations. Its admin account goes with it.
func (s *DirectoryService) DeleteNGO(ctx context.Context, principal *types.Principal, ngoID string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}

	ngoID = strings.TrimSpace(ngoID)
	if ngoID == "" {
		return types.Validationf("NGO ID is required")
	}

	detail, err := s.ngos.NGODetail(ctx, ngoID)
	if err != nil {
		return err
	}

	if detail.DonationCount > 0 {
		return types.ErrNGOHasDonations
	}

	if err := s.ngos.DeleteNGO(ctx, ngoID); err != nil {
		return err
	}

	entry := s.logger.WithFields(logrus.Fields{
		"ngo_id":   ngoID,
		"admin_id": principal.ID,
	})
	if detail.AdminID != nil {
		entry = entry.WithField("removed_admin_id", *detail.AdminID)
	}
	entry.Warn("ngo deleted")

	return nil
}

func validateNGOUpdate(update types.NGOUpdate) (types.NGOUpdate, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return update, types.Validationf("NGO name cannot be empty.")
		}
		update.Name = &name
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return update, types.Validationf("Enter a valid email address.")
		}
		update.Email = &email
	}

	if update.Latitude != nil && !inRange(*update.Latitude, 90) {
		return update, types.Validationf("Latitude must be between -90 and 90.")
	}

	if update.Longitude != nil && !inRange(*update.Longitude, 180) {
		return update, types.Validationf("Longitude must be between -180 and 180.")
	}

	if update.Empty() {
		return update, types.Validationf("No fields to update.")
	}

	return update, nil
}

func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}
