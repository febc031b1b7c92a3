package service

import (
	"context"

	"donationhub/pkg/types"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// ListUsers is the admin user directory, newest first. Location is only
// reported for users with both coordinates.
func (s *UserService) ListUsers(ctx context.Context, principal *types.Principal) ([]*types.UserListing, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	users, err := s.users.Users(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]*types.UserListing, 0, len(users))
	for _, u := range users {
		listing := &types.UserListing{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		}

		if u.Latitude != nil && u.Longitude != nil {
			listing.Location = &types.UserLocation{
				Lat:     *u.Latitude,
				Lng:     *u.Longitude,
				City:    u.City,
				Country: u.Country,
			}
		}

		listings = append(listings, listing)
	}

	return listings, nil
}
