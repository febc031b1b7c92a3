package seed

import (
	"context"
	"fmt"

	"donationhub/internal/utils"
	"donationhub/pkg/types"
)

type ProfileWriter interface {
	UpsertProfile(ctx context.Context, user *types.User) error
}

type seedUser struct {
	ID      string
	Email   string
	Name    string
	Role    types.Role
	Lat     float64
	Lng     float64
	City    string
	Country string
}

// Fixed IDs keep reseeding idempotent. Point them at real Cognito subjects
// to log in as a seeded account.
var seedUsers = []seedUser{
	{ID: "a1f0c3b2-1111-4c55-9e01-4f1d2c3b4a51", Email: "admin.helpinghands+seed@example.com", Name: "Priya Nair", Role: types.RoleAdmin, Lat: 12.9716, Lng: 77.5946, City: "Bengaluru", Country: "India"},
	{ID: "a1f0c3b2-2222-4c55-9e01-4f1d2c3b4a52", Email: "admin.foodbank+seed@example.com", Name: "Rahul Mehta", Role: types.RoleAdmin, Lat: 19.0760, Lng: 72.8777, City: "Mumbai", Country: "India"},
	{ID: "a1f0c3b2-3333-4c55-9e01-4f1d2c3b4a53", Email: "superadmin+seed@example.com", Name: "Site Admin", Role: types.RoleAdmin},
	{ID: "d0e1f2a3-4444-4b66-8f02-5e2d3c4b5a64", Email: "ava.williams+seed@example.com", Name: "Ava Williams", Role: types.RoleUser, Lat: 28.6139, Lng: 77.2090, City: "New Delhi", Country: "India"},
	{ID: "d0e1f2a3-5555-4b66-8f02-5e2d3c4b5a65", Email: "liam.johnson+seed@example.com", Name: "Liam Johnson", Role: types.RoleUser},
}

func (s seedUser) user() *types.User {
	user := &types.User{
		ID:    s.ID,
		Email: s.Email,
		Name:  utils.StringPtr(s.Name),
		Role:  s.Role,
	}

	if s.City != "" {
		user.Latitude = utils.Float64Ptr(s.Lat)
		user.Longitude = utils.Float64Ptr(s.Lng)
		user.City = utils.StringPtr(s.City)
		user.Country = utils.StringPtr(s.Country)
	}

	return user
}

// SeedUsers upserts the demo accounts and returns them.
func SeedUsers(ctx context.Context, users ProfileWriter) ([]*types.User, error) {
	seeded := make([]*types.User, 0, len(seedUsers))
	for _, s := range seedUsers {
		user := s.user()
		if err := users.UpsertProfile(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", s.ID, err)
		}
		seeded = append(seeded, user)
	}

	return seeded, nil
}
