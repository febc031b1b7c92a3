package seed

import (
	"context"
	"fmt"

	"donationhub/internal/utils"
	"donationhub/pkg/types"
)

type NGOWriter interface {
	UpsertNGO(ctx context.Context, ngo *types.NGO) error
}

// SeedNGOs upserts the demo NGOs with fixed IDs. Two have an admin; the
// third is unowned so the super admin can manage it.
//
// To generate new IDs: `go run ./cmd/donationhub nanoid`
func SeedNGOs(ctx context.Context, ngos NGOWriter) ([]*types.NGO, error) {
	list := []*types.NGO{
		{
			ID:          "Zq4C1vLw9sYp2TnX7bRk0mHd3JfGa8Ue",
			Name:        "Helping Hands Foundation",
			Email:       "contact@helpinghands.example.org",
			Description: utils.StringPtr("Clothing, blankets and school supplies for families in need."),
			Address:     utils.StringPtr("12 MG Road"),
			Phone:       utils.StringPtr("+91 80 5550 0101"),
			Website:     utils.StringPtr("https://helpinghands.example.org"),
			Latitude:    utils.Float64Ptr(12.9750),
			Longitude:   utils.Float64Ptr(77.6050),
			City:        utils.StringPtr("Bengaluru"),
			AdminID:     utils.StringPtr(seedUsers[0].ID),
		},
		{
			ID:          "Hn7Tq2Wx5cVb8Lm1Pk4Rz0Sd6Jy3Fg9A",
			Name:        "City Food Bank",
			Email:       "hello@cityfoodbank.example.org",
			Description: utils.StringPtr("Collects and distributes food to shelters across the city."),
			Address:     utils.StringPtr("44 Linking Road"),
			Latitude:    utils.Float64Ptr(19.0640),
			Longitude:   utils.Float64Ptr(72.8350),
			City:        utils.StringPtr("Mumbai"),
			AdminID:     utils.StringPtr(seedUsers[1].ID),
		},
		{
			ID:          "Bc3Xm8Nq1Vr6Tw9Ky2Hs5Ld0Fp7Gj4Ze",
			Name:        "Green Earth Trust",
			Email:       "info@greenearth.example.org",
			Description: utils.StringPtr("Tree planting and recycling drives."),
			City:        utils.StringPtr("New Delhi"),
		},
	}

	for _, ngo := range list {
		if err := ngos.UpsertNGO(ctx, ngo); err != nil {
			return nil, fmt.Errorf("failed to seed ngo %s: %w", ngo.ID, err)
		}
	}

	return list, nil
}
