package types

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `db:"id" json:"id"`
	Name      *string   `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      Role      `db:"role" json:"role"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	City      *string   `db:"city" json:"city,omitempty"`
	Country   *string   `db:"country" json:"country,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    string
	Role  Role
	Email string
}

type UserLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	City    *string `json:"city"`
	Country *string `json:"country"`
}

// UserListing is a row of the admin user directory.
type UserListing struct {
	ID        string        `json:"id"`
	Name      *string       `json:"name"`
	Email     string        `json:"email"`
	Role      Role          `json:"role"`
	CreatedAt time.Time     `json:"createdAt"`
	Location  *UserLocation `json:"location,omitempty"`
}
