package types

import "time"

type NGO struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Description *string   `db:"description" json:"description"`
	Address     *string   `db:"address" json:"address"`
	Phone       *string   `db:"phone" json:"phone"`
	Website     *string   `db:"website" json:"website"`
	Latitude    *float64  `db:"latitude" json:"latitude"`
	Longitude   *float64  `db:"longitude" json:"longitude"`
	City        *string   `db:"city" json:"city"`
	AdminID     *string   `db:"admin_id" json:"adminId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type AdminSummary struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// NGODetail is an NGO joined with its admin account and donation count.
type NGODetail struct {
	NGO

	AdminName     *string `db:"admin_name" json:"-"`
	AdminEmail    *string `db:"admin_email" json:"-"`
	DonationCount int     `db:"donation_count" json:"-"`
}

func (d *NGODetail) Admin() *AdminSummary {
	if d.AdminID == nil {
		return nil
	}

	summary := &AdminSummary{ID: *d.AdminID, Name: d.AdminName}
	if d.AdminEmail != nil {
		summary.Email = *d.AdminEmail
	}
	return summary
}

// NGOUpdate carries the fields an update touches. Nil fields are left as
// they are.
type NGOUpdate struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	Phone       *string  `json:"phone"`
	Website     *string  `json:"website"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	City        *string  `json:"city"`
}

func (u NGOUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Description == nil &&
		u.Address == nil && u.Phone == nil && u.Website == nil &&
		u.Latitude == nil && u.Longitude == nil && u.City == nil
}
