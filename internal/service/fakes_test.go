package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"donationhub/internal/notify"
	"donationhub/pkg/types"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memStore is an in-memory stand-in for the postgres repositories.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*types.User
	ngos      map[string]*types.NGO
	donations map[string]*types.Donation

	seq   int
	clock time.Time

	// readGate, when set, holds every Donation lookup until the gate opens.
	readGate *sync.WaitGroup
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*types.User),
		ngos:      make(map[string]*types.NGO),
		donations: make(map[string]*types.Donation),
		clock:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) addUser(id string, role types.Role, name *string) *types.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	u := &types.User{ID: id, Name: name, Email: id + "@example.com", Role: role, CreatedAt: now, UpdatedAt: now}
	m.users[id] = u
	return u
}

func (m *memStore) addNGO(id, adminID string) *types.NGO {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	n := &types.NGO{ID: id, Name: "NGO " + id, Email: id + "@ngo.example.com", CreatedAt: now, UpdatedAt: now}
	if adminID != "" {
		admin := adminID
		n.AdminID = &admin
	}
	m.ngos[id] = n
	return n
}

func (m *memStore) addDonation(d types.Donation) *types.Donation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.ID == "" {
		m.seq++
		d.ID = fmt.Sprintf("don-%d", m.seq)
	}
	if d.Status == "" {
		d.Status = types.DonationStatusPending
	}
	if d.DonationType == "" {
		d.DonationType = types.DonationTypeItems
	}
	if d.Quantity == 0 {
		d.Quantity = 1
	}
	if d.ItemName == "" {
		d.ItemName = "Blankets"
	}
	now := m.tick()
	d.CreatedAt = now
	d.UpdatedAt = now

	m.donations[d.ID] = &d
	copied := d
	return &copied
}

func (m *memStore) donation(id string) *types.Donation {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.donations[id]
	if !ok {
		return nil
	}
	copied := *d
	return &copied
}

func (m *memStore) User(_ context.Context, userID string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) Users(_ context.Context) ([]*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) NGOByAdminID(_ context.Context, adminID string) (*types.NGO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.ngos {
		if n.AdminID != nil && *n.AdminID == adminID {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) NGO(_ context.Context, ngoID string) (*types.NGO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.ngos[ngoID]
	if !ok {
		return nil, types.ErrNGONotFound
	}
	copied := *n
	return &copied, nil
}

func (m *memStore) NGOs(_ context.Context) ([]*types.NGO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.NGO, 0, len(m.ngos))
	for _, n := range m.ngos {
		copied := *n
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) detailLocked(n *types.NGO) *types.NGODetail {
	detail := &types.NGODetail{NGO: *n}
	if n.AdminID != nil {
		if admin, ok := m.users[*n.AdminID]; ok {
			detail.AdminName = admin.Name
			email := admin.Email
			detail.AdminEmail = &email
		}
	}
	for _, d := range m.donations {
		if d.NGOID != nil && *d.NGOID == n.ID {
			detail.DonationCount++
		}
	}
	return detail
}

func (m *memStore) NGODetails(_ context.Context) ([]*types.NGODetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.NGODetail, 0, len(m.ngos))
	for _, n := range m.ngos {
		out = append(out, m.detailLocked(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) NGODetail(_ context.Context, ngoID string) (*types.NGODetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.ngos[ngoID]
	if !ok {
		return nil, types.ErrNGONotFound
	}
	return m.detailLocked(n), nil
}

func (m *memStore) NGODetailByAdminID(_ context.Context, adminID string) (*types.NGODetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.ngos {
		if n.AdminID != nil && *n.AdminID == adminID {
			return m.detailLocked(n), nil
		}
	}
	return nil, types.ErrNGONotFound
}

func applyUpdate(n *types.NGO, update types.NGOUpdate) {
	if update.Name != nil {
		n.Name = *update.Name
	}
	if update.Email != nil {
		n.Email = *update.Email
	}
	if update.Description != nil {
		n.Description = update.Description
	}
	if update.Address != nil {
		n.Address = update.Address
	}
	if update.Phone != nil {
		n.Phone = update.Phone
	}
	if update.Website != nil {
		n.Website = update.Website
	}
	if update.Latitude != nil {
		n.Latitude = update.Latitude
	}
	if update.Longitude != nil {
		n.Longitude = update.Longitude
	}
	if update.City != nil {
		n.City = update.City
	}
}

func (m *memStore) UpdateNGO(_ context.Context, ngoID string, update types.NGOUpdate) (*types.NGO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.ngos[ngoID]
	if !ok {
		return nil, types.ErrNGONotFound
	}
	applyUpdate(n, update)
	n.UpdatedAt = m.tick()
	copied := *n
	return &copied, nil
}

func (m *memStore) UpdateNGOByAdminID(_ context.Context, adminID string, update types.NGOUpdate) (*types.NGO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.ngos {
		if n.AdminID != nil && *n.AdminID == adminID {
			applyUpdate(n, update)
			n.UpdatedAt = m.tick()
			copied := *n
			return &copied, nil
		}
	}
	return nil, types.ErrNGONotFound
}

func (m *memStore) DeleteNGO(_ context.Context, ngoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.ngos[ngoID]
	if !ok {
		return types.ErrNGONotFound
	}
	if m.detailLocked(n).DonationCount > 0 {
		return types.ErrNGOHasDonations
	}

	delete(m.ngos, ngoID)
	if n.AdminID != nil {
		delete(m.users, *n.AdminID)
	}
	return nil
}

func (m *memStore) CreateDonation(_ context.Context, donation *types.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	donation.ID = fmt.Sprintf("don-%d", m.seq)
	now := m.tick()
	donation.CreatedAt = now
	donation.UpdatedAt = now

	copied := *donation
	m.donations[donation.ID] = &copied
	return nil
}

func (m *memStore) Donation(_ context.Context, donationID string) (*types.Donation, error) {
	if m.readGate != nil {
		m.readGate.Done()
		m.readGate.Wait()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.donations[donationID]
	if !ok {
		return nil, types.ErrDonationNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *memStore) records(filter types.DonationFilter) []*types.DonationRecord {
	out := make([]*types.DonationRecord, 0)
	for _, d := range m.donations {
		if filter.UserID != nil && d.UserID != *filter.UserID {
			continue
		}
		if filter.PoolOnly && d.NGOID != nil {
			continue
		}
		if !filter.PoolOnly && filter.NGOID != nil && (d.NGOID == nil || *d.NGOID != *filter.NGOID) {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}

		record := &types.DonationRecord{Donation: *d}
		if u, ok := m.users[d.UserID]; ok {
			record.DonorName = u.Name
			record.DonorEmail = u.Email
		}
		if d.NGOID != nil {
			if n, ok := m.ngos[*d.NGOID]; ok {
				name := n.Name
				record.NGOName = &name
			}
		}
		out = append(out, record)
	}
	return out
}

func (m *memStore) Donations(_ context.Context, filter types.DonationFilter) ([]*types.DonationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.records(filter)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func statusRank(s types.DonationStatus) int {
	switch s {
	case types.DonationStatusPending:
		return 0
	case types.DonationStatusApproved:
		return 1
	}
	return 2
}

func (m *memStore) DonationsPendingFirst(_ context.Context, filter types.DonationFilter) ([]*types.DonationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.records(filter)
	sort.Slice(out, func(i, j int) bool {
		ri, rj := statusRank(out[i].Status), statusRank(out[j].Status)
		if ri != rj {
			return ri < rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) Decide(_ context.Context, decision types.Decision) (*types.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.donations[decision.DonationID]
	if !ok || d.Status != types.DonationStatusPending {
		return nil, types.ErrAlreadyDecided
	}
	if decision.ScopeNGOID != nil && d.NGOID != nil && *d.NGOID != *decision.ScopeNGOID {
		return nil, types.ErrAlreadyDecided
	}

	d.Status = decision.Status
	d.AdminNotes = decision.AdminNotes
	if d.NGOID == nil && decision.AssignNGOID != nil {
		assigned := *decision.AssignNGOID
		d.NGOID = &assigned
	}
	d.UpdatedAt = decision.DecidedAt

	copied := *d
	return &copied, nil
}

// syncDispatcher runs tasks inline so tests can inspect their effects.
type syncDispatcher struct {
	mu    sync.Mutex
	tasks []string
	errs  []error
}

func (d *syncDispatcher) Dispatch(task string, fn func(ctx context.Context) error) {
	err := fn(context.Background())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
	if err != nil {
		d.errs = append(d.errs, err)
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	admin  []notify.AdminNotice
	donor  []notify.DonorNotice
	failed error
}

func (n *recordingNotifier) NotifyAdmin(_ context.Context, notice notify.AdminNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.admin = append(n.admin, notice)
	return n.failed
}

func (n *recordingNotifier) NotifyDonor(_ context.Context, notice notify.DonorNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.donor = append(n.donor, notice)
	return n.failed
}

func adminPrincipal(id string) *types.Principal {
	return &types.Principal{ID: id, Role: types.RoleAdmin, Email: id + "@example.com"}
}

func donorPrincipal(id string) *types.Principal {
	return &types.Principal{ID: id, Role: types.RoleUser, Email: id + "@example.com"}
}
