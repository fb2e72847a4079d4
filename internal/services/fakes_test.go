package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/fasttrack/internal/events"
	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/joshua-takyi/fasttrack/internal/notify"
	"github.com/supabase-community/gotrue-go/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedNow is 10:00 on 15 Oct 2026 in Kuwait.
func fixedNow() time.Time {
	return time.Date(2026, 10, 15, 10, 0, 0, 0, helpers.KuwaitTime)
}

type memStore struct {
	mu       sync.Mutex
	services map[int64]*models.Service
	bookings map[int64]*models.Booking
	nextID   int64
	failList error
}

func newMemStore() *memStore {
	return &memStore{services: map[int64]*models.Service{}, bookings: map[int64]*models.Booking{}}
}

func (m *memStore) addService(s models.Service) *models.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.services[s.ID] = &s
	return &s
}

func (m *memStore) addBooking(b models.Booking) *models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	m.bookings[b.ID] = &b
	return &b
}

func (m *memStore) ListServices(_ context.Context, activeOnly bool) ([]*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Service{}
	for _, s := range m.services {
		if activeOnly && !s.IsActive {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetServiceByID(_ context.Context, id int64) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) CreateService(ctx context.Context, s *models.Service) (*models.Service, error) {
	return m.addService(*s), nil
}

func (m *memStore) UpdateService(_ context.Context, id int64, fields map[string]interface{}) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	if v, ok := fields["name_en"].(string); ok {
		s.NameEn = v
	}
	if v, ok := fields["is_active"].(bool); ok {
		s.IsActive = v
	}
	if v, ok := fields["image_url"].(string); ok {
		s.ImageURL = v
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) DeleteService(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.services[id]; !ok {
		return models.ErrRecordNotFound
	}
	delete(m.services, id)
	for _, b := range m.bookings {
		if b.ServiceID != nil && *b.ServiceID == id {
			b.ServiceID = nil
		}
	}
	return nil
}

func (m *memStore) CreateBooking(_ context.Context, b *models.Booking) (*models.Booking, error) {
	return m.addBooking(*b), nil
}

func (m *memStore) joined(b *models.Booking) *models.Booking {
	cp := *b
	if cp.ServiceID != nil {
		if s, ok := m.services[*cp.ServiceID]; ok {
			sc := *s
			cp.Service = &sc
		}
	}
	return &cp
}

func (m *memStore) GetBookingByID(_ context.Context, id int64) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return m.joined(b), nil
}

func (m *memStore) ListBookings(_ context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range m.bookings {
		if filter.PreferredDate != "" && b.PreferredDate != filter.PreferredDate {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				match = match || b.Status == s
			}
			if !match {
				continue
			}
		}
		out = append(out, m.joined(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) UpdateBooking(_ context.Context, id int64, fields map[string]interface{}) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	if v, ok := fields["status"].(models.BookingStatus); ok {
		b.Status = v
	}
	if v, ok := fields["confirmed_time"].(string); ok {
		b.ConfirmedTime = &v
	}
	if v, ok := fields["preferred_time"].(string); ok {
		b.PreferredTime = v
	}
	cp := *b
	return &cp, nil
}

type memLog struct {
	mu      sync.Mutex
	entries []*models.NotificationLog
}

func (l *memLog) RecordNotification(_ context.Context, e *models.NotificationLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

func (l *memLog) ListNotifications(_ context.Context, bookingID int64, _ int) ([]*models.NotificationLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []*models.NotificationLog{}
	for _, e := range l.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *memLog) EnsureIndexes(context.Context) error { return nil }

func (l *memLog) byKind(kind string) []*models.NotificationLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*models.NotificationLog
	for _, e := range l.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type recordingFeed struct {
	mu      sync.Mutex
	changes []events.Change
}

func (f *recordingFeed) Publish(_ context.Context, c events.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, c)
	return nil
}

type recordingQueue struct {
	published []*models.Booking
}

func (q *recordingQueue) PublishBookingCreated(_ context.Context, b *models.Booking) error {
	q.published = append(q.published, b)
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []string
	to   []string
}

func (s *fakeSender) Send(_ context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.to = append(s.to, to)
	s.sent = append(s.sent, body)
	return "SM123", nil
}

type fakePusher struct {
	mu     sync.Mutex
	failOn map[string]bool
	calls  []string
	last   notify.PushNotification
}

func (p *fakePusher) Push(_ context.Context, token string, n notify.PushNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, token)
	p.last = n
	if p.failOn[token] {
		return errors.New("push service returned 410")
	}
	return nil
}

type memSubs struct {
	subs    []*models.AdminPushSubscription
	listErr error
	deleted []uuid.UUID
}

func (m *memSubs) UpsertSubscription(_ context.Context, sub *models.AdminPushSubscription) (*models.AdminPushSubscription, error) {
	for i, s := range m.subs {
		if s.UserID == sub.UserID {
			m.subs[i] = sub
			return sub, nil
		}
	}
	m.subs = append(m.subs, sub)
	return sub, nil
}

func (m *memSubs) DeleteSubscription(_ context.Context, userID uuid.UUID) error {
	m.deleted = append(m.deleted, userID)
	return nil
}

func (m *memSubs) ListSubscriptions(context.Context) ([]*models.AdminPushSubscription, error) {
	return m.subs, m.listErr
}

type fakeUploader struct {
	sources []string
}

func (u *fakeUploader) UploadImage(_ context.Context, source string) (string, error) {
	u.sources = append(u.sources, source)
	return "https://res.cloudinary.com/demo/image/upload/fasttrack/services/wash.jpg", nil
}

type fakeAuth struct {
	userID     uuid.UUID
	authErr    error
	loggedOut  []string
	refreshErr error
}

func (a *fakeAuth) AuthenticateUser(context.Context, string, string) (*types.TokenResponse, error) {
	if a.authErr != nil {
		return nil, a.authErr
	}
	resp := &types.TokenResponse{}
	resp.AccessToken = "access-token"
	resp.RefreshToken = "refresh-token"
	resp.User.ID = a.userID
	return resp, nil
}

func (a *fakeAuth) RefreshToken(_ context.Context, token string) (*types.TokenResponse, error) {
	if a.refreshErr != nil {
		return nil, a.refreshErr
	}
	resp := &types.TokenResponse{}
	resp.AccessToken = "new-access-token"
	resp.RefreshToken = token + "-rotated"
	return resp, nil
}

func (a *fakeAuth) Logout(_ context.Context, token string) error {
	a.loggedOut = append(a.loggedOut, token)
	return nil
}

type memProfiles map[uuid.UUID]*models.Profile

func (m memProfiles) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := m[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return p, nil
}

type stubVerifier struct {
	claims *helpers.CustomClaims
	err    error
}

func (v stubVerifier) Validate(string) (*helpers.CustomClaims, error) {
	return v.claims, v.err
}
