package service

import (
	"context"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) FindActive(ctx context.Context) ([]*entity.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Listing), args.Error(1)
}

func (m *MockListingRepository) GetByID(ctx context.Context, listingID string) (*entity.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingRepository) Settle(ctx context.Context, params repository.SettleListingParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type MockActionRepository struct{ mock.Mock }

func (m *MockActionRepository) ListByListing(ctx context.Context, listingID string) ([]*entity.Action, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Action), args.Error(1)
}

func (m *MockActionRepository) HasLockSince(ctx context.Context, listingID string, since time.Time) (bool, error) {
	args := m.Called(ctx, listingID, since)
	return args.Bool(0), args.Error(1)
}

type MockViewRepository struct{ mock.Mock }

func (m *MockViewRepository) ListViewerIDs(ctx context.Context, listingID string) ([]string, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockNotificationRepository struct{ mock.Mock }

func (m *MockNotificationRepository) Create(ctx context.Context, notification *entity.Notification) (string, error) {
	args := m.Called(ctx, notification)
	return args.String(0), args.Error(1)
}

func (m *MockNotificationRepository) FindRecent(ctx context.Context, recipientID string, notifType entity.NotificationType, listingID string, since time.Time) (string, error) {
	args := m.Called(ctx, recipientID, notifType, listingID, since)
	return args.String(0), args.Error(1)
}

type MockActivityRepository struct{ mock.Mock }

func (m *MockActivityRepository) Create(ctx context.Context, e *entity.ActivityEntry) (string, error) {
	args := m.Called(ctx, e)
	return args.String(0), args.Error(1)
}

func (m *MockActivityRepository) HasSettlementEntry(ctx context.Context, listingID string) (bool, error) {
	args := m.Called(ctx, listingID)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	args := m.Called(ctx, subject, message)
	return args.Error(0)
}

type MockPaymentStarter struct{ mock.Mock }

func (m *MockPaymentStarter) Start(ctx context.Context, listingID, winnerID string, action entity.ActionKind, amount float64) error {
	args := m.Called(ctx, listingID, winnerID, action, amount)
	return args.Error(0)
}

// countingRunner records sweep invocations for scheduler tests. When block is
// set, Sweep parks until the channel is closed.
type countingRunner struct {
	mu    sync.Mutex
	count int
	block chan struct{}
}

func (r *countingRunner) Sweep(ctx context.Context) error {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	if r.block != nil {
		<-r.block
	}
	return nil
}

func (r *countingRunner) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// fakeWake hands the subscription handler back to the test.
type fakeWake struct {
	mu           sync.Mutex
	handler      func()
	unsubscribed int
}

func (w *fakeWake) Subscribe(handler func()) (func(), error) {
	w.mu.Lock()
	w.handler = handler
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		w.unsubscribed++
		w.mu.Unlock()
	}, nil
}

func (w *fakeWake) Fire() {
	w.mu.Lock()
	handler := w.handler
	w.mu.Unlock()
	if handler != nil {
		handler()
	}
}
