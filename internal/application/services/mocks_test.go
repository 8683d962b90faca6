package services_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
)

// Mocks

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, update entities.ProfileUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *MockUserRepository) UpdateCustomerID(ctx context.Context, id, customerID string) error {
	return m.Called(ctx, id, customerID).Error(0)
}

type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) ListByIDs(ctx context.Context, ids []string) ([]*entities.Restaurant, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*entities.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) Search(ctx context.Context, filter repositories.RestaurantFilter) ([]*entities.Restaurant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entities.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) ListAll(ctx context.Context) ([]*entities.Restaurant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entities.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entities.Category), args.Error(1)
}

type MockRestaurantSearchRepository struct {
	mock.Mock
}

func (m *MockRestaurantSearchRepository) Index(ctx context.Context, restaurant *entities.Restaurant) error {
	return m.Called(ctx, restaurant).Error(0)
}

func (m *MockRestaurantSearchRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRestaurantSearchRepository) Search(ctx context.Context, filter repositories.RestaurantFilter) ([]string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*entities.Review, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) Summary(ctx context.Context, restaurantID string) (float64, int, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

// MockReservationRepository runs the check against Existing, as the database
// adapter does inside its transaction.
type MockReservationRepository struct {
	mock.Mock
	Existing []*entities.Reservation
}

func (m *MockReservationRepository) CreateExclusive(ctx context.Context, reservation *entities.Reservation, check repositories.ReservationCheck) error {
	if err := check(m.Existing); err != nil {
		return err
	}
	return m.Called(ctx, reservation).Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*entities.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*entities.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*entities.Reservation, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]*entities.Reservation), args.Error(1)
}

type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Get(ctx context.Context, userID, restaurantID string) (*entities.Favorite, error) {
	args := m.Called(ctx, userID, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) Create(ctx context.Context, favorite *entities.Favorite) error {
	return m.Called(ctx, favorite).Error(0)
}

func (m *MockFavoriteRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFavoriteRepository) ListRestaurantsByUser(ctx context.Context, userID string) ([]*entities.Restaurant, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*entities.Restaurant), args.Error(1)
}

type MockSubscriptionProvider struct {
	mock.Mock
}

func (m *MockSubscriptionProvider) ListSubscriptions(ctx context.Context, customerID string) providers.SubscriptionIterator {
	return m.Called(ctx, customerID).Get(0).(providers.SubscriptionIterator)
}

func (m *MockSubscriptionProvider) CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CheckoutSession), args.Error(1)
}

func (m *MockSubscriptionProvider) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*entities.CheckoutSessionStatus, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CheckoutSessionStatus), args.Error(1)
}

func (m *MockSubscriptionProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*entities.PortalSession, error) {
	args := m.Called(ctx, customerID, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PortalSession), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg *entities.EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type MockQRCodeGenerator struct {
	mock.Mock
}

func (m *MockQRCodeGenerator) Generate(content string) ([]byte, error) {
	args := m.Called(content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Fakes

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []*entities.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event *entities.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []entities.DomainEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entities.DomainEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// MockCacheProvider is an in-memory cache
type MockCacheProvider struct {
	mu      sync.RWMutex
	data    map[string][]byte
	deleted []string
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{data: make(map[string][]byte)}
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return nil, providers.ErrCacheMiss
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MockCacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheProvider) Has(key string) bool {
	ok, _ := m.Exists(context.Background(), key)
	return ok
}

// MockEventBus delivers events synchronously to in-process subscribers
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.DomainEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subscribers: make(map[string][]chan *entities.DomainEvent)}
}

func (m *MockEventBus) Publish(ctx context.Context, topic string, event *entities.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[topic] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, topic string) (<-chan *entities.DomainEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.DomainEvent, 10)
	m.subscribers[topic] = append(m.subscribers[topic], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[topic] {
		close(ch)
	}
	delete(m.subscribers, topic)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for topic, channels := range m.subscribers {
		for _, ch := range channels {
			close(ch)
		}
		delete(m.subscribers, topic)
	}
	return nil
}

func (m *MockEventBus) subscriberCount(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers[topic])
}
