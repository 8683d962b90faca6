package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
)

// CacheInvalidationService drops cached review aggregates when review events arrive
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for review events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.TopicReviews)
	if err != nil {
		return fmt.Errorf("failed to subscribe to review events: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	<-s.done
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.DomainEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.DomainEvent) {
	if event.RestaurantID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.InvalidateRestaurant(ctx, event.RestaurantID); err != nil {
		log.Warn().Err(err).Str("event_id", event.ID).Str("restaurant_id", event.RestaurantID).Msg("cache invalidation failed")
		return
	}
	log.Debug().Str("event_id", event.ID).Str("type", string(event.Type)).Str("restaurant_id", event.RestaurantID).Msg("invalidated review summary")
}

// InvalidateRestaurant drops the cached review aggregate of a restaurant
func (s *CacheInvalidationService) InvalidateRestaurant(ctx context.Context, restaurantID string) error {
	if err := s.cache.Delete(ctx, providers.ReviewSummaryCacheKey(restaurantID)); err != nil {
		return fmt.Errorf("failed to invalidate review summary for %s: %w", restaurantID, err)
	}
	return nil
}

// InvalidateAllSummaries drops every cached review aggregate, used after bulk loads
func (s *CacheInvalidationService) InvalidateAllSummaries(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, providers.ReviewSummaryCacheKey("*")); err != nil {
		return fmt.Errorf("failed to invalidate review summaries: %w", err)
	}
	return nil
}
