package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/agroplan/agroplan-api/internal/models"
)

// Notifier is a fire-and-forget message sink. Implementations must never
// block the caller and never surface delivery errors.
type Notifier interface {
	Publish(n models.Notification)
}

// NotificationService persists notifications and fans them out over redis
// pub/sub when a client is configured. Delivery is decoupled from the
// transactional writers through a bounded channel: a full buffer drops
// the message with a log line instead of blocking a request.
type NotificationService struct {
	db     *gorm.DB
	client *redis.Client
	ch     chan models.Notification
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewNotificationService creates a notification service. client may be
// nil; persistence still happens, fan-out is skipped.
func NewNotificationService(db *gorm.DB, client *redis.Client, buffer int) *NotificationService {
	if buffer <= 0 {
		buffer = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &NotificationService{
		db:     db,
		client: client,
		ch:     make(chan models.Notification, buffer),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (s *NotificationService) Start() {
	go s.run()
}

// Stop shuts the worker down and waits for it to drain.
func (s *NotificationService) Stop() {
	s.cancel()
	<-s.done
}

// Publish enqueues a notification without blocking.
func (s *NotificationService) Publish(n models.Notification) {
	select {
	case s.ch <- n:
	default:
		log.Printf("notification buffer full, dropping %s for user %s", n.Type, n.UserID)
	}
}

func (s *NotificationService) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			// drain whatever is already queued
			for {
				select {
				case n := <-s.ch:
					s.deliver(n)
				default:
					return
				}
			}
		case n := <-s.ch:
			s.deliver(n)
		}
	}
}

func (s *NotificationService) deliver(n models.Notification) {
	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("failed to persist notification for user %s: %v", n.UserID, err)
	}

	if s.client == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("failed to encode notification for user %s: %v", n.UserID, err)
		return
	}
	channel := "notify:" + n.UserID.String()
	if err := s.client.Publish(context.Background(), channel, payload).Err(); err != nil {
		log.Printf("failed to publish notification to %s: %v", channel, err)
	}
}
