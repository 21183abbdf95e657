package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/parse"
	"aulas-booking-client/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SyncFunc resubmits one queued booking and reports the result.
type SyncFunc func(ctx context.Context, id string) error

// WorkerPool manages a pool of workers that drain queued booking syncs.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
	sync    SyncFunc
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, sync SyncFunc) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		sync:    sync,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case bookingID := <-wp.jobs:
			log.Printf("Worker %d syncing booking %s", id, bookingID)
			wp.processBooking(ctx, bookingID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(bookingID string) {
	wp.jobs <- bookingID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// processBooking runs the sync for one queued booking and notifies every
// registered subscription of the outcome.
func (wp *WorkerPool) processBooking(ctx context.Context, bookingID string) {
	syncErr := wp.sync(ctx, bookingID)

	message := wp.outcomeMessage(ctx, bookingID, syncErr)
	if message == "" {
		return
	}

	var subscriptions []model.PushSubscription
	if err := wp.store.DB().WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for booking %s: %v", bookingID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for booking %s", len(subscriptions), bookingID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// outcomeMessage builds the user-facing notice for a finished sync. The
// queued record supplies the room and slot; if it is already gone there
// is nothing worth announcing.
func (wp *WorkerPool) outcomeMessage(ctx context.Context, bookingID string, syncErr error) string {
	list, err := wp.store.ListPending(ctx)
	if err != nil {
		log.Printf("Error reading queued bookings: %v", err)
		return ""
	}
	var record *model.PendingBooking
	for i := range list {
		if list[i].ID == bookingID {
			record = &list[i]
			break
		}
	}
	if record == nil {
		return ""
	}

	label := fmt.Sprintf("aula %d", record.RoomID)
	if record.Room != nil && record.Room.Name != "" {
		label = record.Room.Name
	}

	if syncErr != nil {
		detail := record.ErrorMessage
		if detail == "" {
			detail = syncErr.Error()
		}
		return fmt.Sprintf("No se pudo sincronizar la reserva de %s del %s: %s",
			label, record.Date, detail)
	}
	return fmt.Sprintf("Reserva sincronizada: %s el %s de %s a %s",
		label, record.Date, parse.Format12h(record.Start), parse.Format12h(record.End))
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DB().WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
