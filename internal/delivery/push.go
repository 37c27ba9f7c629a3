// Package delivery adapts the platform notification primitive the scheduler
// hands finished requests to. The engine only ever sees Submit/Cancel; what
// the platform does with a scheduled notification afterwards (coalescing,
// OS-level throttling) is outside its contract.
package delivery

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/RichMarin19/fast-life-sub000/internal/config"
	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
)

// PushDeliverer submits guidance notifications through Firebase Cloud
// Messaging as data messages. The companion app schedules the local
// notification at fire_at on-device; identifiers let it replace or cancel
// pending ones.
type PushDeliverer struct {
	client *messaging.Client
	token  string // device registration token for the user's device
	config config.FirebaseConfig
}

// NewPushDeliverer creates a push deliverer for a device token.
func NewPushDeliverer(ctx context.Context, cfg config.FirebaseConfig, deviceToken string) (*PushDeliverer, error) {
	if _, err := os.Stat(cfg.CredentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("Firebase credentials file not found at %s", cfg.CredentialsPath)
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase messaging client: %w", err)
	}

	return &PushDeliverer{
		client: client,
		token:  deviceToken,
		config: cfg,
	}, nil
}

// Submit hands the scheduled notification to FCM. The fire time rides in the
// data payload; apns-priority 5 keeps the data message eligible for
// background handling on iOS.
func (p *PushDeliverer) Submit(ctx context.Context, fireAt time.Time, payload guidance.Payload, identifier string) error {
	message := &messaging.Message{
		Token: p.token,
		Data: map[string]string{
			"kind":       "schedule",
			"identifier": identifier,
			"fire_at":    fireAt.Format(time.RFC3339),
			"title":      payload.Title,
			"body":       payload.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "normal",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "5",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
				},
			},
		},
	}

	response, err := p.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to submit notification %s: %w", identifier, err)
	}

	log.Printf("Submitted notification %s for %s (FCM response: %s)",
		identifier, fireAt.Format(time.RFC3339), response)
	return nil
}

// Cancel asks the device to drop one pending notification.
func (p *PushDeliverer) Cancel(ctx context.Context, identifier string) error {
	return p.sendControl(ctx, map[string]string{
		"kind":       "cancel",
		"identifier": identifier,
	})
}

// CancelAll asks the device to drop every pending notification of a type.
func (p *PushDeliverer) CancelAll(ctx context.Context, activity guidance.ActivityType) error {
	return p.sendControl(ctx, map[string]string{
		"kind":     "cancel_all",
		"activity": string(activity),
	})
}

func (p *PushDeliverer) sendControl(ctx context.Context, data map[string]string) error {
	message := &messaging.Message{
		Token: p.token,
		Data:  data,
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "5",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{ContentAvailable: true},
			},
		},
	}

	if _, err := p.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send %s control message: %w", data["kind"], err)
	}
	return nil
}
