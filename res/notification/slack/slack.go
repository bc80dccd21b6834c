package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"servibook-api/res/notification"
	"servibook-api/res/store"

	"go.uber.org/zap"
)

// notificationService posts booking events to an ops Slack channel via an
// incoming webhook
type notificationService struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// slackMessage represents the structure of a Slack message
type slackMessage struct {
	Text string `json:"text"`
}

// New creates a new NotificationService instance
func New(webhookURL string, timeout time.Duration, logger *zap.SugaredLogger) notification.NotificationService {
	return &notificationService{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (s *notificationService) NotifyBookingCreated(ctx context.Context, booking *store.Booking) error {
	return s.sendBookingEvent(ctx, ":calendar: Booking created", booking)
}

func (s *notificationService) NotifyBookingConfirmed(ctx context.Context, booking *store.Booking) error {
	return s.sendBookingEvent(ctx, ":white_check_mark: Booking confirmed", booking)
}

func (s *notificationService) NotifyBookingStarted(ctx context.Context, booking *store.Booking) error {
	return s.sendBookingEvent(ctx, ":hourglass_flowing_sand: Service started", booking)
}

func (s *notificationService) NotifyBookingCompleted(ctx context.Context, booking *store.Booking) error {
	return s.sendBookingEvent(ctx, ":tada: Service completed", booking)
}

func (s *notificationService) NotifyBookingCancelled(ctx context.Context, booking *store.Booking) error {
	event := ":x: Booking cancelled"
	if booking.CancellationReason != "" {
		event = fmt.Sprintf("%s (%s)", event, booking.CancellationReason)
	}
	return s.sendBookingEvent(ctx, event, booking)
}

func (s *notificationService) NotifyBookingRescheduled(ctx context.Context, booking *store.Booking) error {
	return s.sendBookingEvent(ctx, ":arrows_counterclockwise: Booking rescheduled", booking)
}

func (s *notificationService) NotifyBookingReminder(ctx context.Context, booking *store.Booking, kind store.ReminderKind) error {
	return s.sendBookingEvent(ctx, fmt.Sprintf(":bell: Reminder (%s)", kind), booking)
}

func (s *notificationService) sendBookingEvent(ctx context.Context, event string, booking *store.Booking) error {
	// If webhook URL is not configured, skip notification silently
	if s.webhookURL == "" {
		s.logger.Infof("Slack webhook URL not configured, skipping notification")
		return nil
	}

	message := slackMessage{
		Text: fmt.Sprintf("%s: %s on %s at %s (provider: %s, client: %s)",
			event, booking.ID,
			booking.ScheduledDate.Format("2006-01-02"), booking.ScheduledTime,
			booking.ProviderID, booking.ClientID),
	}

	return s.sendToSlack(ctx, message)
}

// sendToSlack is a helper method to send messages to Slack
func (s *notificationService) sendToSlack(ctx context.Context, message slackMessage) error {
	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create slack request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack API returned non-OK status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
