package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"terralink/internal/detection"
)

// Notification is what the bell shows: how many alerts are active and the
// most recently appended one.
type Notification struct {
	Total    int
	High     int
	Latest   detection.Alert
	Channels []string
}

// NewNotification summarises an alert list.
func NewNotification(alerts []detection.Alert, channels []string) Notification {
	note := Notification{Total: len(alerts), Channels: channels}
	note.High = detection.CountBySeverity(alerts)[detection.SeverityHigh]
	if latest, ok := detection.Latest(alerts); ok {
		note.Latest = latest
	}
	return note
}

// Empty reports whether there is nothing to announce.
func (n Notification) Empty() bool {
	return n.Total == 0
}

// BellMessage renders the bell summary.
func BellMessage(n Notification) string {
	if n.Empty() {
		return "No active alerts. All farms are stable"
	}
	return fmt.Sprintf("Currently %d active alerts (%d high). Latest: %s on %s.",
		n.Total, n.High, n.Latest.Type, n.Latest.FarmID)
}

// NewAlertMessage renders the toast for a freshly raised alert.
func NewAlertMessage(a detection.Alert) string {
	return fmt.Sprintf("New %s alert on farm %s", a.Type, a.FarmID)
}

// Notifier delivers a notification to one channel.
type Notifier interface {
	Notify(ctx context.Context, note Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs a log-only notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "alert_log").Logger()}
}

// Notify logs the bell message.
func (n *LogNotifier) Notify(ctx context.Context, note Notification) error {
	event := n.logger.Info().Int("total", note.Total).Int("high", note.High)
	if !note.Empty() {
		event = event.Str("latest_type", string(note.Latest.Type)).
			Str("latest_farm", note.Latest.FarmID).
			Time("latest_at", note.Latest.TriggeredAt)
	}
	event.Msg(BellMessage(note))
	return nil
}

// TelegramOptions parameterise the Telegram notifier.
type TelegramOptions struct {
	BotToken   string
	ChatID     string
	APIBase    string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	opts   TelegramOptions
	client *resty.Client
	logger zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(opts TelegramOptions, logger zerolog.Logger) *TelegramNotifier {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.APIBase == "" {
		opts.APIBase = "https://api.telegram.org"
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.APIBase, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &TelegramNotifier{
		opts:   opts,
		client: client,
		logger: logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls sendMessage, retrying transport and 5xx failures.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.opts.ChatID,
		"text":    renderMessage(note),
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = n.opts.RetryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(n.opts.MaxRetries)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		return n.send(ctx, payload)
	}, policy)
	if err != nil {
		return err
	}

	n.logger.Info().Int("total", note.Total).
		Int("attempts", attempt).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("alert notification sent (Telegram)")
	return nil
}

func (n *TelegramNotifier) send(ctx context.Context, payload map[string]string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/bot" + n.opts.BotToken + "/sendMessage")
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}

	status := resp.StatusCode()
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("telegram unexpected status: %d", status)
	}
	if status < 200 || status >= 300 {
		return backoff.Permanent(fmt.Errorf("telegram unexpected status: %d", status))
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err == nil && !result.OK {
		return backoff.Permanent(fmt.Errorf("telegram returned ok=false"))
	}
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[TerraLink Alert]\n")
	builder.WriteString(BellMessage(note))
	builder.WriteString("\n")
	if !note.Empty() {
		latest := note.Latest
		builder.WriteString(fmt.Sprintf("Farm: %s\n", latest.FarmID))
		builder.WriteString(fmt.Sprintf("Type: %s (%s)\n", latest.Type, latest.Severity))
		builder.WriteString(fmt.Sprintf("Triggered: %s UTC\n", latest.TriggeredAt.UTC().Format(time.RFC3339)))
		builder.WriteString(fmt.Sprintf("Microinsurance: %s\n", latest.MicroinsuranceStatus))
	}
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	return builder.String()
}

// Fanout delivers to every notifier and joins their failures.
type Fanout []Notifier

// Notify calls each notifier in order.
func (f Fanout) Notify(ctx context.Context, note Notification) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Notifier = (*TelegramNotifier)(nil)
var _ Notifier = (*LogNotifier)(nil)
var _ Notifier = Fanout(nil)
