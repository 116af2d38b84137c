package app

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"terralink/internal/alerting"
	"terralink/internal/config"
	"terralink/internal/dataset"
	"terralink/internal/metrics"
	"terralink/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives command output. Defaults to stdout.
	Out io.Writer

	recorder *metrics.Recorder
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config:   cfg,
		Logger:   logger.With().Str("component", "app").Logger(),
		Out:      os.Stdout,
		recorder: metrics.NewRecorder(),
	}
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) newSource() *dataset.File {
	return dataset.NewFile(dataset.FileOptions{
		Path:   a.Config.Dataset.Path,
		Format: a.Config.Dataset.Format,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}

	var fan alerting.Fanout
	for _, channel := range a.Config.Alerting.Channels {
		switch strings.ToLower(strings.TrimSpace(channel)) {
		case "log":
			fan = append(fan, alerting.NewLogNotifier(a.Logger))
		case "telegram":
			if !a.Config.Alerting.Telegram.Enabled {
				a.Logger.Warn().Msg("telegram channel listed but alerting.telegram.enabled is false")
				continue
			}
			cfg := a.Config.Alerting.Telegram
			fan = append(fan, alerting.NewTelegramNotifier(alerting.TelegramOptions{
				BotToken:   cfg.BotToken,
				ChatID:     cfg.ChatID,
				APIBase:    cfg.APIBase,
				Timeout:    cfg.Timeout,
				MaxRetries: cfg.MaxRetries,
			}, a.Logger))
		default:
			a.Logger.Warn().Str("channel", channel).Msg("unknown alert channel ignored")
		}
	}
	if len(fan) == 0 {
		return nil
	}
	return fan
}

func (a *App) newService(source dataset.Source) *service.Service {
	return service.New(a.Config, source, a.recorder, a.newNotifier(), a.Logger)
}

// evaluate loads the configured dataset and runs detection.
func (a *App) evaluate(ctx context.Context) (*service.Service, service.Result, error) {
	svc := a.newService(a.newSource())
	res, err := svc.Evaluate(ctx)
	return svc, res, err
}

// DetectOptions configure the detect command.
type DetectOptions struct {
	FarmID string
	JSON   bool
}

// FarmOptions configure the farm command.
type FarmOptions struct {
	FarmID  string
	PNGPath string
}

// ExportOptions hold parameters for exporting alerts and aggregates.
type ExportOptions struct {
	CSVPath  string
	XLSXPath string
	PNGPath  string
}

// SimulateOptions configure the live simulation.
type SimulateOptions struct {
	Steps int
	Seed  int64
}
