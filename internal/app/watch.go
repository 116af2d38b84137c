package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"terralink/internal/alerting"
	"terralink/internal/detection"
	"terralink/internal/service"
)

// Watch re-runs detection whenever the dataset file changes. A reload that
// fails validation is logged and the previous result stays current.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source := a.newSource()
	svc := a.newService(source)

	res, err := svc.Evaluate(ctx)
	if err != nil {
		return err
	}
	a.reportPass(ctx, svc, res)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(source.Path()); err != nil {
		return fmt.Errorf("watch %s: %w", source.Path(), err)
	}

	a.serveMetrics(ctx)
	a.Logger.Info().Str("path", source.Path()).Msg("watching dataset for changes")

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info().Msg("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// editors that save atomically surface as Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			next, err := svc.Evaluate(ctx)
			if err != nil {
				a.Logger.Error().Err(err).Str("path", source.Path()).Msg("reload failed, keeping previous result")
				_ = watcher.Add(source.Path())
				continue
			}
			res = next
			a.reportPass(ctx, svc, res)

			// re-add in case an atomic save replaced the inode
			_ = watcher.Add(source.Path())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.Logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func (a *App) reportPass(ctx context.Context, svc *service.Service, res service.Result) {
	note := alerting.NewNotification(res.Alerts, a.Config.Alerting.Channels)
	high := detection.CountBySeverity(res.Alerts)[detection.SeverityHigh]
	fmt.Fprintf(a.out(), "%d readings, %d alerts (%d high). %s\n",
		len(res.Readings), len(res.Alerts), high, alerting.BellMessage(note))
	svc.Notify(ctx, res.Alerts)
}
