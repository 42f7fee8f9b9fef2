package services

import (
	"context"
	"log"
	"time"
)

type LatestUpdateSource interface {
	LatestUpdate(ctx context.Context) (time.Time, error)
}

type ChangePublisher interface {
	Publish(ctx context.Context, topic string) error
}

// StartJobChangeWatcher polls the newest job updatedAt and publishes topic
// whenever it advances, so writes made outside the API still wake
// long-polling readers. The worker stops when ctx is done.
func StartJobChangeWatcher(ctx context.Context, interval time.Duration, source LatestUpdateSource, pub ChangePublisher, topic string) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		var last time.Time
		for {
			select {
			case <-ctx.Done():
				log.Println("job watcher: shutting down")
				return
			case <-ticker.C:
				latest, err := source.LatestUpdate(ctx)
				if err != nil {
					log.Println("job watcher: error reading latest update:", err)
					continue
				}
				if latest.After(last) {
					if !last.IsZero() {
						if err := pub.Publish(ctx, topic); err != nil {
							log.Println("job watcher: publish failed:", err)
							continue
						}
					}
					last = latest
				}
			}
		}
	}()
}
