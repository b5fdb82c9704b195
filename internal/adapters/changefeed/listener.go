package changefeed

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	pingInterval                 = 90 * time.Second

	// ChannelName is the NOTIFY channel the table triggers write to. The
	// payload is the table name.
	ChannelName = "table_changes"
)

// Notifications is what the pump reads from; *pq.Listener satisfies it.
type Notifications interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
}

// Listener feeds PostgreSQL table change notifications into a Hub.
type Listener struct {
	dbURL  string
	hub    *Hub
	logger *zap.Logger
}

func NewListener(dbURL string, hub *Hub, logger *zap.Logger) *Listener {
	return &Listener{dbURL: dbURL, hub: hub, logger: logger}
}

// Start blocks until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.Warn("change feed listener problem", zap.Int("event", int(ev)), zap.Error(err))
		}
	}

	listener := pq.NewListener(l.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(ChannelName); err != nil {
		return err
	}
	l.logger.Info("change feed listening", zap.String("channel", ChannelName))

	return l.pump(ctx, listener)
}

func (l *Listener) pump(ctx context.Context, source Notifications) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	notifications := source.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("change feed shutting down")
			return ctx.Err()

		case n := <-notifications:
			if n == nil {
				// reconnected; anything may have changed while we were away
				l.logger.Warn("change feed reconnected, refreshing all subscribers")
				l.publishAll()
				continue
			}
			l.hub.Publish(n.Extra)

		case <-ticker.C:
			go func() {
				if err := source.Ping(); err != nil {
					l.logger.Warn("change feed ping failed", zap.Error(err))
				}
			}()
		}
	}
}

func (l *Listener) publishAll() {
	l.hub.mu.RLock()
	tables := make([]string, 0, len(l.hub.subs))
	for table := range l.hub.subs {
		tables = append(tables, table)
	}
	l.hub.mu.RUnlock()

	for _, table := range tables {
		l.hub.Publish(table)
	}
}
