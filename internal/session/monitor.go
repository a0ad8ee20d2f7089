package session

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
)

// startMonitorLocked starts the keep-alive monitor for the current
// connection. Callers hold s.mu.
func (s *Session) startMonitorLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	s.monitorCancel = cancel
	conn := s.conn
	go s.monitorLoop(ctx, conn)
}

// stopMonitorLocked stops the keep-alive monitor. Callers hold s.mu.
func (s *Session) stopMonitorLocked() {
	if s.monitorCancel != nil {
		s.monitorCancel()
		s.monitorCancel = nil
	}
}

// monitorLoop watches for receive silence. A verbose device in full
// status-reporting mode chatters regularly, so prolonged silence means
// trouble: past one interval the monitor sends a cheap probe query,
// past two it declares the connection dead and lets the reconnect
// machinery take over.
func (s *Session) monitorLoop(ctx context.Context, conn net.Conn) {
	interval := s.cfg.MonitorInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		silence := time.Since(s.lastMessageTime())
		if silence > 2*interval {
			s.log.Warn("no messages received, declaring connection dead",
				zap.Duration("silence", silence))
			s.handleDisconnected(conn)
			return
		}
		if silence > interval {
			s.log.Debug("no recent messages, probing device",
				zap.Duration("silence", silence))
			if query, ok := s.Descriptor().Query(descriptor.QueryVerbose); ok {
				if err := s.SendCommand(ctx, query, false); err != nil {
					s.log.Debug("keep-alive probe failed", zap.Error(err))
				}
			}
		}
	}
}
