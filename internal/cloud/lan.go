package cloud

import (
	"context"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// LANProbe checks plain IP reachability for devices on the local network.
// It is an optional fallback when the cloud API is unavailable: a reply means
// the device is up, but says nothing about its broker session.
type LANProbe struct {
	pingTimeout time.Duration
	logger      *zap.Logger
}

// NewLANProbe creates a LAN reachability probe.
func NewLANProbe(pingTimeout time.Duration, logger *zap.Logger) *LANProbe {
	if pingTimeout == 0 {
		pingTimeout = 2 * time.Second
	}
	return &LANProbe{pingTimeout: pingTimeout, logger: logger}
}

// Reachable pings ip once and reports whether a reply arrived.
func (p *LANProbe) Reachable(ctx context.Context, ip string) bool {
	pinger, err := probing.NewPinger(ip)
	if err != nil {
		p.logger.Debug("failed to create pinger", zap.String("ip", ip), zap.Error(err))
		return false
	}

	pinger.Count = 1
	pinger.Timeout = p.pingTimeout
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if runErr := pinger.Run(); runErr != nil {
			p.logger.Debug("ping failed", zap.String("ip", ip), zap.Error(runErr))
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		pinger.Stop()
		return false
	}

	return pinger.Statistics().PacketsRecv > 0
}
