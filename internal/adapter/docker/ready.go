package docker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docker/docker/client"
)

// ErrDaemonUnreachable means the Docker daemon did not answer a ping.
var ErrDaemonUnreachable = errors.New("docker daemon unreachable")

const readyPollInterval = time.Second

// Ping checks once that the daemon answers.
func Ping(ctx context.Context, cli client.APIClient) error {
	ping, err := cli.Ping(ctx)
	if err != nil {
		return fmt.Errorf("%w at %s: %w", ErrDaemonUnreachable, cli.DaemonHost(), err)
	}
	if ping.APIVersion == "" {
		return fmt.Errorf("%w at %s: empty API version", ErrDaemonUnreachable, cli.DaemonHost())
	}
	return nil
}

// WaitReady pings the daemon until it answers or ctx is done. Errors other
// than connection failures are returned immediately.
func WaitReady(ctx context.Context, cli client.APIClient) error {
	log := slog.With("component", "docker")
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()
	waiting := false
	for {
		_, err := cli.Ping(ctx)
		if err == nil {
			if waiting {
				log.Debug("Daemon reachable.")
			}
			return nil
		}
		if !client.IsErrConnectionFailed(err) {
			log.Error("Ping failed.", "err", err)
			return fmt.Errorf("%w at %s: %w", ErrDaemonUnreachable, cli.DaemonHost(), err)
		}
		if !waiting {
			waiting = true
			log.Debug("Waiting for docker daemon.", "host", cli.DaemonHost())
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w at %s: %w", ErrDaemonUnreachable, cli.DaemonHost(), ctx.Err())
		case <-ticker.C:
		}
	}
}
