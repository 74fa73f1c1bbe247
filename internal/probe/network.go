package probe

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"time"

	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// ReachName returns the probe name for an outbound target.
func ReachName(target string) string {
	return "reach_" + target
}

// PortName returns the probe name for a local port.
func PortName(port int) string {
	return "port_" + strconv.Itoa(port)
}

// Reach checks that target (host:port) accepts a TCP connection.
// Each attempt is bounded by timeout; retryable failures are retried with
// env.Retry. An unreachable target warns, it never fails.
func Reach(env Env, target string, timeout time.Duration, retries int) preflight.Probe {
	retry := env.Retry
	retry.MaxRetries = retries

	return preflight.Probe{
		Name: ReachName(target),
		Policy: preflight.Policy{
			Rule: preflight.RuleBestEffort,
			Hint: fmt.Sprintf("check firewall and proxy settings for %s", target),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			attempts := 0
			err := rcerrors.Retry(ctx, retry, func() error {
				attempts++
				return dial(ctx, env.Dialer, target, timeout)
			})
			if err == nil {
				return preflight.Presence(true, "reachable"), nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return preflight.Measurement{}, ctxErr
			}

			reason := err.Error()
			var rerr *rcerrors.Error
			if stderrors.As(err, &rerr) {
				reason = rerr.Message
			}
			if attempts > 1 {
				reason = fmt.Sprintf("%s after %d attempts", reason, attempts)
			}
			return preflight.Presence(false, reason), nil
		},
	}
}

func dial(ctx context.Context, d Dialer, target string, timeout time.Duration) error {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.DialContext(dialCtx, "tcp", target)
	if err != nil {
		return rcerrors.NetworkError(target, err)
	}
	_ = conn.Close()
	return nil
}

// Port checks that nothing is listening on a local port the deployment
// will bind. A bound port warns.
func Port(env Env, port int, timeout time.Duration) preflight.Probe {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	return preflight.Probe{
		Name: PortName(port),
		Policy: preflight.Policy{
			Rule: preflight.RuleBestEffort,
			Hint: fmt.Sprintf("stop the process listening on port %d or change the deployment's port mapping", port),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			err := dial(ctx, env.Dialer, addr, timeout)
			if err == nil {
				return preflight.Presence(false, fmt.Sprintf("port %d is already in use", port)), nil
			}
			if rcerrors.GetCode(err) == rcerrors.ErrCodeConnectionRefused {
				return preflight.Presence(true, fmt.Sprintf("port %d is free", port)), nil
			}
			return preflight.Measurement{}, err
		},
	}
}
