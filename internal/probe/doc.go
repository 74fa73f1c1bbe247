// Package probe holds the concrete readiness probes and assembles them into
// the default category plan.
//
// Probes reach the host only through Env: external commands go through a
// CommandRunner, capacity readings through hostmetrics.Metrics, files through
// an afero.Fs and sockets through a Dialer. Tests substitute fakes for all of
// them.
package probe
