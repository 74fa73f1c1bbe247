package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/readyctl/internal/config"
	"github.com/Aman-CERP/readyctl/internal/history"
	"github.com/Aman-CERP/readyctl/internal/preflight"
	"github.com/Aman-CERP/readyctl/internal/probe"
	"github.com/Aman-CERP/readyctl/internal/runlock"
	"github.com/Aman-CERP/readyctl/pkg/version"
)

// Tool names.
const (
	ToolCheckReadiness   = "check_readiness"
	ToolReadinessHistory = "readiness_history"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// PlanBuilder builds a fresh plan for each check.
type PlanBuilder func() (*preflight.Plan, error)

// HistoryStore is the part of the history database the server uses.
type HistoryStore interface {
	Save(ctx context.Context, out preflight.Outcome, meta history.Meta) (int64, error)
	Recent(ctx context.Context, limit int) ([]history.Run, error)
	Prune(ctx context.Context, retain int) (int64, error)
}

// Server is the readyctl MCP server.
// It lets AI clients ask whether the host is ready for deployment.
type Server struct {
	mcp     *mcp.Server
	plan    PlanBuilder
	history HistoryStore
	config  *config.Config
	logger  *slog.Logger

	lockDir      string
	probeTimeout time.Duration
	host         string

	// one check at a time
	runMu sync.Mutex
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// Option configures a Server.
type Option func(*Server)

// WithHistory records every check and serves readiness_history from h.
func WithHistory(h HistoryStore) Option {
	return func(s *Server) { s.history = h }
}

// WithLockDir takes the cross-process run lock in dir for every check.
func WithLockDir(dir string) Option {
	return func(s *Server) { s.lockDir = dir }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new MCP server.
func NewServer(cfg *config.Config, plan PlanBuilder, opts ...Option) (*Server, error) {
	if plan == nil {
		return nil, errors.New("plan builder is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	timeout, err := cfg.ProbeTimeout()
	if err != nil {
		return nil, err
	}

	host, _ := os.Hostname()
	s := &Server{
		plan:         plan,
		config:       cfg,
		logger:       slog.Default(),
		probeTimeout: timeout,
		host:         host,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "readyctl",
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools
	)
	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{
			Name: ToolCheckReadiness,
			Description: "Check whether this host is ready to deploy containers: runtime, compose, " +
				"disk, memory, CPU, file descriptors, tools, network and permissions. " +
				"Returns ready/not ready with a pass/warn/fail result and remediation hint per check.",
		},
		{
			Name:        ToolReadinessHistory,
			Description: "List recent readiness runs on this host, newest first.",
		},
	}
}

func (s *Server) registerTools() {
	tools := s.ListTools()

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[0].Name,
		Description: tools[0].Description,
	}, s.mcpCheckHandler)
	s.logger.Debug("Registered tool", slog.String("name", tools[0].Name))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[1].Name,
		Description: tools[1].Description,
	}, s.mcpHistoryHandler)
	s.logger.Debug("Registered tool", slog.String("name", tools[1].Name))

	s.logger.Info("MCP tools registered", slog.Int("count", len(tools)))
}

// CallTool invokes a tool by name with JSON-style arguments and returns
// the tool's structured output.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolCheckReadiness:
		var in CheckInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.Check(ctx, in)
	case ToolReadinessHistory:
		var in HistoryInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.History(ctx, in)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func decodeArgs(args map[string]any, v any) error {
	if len(args) == 0 {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return NewInvalidParamsError(err.Error())
	}
	if err := json.Unmarshal(data, v); err != nil {
		return NewInvalidParamsError(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

// Check runs the readiness plan, narrowed to in.Categories (or the
// configured default categories), and records the outcome.
func (s *Server) Check(ctx context.Context, in CheckInput) (CheckOutput, error) {
	requestID := generateRequestID()

	categories := in.Categories
	if len(categories) == 0 {
		categories = s.config.Run.Categories
	}

	base, err := s.plan()
	if err != nil {
		return CheckOutput{}, MapError(err)
	}
	plan, err := probe.Select(base, categories)
	if err != nil {
		return CheckOutput{}, MapError(err)
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.lockDir != "" {
		lock := runlock.New(s.lockDir)
		if err := lock.Acquire(); err != nil {
			return CheckOutput{}, MapError(err)
		}
		defer func() { _ = lock.Release() }()
	}

	s.logger.Info("check started",
		slog.String("request_id", requestID),
		slog.Int("probes", plan.ProbeCount()))

	runner := preflight.NewRunner(
		preflight.WithLogger(s.logger),
		preflight.WithProbeTimeout(s.probeTimeout),
	)
	out := runner.Run(ctx, plan)

	runID := s.record(ctx, out, requestID)

	s.logger.Info("check completed",
		slog.String("request_id", requestID),
		slog.Bool("ready", out.Ready()),
		slog.Int("failed", out.Summary.Failed),
		slog.Duration("duration", out.Duration))

	return ToCheckOutput(out, runID), nil
}

// record saves the outcome when history is enabled. History problems
// never fail the check itself.
func (s *Server) record(ctx context.Context, out preflight.Outcome, requestID string) int64 {
	if s.history == nil {
		return 0
	}
	id, err := s.history.Save(ctx, out, history.Meta{Host: s.host, Version: version.Version})
	if err != nil {
		s.logger.Warn("failed to record run",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return 0
	}
	if _, err := s.history.Prune(ctx, s.config.History.Retain); err != nil {
		s.logger.Warn("failed to prune history",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
	}
	return id
}

// History returns recent runs, newest first.
func (s *Server) History(ctx context.Context, in HistoryInput) (HistoryOutput, error) {
	if s.history == nil {
		return HistoryOutput{}, MapError(ErrHistoryDisabled)
	}
	if in.Limit < 0 {
		return HistoryOutput{}, NewInvalidParamsError("limit must not be negative")
	}

	runs, err := s.history.Recent(ctx, clampLimit(in.Limit, defaultHistoryLimit, 1, maxHistoryLimit))
	if err != nil {
		return HistoryOutput{}, MapError(err)
	}
	return ToHistoryOutput(runs), nil
}

func (s *Server) mcpCheckHandler(ctx context.Context, _ *mcp.CallToolRequest, input CheckInput) (
	*mcp.CallToolResult,
	CheckOutput,
	error,
) {
	out, err := s.Check(ctx, input)
	if err != nil {
		return nil, CheckOutput{}, err
	}
	return textResult(FormatCheck(out)), out, nil
}

func (s *Server) mcpHistoryHandler(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (
	*mcp.CallToolResult,
	HistoryOutput,
	error,
) {
	out, err := s.History(ctx, input)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	return textResult(FormatHistory(out)), out, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// Serve runs the server on stdio until ctx is canceled or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}

// clampLimit returns def for zero and keeps v within [lo, hi].
func clampLimit(v, def, lo, hi int) int {
	if v == 0 {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func generateRequestID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
