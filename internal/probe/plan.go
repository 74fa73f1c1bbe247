package probe

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/readyctl/internal/config"
	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Category IDs of the default plan, in run order.
const (
	CategoryRuntime       preflight.CategoryID = "runtime"
	CategoryOrchestration preflight.CategoryID = "orchestration"
	CategoryResources     preflight.CategoryID = "resources"
	CategoryTools         preflight.CategoryID = "tools"
	CategoryNetwork       preflight.CategoryID = "network"
	CategoryPermissions   preflight.CategoryID = "permissions"
)

// Titles are the display names of the default categories.
var Titles = map[preflight.CategoryID]string{
	CategoryRuntime:       "Container runtime",
	CategoryOrchestration: "Orchestration",
	CategoryResources:     "System resources",
	CategoryTools:         "Tooling",
	CategoryNetwork:       "Network",
	CategoryPermissions:   "Permissions",
}

// DefaultPlan builds the category plan for cfg. The runtime and
// orchestration categories are fail-fast: nothing else is worth checking
// without a working container runtime.
func DefaultPlan(cfg *config.Config, env Env) (*preflight.Plan, error) {
	cmdTimeout, err := cfg.CommandTimeout()
	if err != nil {
		return nil, err
	}
	dialTimeout, err := cfg.NetworkTimeout()
	if err != nil {
		return nil, err
	}
	diskReq, diskRec, err := cfg.Resources.DiskBytes()
	if err != nil {
		return nil, err
	}
	memReq, memRec, err := cfg.Resources.MemoryBytes()
	if err != nil {
		return nil, err
	}

	binary := cfg.Runtime.Binary
	if binary == "" {
		binary = config.DefaultRuntime
	}

	var tools []preflight.Probe
	seen := make(map[string]bool)
	for _, name := range cfg.Tools.Required {
		if !seen[name] {
			seen[name] = true
			tools = append(tools, Tool(env, name, true))
		}
	}
	for _, name := range cfg.Tools.Optional {
		if !seen[name] {
			seen[name] = true
			tools = append(tools, Tool(env, name, false))
		}
	}

	var network []preflight.Probe
	for _, target := range cfg.Network.Targets {
		if name := ReachName(target); !seen[name] {
			seen[name] = true
			network = append(network, Reach(env, target, dialTimeout, cfg.Network.Retries))
		}
	}
	for _, port := range cfg.Network.Ports {
		if name := PortName(port); !seen[name] {
			seen[name] = true
			network = append(network, Port(env, port, dialTimeout))
		}
	}

	plan, err := preflight.NewPlan(
		preflight.Category{
			ID:       CategoryRuntime,
			Title:    Titles[CategoryRuntime],
			FailFast: true,
			Probes: []preflight.Probe{
				RuntimeInstalled(env, binary, cmdTimeout),
				RuntimeDaemon(env, binary, cmdTimeout),
			},
		},
		preflight.Category{
			ID:       CategoryOrchestration,
			Title:    Titles[CategoryOrchestration],
			FailFast: true,
			Probes: []preflight.Probe{
				ComposeInstalled(env, binary, cfg.Runtime.ComposeRequired, cfg.Runtime.ComposeRecommended, cmdTimeout),
			},
		},
		preflight.Category{
			ID:    CategoryResources,
			Title: Titles[CategoryResources],
			Probes: []preflight.Probe{
				DiskFree(env, cfg.Resources.DiskPath, diskReq, diskRec),
				MemoryAvailable(env, memReq, memRec),
				CPUCores(env, cfg.Resources.CPURequired, cfg.Resources.CPURecommended),
				FileDescriptors(env, cfg.Resources.FDRequired, cfg.Resources.FDRecommended),
			},
		},
		preflight.Category{ID: CategoryTools, Title: Titles[CategoryTools], Probes: tools},
		preflight.Category{ID: CategoryNetwork, Title: Titles[CategoryNetwork], Probes: network},
		preflight.Category{
			ID:    CategoryPermissions,
			Title: Titles[CategoryPermissions],
			Probes: []preflight.Probe{
				ScratchWrite(env, cfg.Permissions.ScratchDir),
				RuntimeUnprivileged(env, binary, cmdTimeout),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}
	return plan, nil
}

// Select narrows plan to the named categories. Blank names are ignored;
// an unknown name is an ERR_402_UNKNOWN_CATEGORY validation error.
func Select(plan *preflight.Plan, names []string) (*preflight.Plan, error) {
	var ids []preflight.CategoryID
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			ids = append(ids, preflight.CategoryID(n))
		}
	}
	selected, err := plan.Select(ids...)
	if err != nil {
		return nil, rcerrors.New(rcerrors.ErrCodeUnknownCategory, err.Error(), nil).
			WithSuggestion("run 'readyctl check --help' for the category list")
	}
	return selected, nil
}
