package preflight

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Kind identifies what a Measurement observed.
type Kind int

const (
	// KindPresence is a yes/no observation (installed, reachable, writable).
	KindPresence Kind = iota
	// KindQuantity is a numeric observation with a unit.
	KindQuantity
	// KindVersion is a version string observation.
	KindVersion
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPresence:
		return "presence"
	case KindQuantity:
		return "quantity"
	case KindVersion:
		return "version"
	default:
		return "unknown"
	}
}

// Unit is the unit of a quantity measurement.
type Unit string

const (
	// UnitBytes measures sizes; rendered with SI prefixes (1 GB = 10^9 bytes).
	UnitBytes Unit = "bytes"
	// UnitCores measures CPU cores.
	UnitCores Unit = "cores"
	// UnitCount is a plain count (file descriptors, processes).
	UnitCount Unit = ""
)

// Measurement is a typed observation produced by a probe.
// Measurements are values; copying one never aliases another.
type Measurement struct {
	Kind    Kind
	Present bool
	Value   float64
	Unit    Unit
	Version string
	// Note is a human-readable description of what was observed,
	// e.g. the binary path or the reason something is absent.
	Note string
}

// Presence returns a presence measurement.
func Presence(present bool, note string) Measurement {
	return Measurement{Kind: KindPresence, Present: present, Note: note}
}

// Quantity returns a numeric measurement.
func Quantity(value float64, unit Unit) Measurement {
	return Measurement{Kind: KindQuantity, Present: true, Value: value, Unit: unit}
}

// Version returns a version measurement. An empty version means
// the versioned component was not found.
func Version(version, note string) Measurement {
	return Measurement{Kind: KindVersion, Present: version != "", Version: version, Note: note}
}

// String renders the measured value.
func (m Measurement) String() string {
	switch m.Kind {
	case KindQuantity:
		return FormatQuantity(m.Value, m.Unit)
	case KindVersion:
		if !m.Present {
			return "not found"
		}
		return m.Version
	default:
		if m.Present {
			return "present"
		}
		return "absent"
	}
}

// FormatQuantity renders value in unit for reports.
func FormatQuantity(value float64, unit Unit) string {
	switch unit {
	case UnitBytes:
		if value < 0 {
			value = 0
		}
		return humanize.Bytes(uint64(value))
	case UnitCores:
		return fmt.Sprintf("%s cores", strconv.FormatFloat(value, 'f', -1, 64))
	default:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
}
