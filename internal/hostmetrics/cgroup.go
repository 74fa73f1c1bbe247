package hostmetrics

import (
	"fmt"
	"strconv"
	"strings"
)

// parseCPUMax parses "<quota> <period>" where quota may be "max".
func parseCPUMax(s string) (float64, bool, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, false, fmt.Errorf("unexpected cpu.max contents %q", strings.TrimSpace(s))
	}
	if fields[0] == "max" {
		return 0, false, nil
	}
	quota, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cpu.max quota: %w", err)
	}
	period, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || period <= 0 {
		return 0, false, fmt.Errorf("parse cpu.max period %q", fields[1])
	}
	return quota / period, true, nil
}
