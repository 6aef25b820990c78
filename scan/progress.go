package scan

import (
	"regexp"
	"strconv"
	"strings"
)

// Scanners that know about the side channel emit explicit progress lines:
//
//	PROGRESS <0-100> <current task label>
//
// Scanners that don't are tracked by milestone: each service the scanner
// reports as being processed advances the percentage through the 10-90 band.
var progressLineRe = regexp.MustCompile(`^PROGRESS\s+(\d{1,3})\s+(.+)$`)

const (
	milestoneFloor   = 10
	milestoneCeiling = 90
	maxTaskLabelLen  = 100
)

// tracker derives a progress percentage from the scanner's output stream.
type tracker struct {
	totalServices int
	seen          int
}

func newTracker(totalServices int) *tracker {
	if totalServices < 1 {
		totalServices = 1
	}
	return &tracker{totalServices: totalServices}
}

// Observe inspects one output line and reports a progress update if the
// line carries one.
func (t *tracker) Observe(line string) (pct int, task string, ok bool) {
	line = strings.TrimSpace(line)

	if m := progressLineRe.FindStringSubmatch(line); m != nil {
		pct, err := strconv.Atoi(m[1])
		if err != nil || pct > 100 {
			pct = 100
		}
		return pct, truncateLabel(m[2]), true
	}

	if strings.Contains(line, "Processing") || strings.Contains(line, "Scanning") {
		t.seen++
		pct := milestoneFloor + t.seen*(milestoneCeiling-milestoneFloor)/t.totalServices
		if pct > milestoneCeiling {
			pct = milestoneCeiling
		}
		return pct, truncateLabel(line), true
	}

	return 0, "", false
}

func truncateLabel(label string) string {
	if len(label) > maxTaskLabelLen {
		return label[:maxTaskLabelLen]
	}
	return label
}
