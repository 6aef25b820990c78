package scan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObserveExplicitProgressLines(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantPct  int
		wantTask string
		wantOK   bool
	}{
		{name: "plain", line: "PROGRESS 42 Scanning iam", wantPct: 42, wantTask: "Scanning iam", wantOK: true},
		{name: "leading whitespace", line: "  PROGRESS 7 Warming up", wantPct: 7, wantTask: "Warming up", wantOK: true},
		{name: "caps at one hundred", line: "PROGRESS 250 Overshoot", wantPct: 100, wantTask: "Overshoot", wantOK: true},
		{name: "no label ignored", line: "PROGRESS 42", wantOK: false},
		{name: "unrelated output", line: "loaded 14 rules", wantOK: false},
		{name: "empty", line: "", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pct, task, ok := newTracker(4).Observe(tc.line)
			require.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				require.Equal(t, tc.wantPct, pct)
				require.Equal(t, tc.wantTask, task)
			}
		})
	}
}

func TestObserveMilestonesAdvanceThroughBand(t *testing.T) {
	tr := newTracker(4)

	pct, task, ok := tr.Observe("Processing ec2...")
	require.True(t, ok)
	require.Equal(t, 30, pct)
	require.Equal(t, "Processing ec2...", task)

	pct, _, ok = tr.Observe("Scanning s3...")
	require.True(t, ok)
	require.Equal(t, 50, pct)

	tr.Observe("Processing iam...")
	pct, _, ok = tr.Observe("Processing rds...")
	require.True(t, ok)
	require.Equal(t, 90, pct)

	// Extra milestones past the expected count stay pinned below completion.
	pct, _, ok = tr.Observe("Processing lambda...")
	require.True(t, ok)
	require.Equal(t, 90, pct)
}

func TestObserveZeroServicesStillTracks(t *testing.T) {
	tr := newTracker(0)

	pct, _, ok := tr.Observe("Processing ec2...")
	require.True(t, ok)
	require.Equal(t, 90, pct)
}

func TestTruncateLabel(t *testing.T) {
	long := strings.Repeat("x", 300)
	require.Len(t, truncateLabel(long), maxTaskLabelLen)
	require.Equal(t, "short", truncateLabel("short"))
}
