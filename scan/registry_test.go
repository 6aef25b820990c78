package scan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/screenerhq/scan-server/internal/errors"
	"github.com/screenerhq/scan-server/scan"
)

var testParams = scan.Params{
	Regions:  []string{"us-east-1"},
	Services: []string{"ec2", "s3"},
}

func waitForStatus(t *testing.T, r *scan.Registry, id string, want scan.Status) scan.Job {
	t.Helper()

	var job scan.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = r.Get(id)
		return err == nil && job.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func TestCreateIsImmediatelyRunning(t *testing.T) {
	block := make(chan struct{})
	run := func(ctx context.Context, p scan.Params, c scan.Credentials, progress scan.ProgressFunc) (string, error) {
		<-block
		return "/reports/123456789012/index.html", nil
	}
	r := scan.NewRegistry(context.Background(), run, 2)

	created := r.Create(testParams, scan.Credentials{})
	require.NotEmpty(t, created.ID)
	require.Equal(t, scan.StatusRunning, created.Status)
	require.Equal(t, 0, created.Progress)

	job, err := r.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, scan.StatusRunning, job.Status)
	require.Equal(t, 0, job.Progress)

	close(block)
	job = waitForStatus(t, r, created.ID, scan.StatusCompleted)
	require.Equal(t, 100, job.Progress)
	require.Equal(t, "/reports/123456789012/index.html", job.ReportPath)
	require.Empty(t, job.Error)
	require.NotNil(t, job.CompletedAt)
}

func TestProgressIsMonotonicallyNonDecreasing(t *testing.T) {
	reported := make(chan struct{})
	proceed := make(chan struct{})
	run := func(ctx context.Context, p scan.Params, c scan.Credentials, progress scan.ProgressFunc) (string, error) {
		progress(35, "Scanning ec2")
		reported <- struct{}{}
		<-proceed
		progress(20, "stale update")
		reported <- struct{}{}
		<-proceed
		return "/reports/123456789012/index.html", nil
	}
	r := scan.NewRegistry(context.Background(), run, 1)

	created := r.Create(testParams, scan.Credentials{})

	<-reported
	job, err := r.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, 35, job.Progress)
	require.Equal(t, "Scanning ec2", job.CurrentTask)

	proceed <- struct{}{}
	<-reported
	job, err = r.Get(created.ID)
	require.NoError(t, err)
	// Lower percentage never rolls progress back; only the label moves.
	require.Equal(t, 35, job.Progress)
	require.Equal(t, "stale update", job.CurrentTask)

	proceed <- struct{}{}
	waitForStatus(t, r, created.ID, scan.StatusCompleted)
}

func TestFailedJobRecordsDiagnostic(t *testing.T) {
	run := func(ctx context.Context, p scan.Params, c scan.Credentials, progress scan.ProgressFunc) (string, error) {
		return "", errors.Wrapf(errors.ErrScanLaunchFailed, "scan failed (exit code 3), last output:\nERROR: no credentials")
	}
	r := scan.NewRegistry(context.Background(), run, 1)

	created := r.Create(testParams, scan.Credentials{})
	job := waitForStatus(t, r, created.ID, scan.StatusFailed)
	require.Contains(t, job.Error, "no credentials")
	require.Empty(t, job.ReportPath)
	require.NotNil(t, job.CompletedAt)
}

func TestTerminalJobIsImmutable(t *testing.T) {
	var captured scan.ProgressFunc
	run := func(ctx context.Context, p scan.Params, c scan.Credentials, progress scan.ProgressFunc) (string, error) {
		captured = progress
		return "/reports/123456789012/index.html", nil
	}
	r := scan.NewRegistry(context.Background(), run, 1)

	created := r.Create(testParams, scan.Credentials{})
	job := waitForStatus(t, r, created.ID, scan.StatusCompleted)

	captured(99, "late straggler")
	after, err := r.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, job, after)
}

func TestAdmissionCapHoldsJobsInWaiting(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})
	running := make(chan struct{}, 2)
	run := func(ctx context.Context, p scan.Params, c scan.Credentials, progress scan.ProgressFunc) (string, error) {
		running <- struct{}{}
		select {
		case firstStarted <- struct{}{}:
		default:
		}
		<-release
		return "/reports/123456789012/index.html", nil
	}
	r := scan.NewRegistry(context.Background(), run, 1)

	first := r.Create(testParams, scan.Credentials{})
	<-firstStarted
	second := r.Create(testParams, scan.Credentials{})

	require.Eventually(t, func() bool {
		job, err := r.Get(second.ID)
		return err == nil && job.CurrentTask == "Waiting for scan slot..."
	}, 2*time.Second, 10*time.Millisecond)
	require.Len(t, running, 1)

	close(release)
	waitForStatus(t, r, first.ID, scan.StatusCompleted)
	waitForStatus(t, r, second.ID, scan.StatusCompleted)
}

func TestShutdownFailsAdmittedButUnstartedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run := func(ctx context.Context, p scan.Params, c scan.Credentials, progress scan.ProgressFunc) (string, error) {
		return "/reports/123456789012/index.html", nil
	}
	r := scan.NewRegistry(ctx, run, 1)

	created := r.Create(testParams, scan.Credentials{})
	job := waitForStatus(t, r, created.ID, scan.StatusFailed)
	require.Contains(t, job.Error, "shut down")
}

func TestGetUnknownJob(t *testing.T) {
	r := scan.NewRegistry(context.Background(), nil, 1)

	_, err := r.Get("deadbeef")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestListAndCompletedOrdering(t *testing.T) {
	run := func(ctx context.Context, p scan.Params, c scan.Credentials, progress scan.ProgressFunc) (string, error) {
		if len(p.Services) == 0 {
			return "", errors.ErrScanLaunchFailed
		}
		return "/reports/123456789012/index.html", nil
	}
	r := scan.NewRegistry(context.Background(), run, 2)

	ok1 := r.Create(testParams, scan.Credentials{})
	bad := r.Create(scan.Params{Regions: []string{"us-east-1"}}, scan.Credentials{})
	ok2 := r.Create(testParams, scan.Credentials{})

	waitForStatus(t, r, ok1.ID, scan.StatusCompleted)
	waitForStatus(t, r, bad.ID, scan.StatusFailed)
	waitForStatus(t, r, ok2.ID, scan.StatusCompleted)

	all := r.List()
	require.Len(t, all, 3)
	require.Equal(t, []string{ok1.ID, bad.ID, ok2.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	completed := r.Completed()
	require.Len(t, completed, 2)
	require.Equal(t, ok1.ID, completed[0].ID)
	require.Equal(t, ok2.ID, completed[1].ID)
}
