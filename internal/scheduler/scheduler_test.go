package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/pipeline"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/scheduler"
)

type fakePipeline struct {
	ran    []int64
	failID int64
}

func (p *fakePipeline) Run(ctx context.Context, site domain.Site) (*pipeline.Summary, error) {
	if site.ID == p.failID {
		return nil, errors.New("audit blew up")
	}
	p.ran = append(p.ran, site.ID)
	return &pipeline.Summary{Rows: 1, FilesConsumed: 1}, nil
}

type fakeRunLog struct {
	ranToday map[int64]bool
	checkErr map[int64]error
	marked   []int64
	markErr  error
}

func (l *fakeRunLog) HasRunToday(ctx context.Context, siteID int64) (bool, error) {
	if err := l.checkErr[siteID]; err != nil {
		return false, err
	}
	return l.ranToday[siteID], nil
}

func (l *fakeRunLog) MarkRun(ctx context.Context, siteID int64) error {
	if l.markErr != nil {
		return l.markErr
	}
	l.marked = append(l.marked, siteID)
	return nil
}

func testSites() []domain.Site {
	return []domain.Site{
		{ID: 1, Name: "One", URLs: []string{"https://one.com"}},
		{ID: 2, Name: "Two", URLs: []string{"https://two.com"}},
		{ID: 3, Name: "Three", URLs: []string{"https://three.com"}},
	}
}

func newScheduler(t *testing.T, p scheduler.SitePipeline, l scheduler.RunLog) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.New(p, l, testSites(), scheduler.Config{}, logger.NewNop())
	require.NoError(t, err)
	return s
}

func TestScheduler_RunDue_RunsAndMarksEverySite(t *testing.T) {
	p := &fakePipeline{}
	l := &fakeRunLog{ranToday: map[int64]bool{}}
	s := newScheduler(t, p, l)

	s.RunDue(context.Background())

	assert.Equal(t, []int64{1, 2, 3}, p.ran)
	assert.Equal(t, []int64{1, 2, 3}, l.marked)
}

func TestScheduler_RunDue_SkipsSitesAlreadyRunToday(t *testing.T) {
	p := &fakePipeline{}
	l := &fakeRunLog{ranToday: map[int64]bool{2: true}}
	s := newScheduler(t, p, l)

	s.RunDue(context.Background())

	assert.Equal(t, []int64{1, 3}, p.ran)
	assert.Equal(t, []int64{1, 3}, l.marked)
}

func TestScheduler_RunDue_SiteFailureDoesNotStopOthers(t *testing.T) {
	p := &fakePipeline{failID: 2}
	l := &fakeRunLog{ranToday: map[int64]bool{}}
	s := newScheduler(t, p, l)

	s.RunDue(context.Background())

	assert.Equal(t, []int64{1, 3}, p.ran)
	// A failed site is left unmarked so a later sweep retries it.
	assert.Equal(t, []int64{1, 3}, l.marked)
}

func TestScheduler_RunDue_RunLogCheckFailureSkipsSite(t *testing.T) {
	p := &fakePipeline{}
	l := &fakeRunLog{
		ranToday: map[int64]bool{},
		checkErr: map[int64]error{1: errors.New("db down")},
	}
	s := newScheduler(t, p, l)

	s.RunDue(context.Background())

	assert.Equal(t, []int64{2, 3}, p.ran)
}

func TestScheduler_Start_InvalidSchedule(t *testing.T) {
	p := &fakePipeline{}
	l := &fakeRunLog{ranToday: map[int64]bool{}}

	s, err := scheduler.New(p, l, testSites(), scheduler.Config{Schedule: "not a cron expr"}, logger.NewNop())
	require.NoError(t, err)

	err = s.Start(context.Background())
	assert.Error(t, err)
}

func TestScheduler_New_RequiresCollaborators(t *testing.T) {
	l := &fakeRunLog{ranToday: map[int64]bool{}}

	_, err := scheduler.New(nil, l, testSites(), scheduler.Config{}, logger.NewNop())
	assert.Error(t, err)

	_, err = scheduler.New(&fakePipeline{}, nil, testSites(), scheduler.Config{}, logger.NewNop())
	assert.Error(t, err)
}
