package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type row struct {
	Value string
	URL   string
}

type fakeProcessor struct {
	pages map[string][]row
	fail  map[string]error
	calls []string
}

func (p *fakeProcessor) Process(_ context.Context, url string) ([]row, error) {
	p.calls = append(p.calls, url)
	if err, ok := p.fail[url]; ok {
		return nil, err
	}
	return p.pages[url], nil
}

type memorySink struct {
	saved [][]row
	err   error
}

func (s *memorySink) Save(batch []row) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, append([]row(nil), batch...))
	return nil
}

type denyGuard struct{ denied string }

func (g denyGuard) Check(_ context.Context, url string) error {
	if url == g.denied {
		return errors.New("disallowed by robots.txt")
	}
	return nil
}

// recordingPoliteness counts pauses and remembers which page preceded each one.
func recordingPoliteness(proc *fakeProcessor, pausedAfter *[]string) Politeness {
	return Politeness{
		Delay: time.Second,
		sleep: func(_ context.Context, d time.Duration) error {
			*pausedAfter = append(*pausedAfter, proc.calls[len(proc.calls)-1])
			return nil
		},
	}
}

func scenario() *fakeProcessor {
	return &fakeProcessor{
		pages: map[string][]row{
			"A": {{"a1", "A"}, {"a2", "A"}},
			"C": {{"c1", "C"}},
		},
		fail: map[string]error{"B": errors.New("dial tcp: connection refused")},
	}
}

func TestEngine_CollectSkipsFailedPages(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	proc := scenario()
	var pausedAfter []string

	e := NewEngine[row](Config{
		Politeness: recordingPoliteness(proc, &pausedAfter),
		Logger:     zap.New(core),
	}, proc)

	got := e.Collect(context.Background(), []string{"A", "B", "C"})

	assert.Equal(t, []row{{"a1", "A"}, {"a2", "A"}, {"c1", "C"}}, got)
	assert.Equal(t, []string{"A", "B", "C"}, proc.calls)
	assert.Equal(t, []string{"A", "C"}, pausedAfter, "pause only after successful pages")

	infos := logs.FilterLevelExact(zapcore.InfoLevel).All()
	require.Len(t, infos, 3)
	assert.Equal(t, "scraping page: A", infos[0].Message)
	assert.Equal(t, "scraping page: B", infos[1].Message)
	assert.Equal(t, "scraping page: C", infos[2].Message)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "error scraping page: B. dial tcp: connection refused", warnings[0].Message)
	assert.Equal(t, "B", warnings[0].ContextMap()["url"])
}

func TestEngine_CollectAllFail(t *testing.T) {
	proc := &fakeProcessor{fail: map[string]error{
		"A": errors.New("a"),
		"B": errors.New("b"),
	}}
	e := NewEngine[row](Config{}, proc)

	got := e.Collect(context.Background(), []string{"A", "B"})
	assert.Empty(t, got)
	assert.Equal(t, []string{"A", "B"}, proc.calls)
}

func TestEngine_CollectIsRepeatable(t *testing.T) {
	proc := scenario()
	e := NewEngine[row](Config{}, proc)
	urls := []string{"A", "B", "C"}

	first := e.Collect(context.Background(), urls)
	second := e.Collect(context.Background(), urls)
	assert.Equal(t, first, second)
}

func TestEngine_GuardSkipsPage(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	proc := scenario()
	e := NewEngine[row](Config{Guard: denyGuard{denied: "A"}, Logger: zap.New(core)}, proc)

	got := e.Collect(context.Background(), []string{"A", "C"})

	assert.Equal(t, []row{{"c1", "C"}}, got)
	assert.Equal(t, []string{"C"}, proc.calls, "denied page must not be fetched")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "error scraping page: A. disallowed by robots.txt", logs.All()[0].Message)
}

func TestEngine_RunSavesToSinks(t *testing.T) {
	first, second := &memorySink{}, &memorySink{}
	e := NewEngine[row](Config{}, scenario(), first, second)

	require.NoError(t, e.Run(context.Background(), "A", "B", "C"))

	want := [][]row{{{"a1", "A"}, {"a2", "A"}, {"c1", "C"}}}
	assert.Equal(t, want, first.saved)
	assert.Equal(t, want, second.saved)
}

func TestEngine_RunReturnsSinkError(t *testing.T) {
	diskFull := errors.New("no space left on device")
	after := &memorySink{}
	e := NewEngine[row](Config{}, scenario(), &memorySink{err: diskFull}, after)

	err := e.Run(context.Background(), "A")
	assert.ErrorIs(t, err, diskFull)
	assert.Empty(t, after.saved)
}

func TestPoliteness_Pause(t *testing.T) {
	start := time.Now()
	require.NoError(t, NewPoliteness(20*time.Millisecond).Pause(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	assert.NoError(t, NewPoliteness(0).Pause(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewPoliteness(time.Hour).Pause(ctx), context.Canceled)
}
