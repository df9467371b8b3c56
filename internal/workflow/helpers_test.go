package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"ytpicker/internal/model"
)

// recordingView captures everything the controller renders.
type recordingView struct {
	loading     bool
	loadingLog  []bool
	info        *InfoPanel
	infoShown   []InfoPanel
	labels      []string
	selected    int
	itag        string
	url         string
	formVisible bool
	scrolls     int
	progress    bool
	alerts      []Alert
	current     *Alert
	removed     []uint64
}

func (v *recordingView) SetLoading(loading bool) {
	v.loading = loading
	v.loadingLog = append(v.loadingLog, loading)
}

func (v *recordingView) ShowVideoInfo(info InfoPanel) {
	v.info = &info
	v.infoShown = append(v.infoShown, info)
}

func (v *recordingView) HideVideoInfo() { v.info = nil }

func (v *recordingView) SetQualityOptions(labels []string, selected int) {
	v.labels = labels
	v.selected = selected
}

func (v *recordingView) SetHiddenFields(itag, url string) {
	v.itag = itag
	v.url = url
}

func (v *recordingView) SetFormVisible(visible bool) { v.formVisible = visible }
func (v *recordingView) ScrollToForm()               { v.scrolls++ }
func (v *recordingView) SetProgressVisible(b bool)   { v.progress = b }

func (v *recordingView) ShowAlert(alert Alert) {
	v.alerts = append(v.alerts, alert)
	v.current = &alert
}

func (v *recordingView) RemoveAlert(id uint64) {
	v.removed = append(v.removed, id)
	if v.current != nil && v.current.ID == id {
		v.current = nil
	}
}

// chanDispatcher queues posted events until the test runs them.
type chanDispatcher chan func()

func newDispatcher() chanDispatcher { return make(chanDispatcher, 16) }

func (d chanDispatcher) Post(fn func()) { d <- fn }

// runNext executes the next posted event, failing if none arrives in time.
func (d chanDispatcher) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-d:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a posted event")
	}
}

func (d chanDispatcher) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case <-d:
		t.Fatal("unexpected posted event")
	case <-time.After(50 * time.Millisecond):
	}
}

type fetchResult struct {
	resp *model.StreamsResponse
	err  error
}

// stubFetcher answers each URL from a channel the test feeds.
type stubFetcher struct {
	mu           sync.Mutex
	replies      map[string]chan fetchResult
	ctxs         map[string]context.Context
	ignoreCancel bool
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		replies: make(map[string]chan fetchResult),
		ctxs:    make(map[string]context.Context),
	}
}

func (f *stubFetcher) reply(url string) chan fetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.replies[url]
	if !ok {
		ch = make(chan fetchResult, 1)
		f.replies[url] = ch
	}
	return ch
}

func (f *stubFetcher) respond(url string, resp *model.StreamsResponse, err error) {
	f.reply(url) <- fetchResult{resp: resp, err: err}
}

func (f *stubFetcher) ctx(url string) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctxs[url]
}

func (f *stubFetcher) FetchStreams(ctx context.Context, url string) (*model.StreamsResponse, error) {
	ch := f.reply(url)
	f.mu.Lock()
	f.ctxs[url] = ctx
	f.mu.Unlock()
	if f.ignoreCancel {
		r := <-ch
		return r.resp, r.err
	}
	select {
	case r := <-ch:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

func intPtr(v int) *int { return &v }

func sampleStreams() []model.StreamDescriptor {
	return []model.StreamDescriptor{
		{Itag: "22", Resolution: "720p", Fps: intPtr(30), FileSizeFormatted: "12.3 MiB", Note: "hd"},
		{Itag: "18", Resolution: "360p", FileSizeFormatted: "4.1 MiB"},
		{Itag: "140", Resolution: "audio", FileSizeFormatted: "3.0 MiB", Note: "medium"},
	}
}

func sampleResponse(title string) *model.StreamsResponse {
	return &model.StreamsResponse{
		VideoInfo: &model.VideoInfo{
			Title:        title,
			Author:       "Author",
			ThumbnailURL: "https://i.ytimg.com/vi/x/hq.jpg",
			Views:        1500,
			Length:       3725,
		},
		Streams: sampleStreams(),
	}
}
