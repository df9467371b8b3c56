package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"ytpicker/internal/model"
	"ytpicker/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	keys      []string
	selected  []int
	submitted []string
	dismissed []uint64
	submitErr error
}

func (f *fakeController) KeyPressed(key, input string) error {
	f.keys = append(f.keys, key+":"+input)
	return nil
}

func (f *fakeController) SelectQuality(index int) {
	f.selected = append(f.selected, index)
}

func (f *fakeController) Submit(downloadType string) (model.DownloadForm, error) {
	f.submitted = append(f.submitted, downloadType)
	return model.DownloadForm{DownloadType: downloadType}, f.submitErr
}

func (f *fakeController) DismissAlert(id uint64) {
	f.dismissed = append(f.dismissed, id)
}

// syncDispatcher runs posted work immediately
type syncDispatcher struct{}

func (syncDispatcher) Post(fn func()) { fn() }

func newTestSession() (*Session, *fakeController, *bytes.Buffer, *int) {
	var out bytes.Buffer
	ctrl := &fakeController{}
	stops := 0
	s := NewSession(ctrl, NewView(&out), syncDispatcher{}, func() { stops++ })
	return s, ctrl, &out, &stops
}

func TestHandleCommands(t *testing.T) {
	s, ctrl, out, _ := newTestSession()

	assert.True(t, s.Handle("https://youtu.be/abc"))
	assert.True(t, s.Handle(""))
	assert.True(t, s.Handle("2"))
	assert.True(t, s.Handle("download"))
	assert.True(t, s.Handle("DOWNLOAD mp3"))
	assert.True(t, s.Handle("help"))
	assert.False(t, s.Handle("quit"))

	assert.Equal(t, []string{"Enter:https://youtu.be/abc", "Enter:"}, ctrl.keys)
	assert.Equal(t, []int{2}, ctrl.selected)
	assert.Equal(t, []string{"", "mp3"}, ctrl.submitted)
	assert.Contains(t, out.String(), "Commands")
}

func TestDismissUsesCurrentAlert(t *testing.T) {
	s, ctrl, _, _ := newTestSession()

	s.Handle("dismiss")
	assert.Empty(t, ctrl.dismissed)

	s.view.ShowAlert(workflow.Alert{ID: 7, Severity: workflow.SeverityDanger, Icon: "exclamation-triangle", Message: "boom"})
	s.Handle("dismiss")
	assert.Equal(t, []uint64{7}, ctrl.dismissed)
}

func TestReadCommandsStopsAtEOF(t *testing.T) {
	s, ctrl, _, stops := newTestSession()

	require.NoError(t, s.ReadCommands(strings.NewReader("https://youtu.be/abc\n1\n")))
	assert.Len(t, ctrl.keys, 1)
	assert.Equal(t, []int{1}, ctrl.selected)
	assert.Equal(t, 1, *stops)
}

func TestReadCommandsQuit(t *testing.T) {
	s, _, _, stops := newTestSession()

	require.NoError(t, s.ReadCommands(strings.NewReader("quit\n")))
	assert.Equal(t, 2, *stops)
}

func TestViewRendering(t *testing.T) {
	var out bytes.Buffer
	v := NewView(&out)

	v.SetLoading(true)
	v.ShowVideoInfo(workflow.InfoPanel{Title: "Demo", Author: "Someone", Views: "1.2K", Duration: "1:01"})
	v.SetQualityOptions([]string{workflow.PlaceholderLabel, "720p - 1.0 MiB", "360p - 512 KiB"}, 1)
	v.SetHiddenFields("22", "https://youtu.be/abc")
	v.SetFormVisible(true)
	v.ShowSelection(2)
	v.ShowProgress(2*1000*1000, 4*1000*1000)
	v.ShowAlert(workflow.Alert{ID: 3, Severity: workflow.SeveritySuccess, Icon: "check-circle", Message: "Download complete: a.mp4"})

	text := out.String()
	assert.Contains(t, text, "Fetching video information...")
	assert.Contains(t, text, "Demo")
	assert.Contains(t, text, "1.2K views")
	assert.Contains(t, text, " 0) "+workflow.PlaceholderLabel)
	assert.Contains(t, text, " 1) 720p - 1.0 MiB")
	assert.Contains(t, text, "Selected 360p - 512 KiB (itag 22)")
	assert.Contains(t, text, "Downloaded 2.0 MB of 4.0 MB")
	assert.Contains(t, text, "[✓] Download complete: a.mp4")
	assert.Equal(t, uint64(3), v.AlertID())

	v.RemoveAlert(2)
	assert.Equal(t, uint64(3), v.AlertID())
	v.RemoveAlert(3)
	assert.Zero(t, v.AlertID())
}

type stubFetcher struct {
	resp *model.StreamsResponse
}

func (f stubFetcher) FetchStreams(context.Context, string) (*model.StreamsResponse, error) {
	return f.resp, nil
}

// queueDispatcher holds posted work until the test runs it
type queueDispatcher chan func()

func (q queueDispatcher) Post(fn func()) { q <- fn }

func (q queueDispatcher) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-q:
		fn()
	case <-time.After(time.Second):
		t.Fatal("nothing was posted")
	}
}

func TestSessionDrivesController(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out)
	queue := make(queueDispatcher, 16)

	fps := 30
	fetcher := stubFetcher{resp: &model.StreamsResponse{
		VideoInfo: &model.VideoInfo{Title: "Demo", Author: "Someone", Views: 1200, Length: 61},
		Streams: []model.StreamDescriptor{
			{Itag: "22", Resolution: "720p", Fps: &fps, FileSizeFormatted: "1.0 MiB"},
			{Itag: "18", Resolution: "360p", FileSizeFormatted: "512 KiB"},
		},
	}}
	ctrl := workflow.New(view, fetcher, queue)
	defer ctrl.Close()

	var forms []model.DownloadForm
	session := NewSession(recordingController{Controller: ctrl, forms: &forms}, view, queue, func() {})

	assert.True(t, session.Handle("https://youtu.be/abc"))
	queue.runNext(t)
	require.True(t, ctrl.State().FormVisible)

	session.Handle("2")
	session.Handle("download both")

	require.Len(t, forms, 1)
	assert.Equal(t, model.DownloadForm{URL: "https://youtu.be/abc", Itag: "18", DownloadType: "both"}, forms[0])
	text := out.String()
	assert.Contains(t, text, "Demo")
	assert.Contains(t, text, "1.2K views · 1:01")
	assert.Contains(t, text, "Selected 360p - 512 KiB (itag 18)")
}

func TestUnknownDownloadTypeReplacesAlert(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out)
	queue := make(queueDispatcher, 16)
	ctrl := workflow.New(view, stubFetcher{}, queue)
	defer ctrl.Close()
	session := NewSession(ctrl, view, queue, func() {})

	session.Handle("not a url")
	first, ok := ctrl.CurrentAlert()
	require.True(t, ok)
	assert.Equal(t, workflow.SeverityDanger, first.Severity)

	session.Handle("download avi")
	alert, ok := ctrl.CurrentAlert()
	require.True(t, ok)
	assert.Equal(t, "Please select a video quality", alert.Message)
	assert.Equal(t, alert.ID, view.AlertID())

	session.Handle("dismiss")
	_, ok = ctrl.CurrentAlert()
	assert.False(t, ok)
	assert.Zero(t, view.AlertID())
}

func TestUnknownDownloadTypeGoesThroughController(t *testing.T) {
	var out bytes.Buffer
	view := NewView(&out)
	queue := make(queueDispatcher, 16)
	fetcher := stubFetcher{resp: &model.StreamsResponse{
		Streams: []model.StreamDescriptor{{Itag: "22", Resolution: "720p", FileSizeFormatted: "1.0 MiB"}},
	}}
	ctrl := workflow.New(view, fetcher, queue)
	defer ctrl.Close()
	session := NewSession(ctrl, view, queue, func() {})

	session.Handle("https://youtu.be/abc")
	queue.runNext(t)

	session.Handle("download avi")
	alert, ok := ctrl.CurrentAlert()
	require.True(t, ok)
	assert.Equal(t, "Download type must be mp4, mp3 or both", alert.Message)
	assert.Equal(t, alert.ID, view.AlertID())
	assert.Contains(t, out.String(), "Download type must be mp4, mp3 or both")

	session.Handle("dismiss")
	_, ok = ctrl.CurrentAlert()
	assert.False(t, ok)
}

type recordingController struct {
	*workflow.Controller
	forms *[]model.DownloadForm
}

func (r recordingController) Submit(downloadType string) (model.DownloadForm, error) {
	form, err := r.Controller.Submit(downloadType)
	if err == nil {
		*r.forms = append(*r.forms, form)
	}
	return form, err
}
