// Package workflow implements the fetch/select/submit controller behind the
// quality picker. It owns the session state and talks to the outside world
// only through View, Fetcher, Submitter and Dispatcher.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ytpicker/internal/model"
	"ytpicker/pkg/format"
	"ytpicker/pkg/logger"
	"ytpicker/pkg/validator"

	"go.uber.org/zap"
)

// DownloadAction is the fixed target of download submissions.
const DownloadAction = "/download/"

// DefaultFetchTimeout bounds a single metadata request.
const DefaultFetchTimeout = 30 * time.Second

// User-facing messages
const (
	msgMissingURL     = "Please enter a YouTube URL"
	msgInvalidURL     = "Please enter a valid YouTube URL"
	msgFetchFailed    = "An error occurred while fetching video information. Please try again."
	msgNoQuality      = "Please select a video quality"
	msgBadType        = "Download type must be mp4, mp3 or both"
	msgBusy           = "A download is already in progress"
	msgDownloadFailed = "Download failed. Please try again."
	msgDownloadDone   = "Download complete: %s"
)

var (
	ErrMissingURL  = errors.New("missing video URL")
	ErrInvalidURL  = errors.New("invalid video URL")
	ErrNoQuality   = errors.New("no video quality selected")
	ErrBadType     = errors.New("unsupported download type")
	ErrSubmitting  = errors.New("download already in progress")
	ErrClosed      = errors.New("controller closed")
	errEmptyResult = errors.New("empty response")
)

// Fetcher retrieves video metadata and the available streams.
type Fetcher interface {
	FetchStreams(ctx context.Context, videoURL string) (*model.StreamsResponse, error)
}

// Submitter performs the download a submission hands off. The returned
// string describes the result (for example the saved file path).
type Submitter interface {
	Submit(ctx context.Context, form model.DownloadForm) (string, error)
}

// ServiceError carries a message reported by the server that may be shown
// to the user verbatim.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Option configures a Controller.
type Option func(*Controller)

// WithSubmitter hands allowed submissions to s.
func WithSubmitter(s Submitter) Option {
	return func(c *Controller) { c.submitter = s }
}

// WithFetchTimeout sets the per-fetch deadline; 0 disables it.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) { c.fetchTimeout = d }
}

// WithAlertDelay sets the auto-dismiss delay of non-critical alerts.
func WithAlertDelay(d time.Duration) Option {
	return func(c *Controller) { c.alertDelay = d }
}

// WithAfterFunc replaces the timer factory used for alert expiry.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Controller) { c.afterFunc = f }
}

// State is a snapshot of the controller state.
type State struct {
	Loading         bool
	InfoVisible     bool
	FormVisible     bool
	ProgressVisible bool
	Fetching        bool
	Submitting      bool
	Options         []string
	SelectedIndex   int
	SelectedItag    string
	URL             string
	Streams         []model.StreamDescriptor
}

// Controller coordinates URL validation, metadata fetches, quality
// selection and submission. All methods must run on the event loop.
type Controller struct {
	view      View
	fetcher   Fetcher
	submitter Submitter
	dispatch  Dispatcher
	notifier  *Notifier

	fetchTimeout time.Duration
	alertDelay   time.Duration
	afterFunc    AfterFunc

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	// seq identifies the most recently started fetch
	seq          uint64
	cancelFetch  context.CancelFunc
	cancelSubmit context.CancelFunc

	options       QualityOptions
	selectedIndex int
	selectedItag  string
	url           string
	formReady     bool

	loading         bool
	infoVisible     bool
	formVisible     bool
	progressVisible bool
}

// New creates a controller and renders its initial state.
func New(view View, fetcher Fetcher, dispatch Dispatcher, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		view:         view,
		fetcher:      fetcher,
		dispatch:     dispatch,
		fetchTimeout: DefaultFetchTimeout,
		alertDelay:   DefaultAlertDelay,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.notifier = NewNotifier(view, dispatch, c.alertDelay, c.afterFunc)
	c.clearQualityOptions()
	return c
}

// RequestFetch validates input and starts a metadata fetch. A fetch started
// while another is in flight supersedes it.
func (c *Controller) RequestFetch(input string) error {
	if c.closed {
		return ErrClosed
	}

	videoURL := strings.TrimSpace(input)
	if videoURL == "" {
		c.notifier.Show(msgMissingURL, SeverityWarning)
		return ErrMissingURL
	}
	if !validator.IsVideoURL(videoURL) {
		c.notifier.Show(msgInvalidURL, SeverityDanger)
		return ErrInvalidURL
	}

	c.startFetch(videoURL)
	return nil
}

// KeyPressed handles a key press in the URL input; Enter triggers a fetch.
func (c *Controller) KeyPressed(key, input string) error {
	if key != "Enter" {
		return nil
	}
	return c.RequestFetch(input)
}

// SelectQuality records the selector position the user picked.
func (c *Controller) SelectQuality(index int) {
	if c.closed {
		return
	}
	if index < 0 || index >= c.options.Len() {
		index = 0
	}
	c.selectedIndex = index
	c.selectedItag = c.options.Itag(index)
	c.view.SetHiddenFields(c.selectedItag, c.url)
}

// Submit gates a download submission. It returns the form that goes to
// DownloadAction, ErrNoQuality when nothing usable is selected, or
// ErrBadType for a type other than mp4, mp3 or both.
func (c *Controller) Submit(downloadType string) (model.DownloadForm, error) {
	if c.closed {
		return model.DownloadForm{}, ErrClosed
	}
	if c.options.Value(c.selectedIndex) == "" || c.selectedItag == "" {
		c.notifier.Show(msgNoQuality, SeverityWarning)
		return model.DownloadForm{}, ErrNoQuality
	}
	if c.cancelSubmit != nil {
		c.notifier.Show(msgBusy, SeverityInfo)
		return model.DownloadForm{}, ErrSubmitting
	}
	if downloadType == "" {
		downloadType = model.DownloadTypeMP4
	}
	if !validator.ValidateDownloadType(downloadType) {
		c.notifier.Show(msgBadType, SeverityWarning)
		return model.DownloadForm{}, ErrBadType
	}

	form := model.DownloadForm{
		URL:          c.url,
		Itag:         c.selectedItag,
		DownloadType: downloadType,
	}
	if c.submitter != nil {
		c.handOff(form)
	}
	return form, nil
}

// DismissAlert removes the alert with the given id.
func (c *Controller) DismissAlert(id uint64) {
	c.notifier.Dismiss(id)
}

// CurrentAlert returns the alert on screen, if any.
func (c *Controller) CurrentAlert() (Alert, bool) {
	return c.notifier.Current()
}

// State returns a snapshot of the controller state.
func (c *Controller) State() State {
	return State{
		Loading:         c.loading,
		InfoVisible:     c.infoVisible,
		FormVisible:     c.formVisible,
		ProgressVisible: c.progressVisible,
		Fetching:        c.cancelFetch != nil,
		Submitting:      c.cancelSubmit != nil,
		Options:         c.options.Labels(),
		SelectedIndex:   c.selectedIndex,
		SelectedItag:    c.selectedItag,
		URL:             c.url,
		Streams:         c.options.Streams(),
	}
}

// Close cancels outstanding work. Results that arrive afterwards are ignored.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.cancelFetch = nil
	c.cancelSubmit = nil
	c.notifier.Stop()
}

func (c *Controller) startFetch(videoURL string) {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.seq++
	seq := c.seq

	var ctx context.Context
	var cancel context.CancelFunc
	if c.fetchTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.fetchTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.ctx)
	}
	c.cancelFetch = cancel

	c.setLoading(true)
	c.hideVideoInfo()
	c.formReady = false
	c.setFormVisible(false)
	c.clearQualityOptions()

	logger.Logger.Debug("Fetching video information", zap.String("url", videoURL), zap.Uint64("seq", seq))

	go func() {
		resp, err := c.fetcher.FetchStreams(ctx, videoURL)
		c.dispatch.Post(func() { c.finishFetch(seq, videoURL, resp, err) })
	}()
}

func (c *Controller) finishFetch(seq uint64, videoURL string, resp *model.StreamsResponse, err error) {
	if c.closed || seq != c.seq {
		logger.Logger.Debug("Discarding superseded fetch result",
			zap.String("url", videoURL),
			zap.Uint64("seq", seq),
			zap.Uint64("latest_seq", c.seq))
		return
	}
	c.cancelFetch()
	c.cancelFetch = nil
	c.setLoading(false)

	if err == nil && resp == nil {
		err = errEmptyResult
	}
	if err != nil {
		logger.Logger.Error("Failed to fetch video information", zap.Error(err), zap.String("url", videoURL))
		c.notifier.Show(msgFetchFailed, SeverityDanger)
		return
	}
	if resp.Error != "" {
		logger.Logger.Warn("Service reported an error", zap.String("error", resp.Error), zap.String("url", videoURL))
		c.notifier.Show(resp.Error, SeverityDanger)
		return
	}

	if resp.VideoInfo != nil {
		c.displayVideoInfo(*resp.VideoInfo)
	}
	c.populateQualityOptions(resp.Streams)
	c.url = videoURL
	c.view.SetHiddenFields(c.selectedItag, c.url)
	c.formReady = true
	c.setFormVisible(true)

	logger.Logger.Info("Video information loaded",
		zap.String("url", videoURL),
		zap.Int("streams", len(resp.Streams)))
}

func (c *Controller) handOff(form model.DownloadForm) {
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelSubmit = cancel

	c.setFormVisible(false)
	c.setProgressVisible(true)

	logger.Logger.Info("Submitting download",
		zap.String("url", form.URL),
		zap.String("itag", form.Itag),
		zap.String("download_type", form.DownloadType))

	go func() {
		result, err := c.submitter.Submit(ctx, form)
		c.dispatch.Post(func() { c.finishSubmit(form, result, err) })
	}()
}

func (c *Controller) finishSubmit(form model.DownloadForm, result string, err error) {
	if c.closed {
		return
	}
	if c.cancelSubmit != nil {
		c.cancelSubmit()
		c.cancelSubmit = nil
	}
	c.setProgressVisible(false)
	if c.formReady && !c.loading {
		c.setFormVisible(true)
	}

	if err != nil {
		logger.Logger.Error("Download failed", zap.Error(err), zap.String("itag", form.Itag))
		var se *ServiceError
		if errors.As(err, &se) && se.Message != "" {
			c.notifier.Show(se.Message, SeverityDanger)
			return
		}
		c.notifier.Show(msgDownloadFailed, SeverityDanger)
		return
	}
	c.notifier.Show(fmt.Sprintf(msgDownloadDone, result), SeveritySuccess)
}

func (c *Controller) displayVideoInfo(info model.VideoInfo) {
	c.infoVisible = true
	c.view.ShowVideoInfo(InfoPanel{
		ThumbnailURL: info.ThumbnailURL,
		ThumbnailAlt: info.Title,
		Title:        info.Title,
		Author:       info.Author,
		Views:        format.Number(info.Views),
		Duration:     format.Duration(info.Length),
	})
}

func (c *Controller) hideVideoInfo() {
	c.infoVisible = false
	c.view.HideVideoInfo()
}

func (c *Controller) populateQualityOptions(streams []model.StreamDescriptor) {
	c.options = NewQualityOptions(streams)
	c.selectedIndex = c.options.DefaultIndex()
	c.selectedItag = c.options.Itag(c.selectedIndex)
	c.view.SetQualityOptions(c.options.Labels(), c.selectedIndex)
}

func (c *Controller) clearQualityOptions() {
	c.options = QualityOptions{}
	c.selectedIndex = 0
	c.selectedItag = ""
	c.view.SetQualityOptions(c.options.Labels(), 0)
	c.view.SetHiddenFields("", c.url)
}

func (c *Controller) setLoading(loading bool) {
	c.loading = loading
	c.view.SetLoading(loading)
}

// setFormVisible scrolls the form into view whenever it becomes visible.
func (c *Controller) setFormVisible(visible bool) {
	c.formVisible = visible
	c.view.SetFormVisible(visible)
	if visible {
		c.view.ScrollToForm()
	}
}

func (c *Controller) setProgressVisible(visible bool) {
	c.progressVisible = visible
	c.view.SetProgressVisible(visible)
}
