package terminal

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"ytpicker/internal/model"
	"ytpicker/internal/workflow"
	"ytpicker/pkg/logger"

	"go.uber.org/zap"
)

// Controller is the part of workflow.Controller a session drives.
type Controller interface {
	KeyPressed(key, input string) error
	SelectQuality(index int)
	Submit(downloadType string) (model.DownloadForm, error)
	DismissAlert(id uint64)
}

// Session maps typed lines to controller calls.
type Session struct {
	ctrl     Controller
	view     *View
	dispatch workflow.Dispatcher
	stop     func()
}

// NewSession creates a session. stop is called on the loop when the user
// quits or input ends.
func NewSession(ctrl Controller, view *View, dispatch workflow.Dispatcher, stop func()) *Session {
	return &Session{
		ctrl:     ctrl,
		view:     view,
		dispatch: dispatch,
		stop:     stop,
	}
}

// ReadCommands reads lines from r and posts each one to the loop. It returns
// when r is exhausted.
func (s *Session) ReadCommands(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		s.dispatch.Post(func() {
			if !s.Handle(line) {
				s.stop()
			}
		})
	}
	s.dispatch.Post(s.stop)
	return scanner.Err()
}

// Handle runs one command on the loop goroutine and reports whether the
// session should continue.
func (s *Session) Handle(line string) bool {
	text := strings.TrimSpace(line)
	fields := strings.Fields(text)
	cmd := ""
	if len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}

	switch cmd {
	case "quit", "exit":
		return false
	case "help", "?":
		s.view.ShowHelp()
	case "dismiss":
		if id := s.view.AlertID(); id != 0 {
			s.ctrl.DismissAlert(id)
		}
	case "download":
		downloadType := ""
		if len(fields) > 1 {
			downloadType = strings.ToLower(fields[1])
		}
		s.download(downloadType)
	default:
		if n, err := strconv.Atoi(text); err == nil {
			s.ctrl.SelectQuality(n)
			s.view.ShowSelection(n)
			return true
		}
		if err := s.ctrl.KeyPressed("Enter", text); err != nil {
			logger.Logger.Debug("Fetch not started", zap.Error(err))
		}
	}
	return true
}

func (s *Session) download(downloadType string) {
	form, err := s.ctrl.Submit(downloadType)
	if err != nil {
		logger.Logger.Debug("Submission blocked", zap.Error(err))
		return
	}
	logger.Logger.Info("Download submitted",
		zap.String("url", form.URL),
		zap.String("itag", form.Itag),
		zap.String("download_type", form.DownloadType))
}
