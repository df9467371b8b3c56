package workflow

// View is the presentation surface the controller drives. Implementations
// must only be called from the event loop goroutine.
type View interface {
	AlertView

	// SetLoading toggles the loading indicator and disables the fetch trigger.
	SetLoading(loading bool)
	ShowVideoInfo(info InfoPanel)
	HideVideoInfo()
	// SetQualityOptions replaces the quality selector entries. labels[0] is
	// always the placeholder.
	SetQualityOptions(labels []string, selected int)
	// SetHiddenFields mirrors the hidden itag and url form fields.
	SetHiddenFields(itag, url string)
	SetFormVisible(visible bool)
	ScrollToForm()
	SetProgressVisible(visible bool)
}

// AlertView renders notifications.
type AlertView interface {
	ShowAlert(alert Alert)
	RemoveAlert(id uint64)
}

// InfoPanel is the formatted content of the video info section.
type InfoPanel struct {
	ThumbnailURL string
	ThumbnailAlt string
	Title        string
	Author       string
	Views        string
	Duration     string
}
