package handler

import (
	"html/template"
	"net/http"

	"ytpicker/internal/model"
	"ytpicker/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// IndexTemplate is the name under which the index page is registered
const IndexTemplate = "index.html"

var indexPage = template.Must(template.New(IndexTemplate).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Video Downloader</title>
</head>
<body>
<div class="card-body">
  <input type="url" id="youtube-url" class="form-control" placeholder="Paste YouTube URL here..." maxlength="500">
  <button type="button" id="fetch-info-btn">Get Video Info</button>
  <div id="loading-spinner" style="display: none;">Loading...</div>
  <div id="video-info" style="display: none;">
    <img id="video-thumbnail" src="" alt="">
    <h5 id="video-title"></h5>
    <span id="video-author"></span>
    <span id="video-views"></span>
    <span id="video-duration"></span>
  </div>
  <form id="download-form" method="post" action="{{.Action}}" style="display: none;">
    <input type="hidden" name="{{.CSRFField}}" value="{{.CSRFToken}}">
    <input type="hidden" name="url" id="selected-url">
    <input type="hidden" name="itag" id="selected-itag">
    <select id="quality-select" name="resolution">
      <option value="">Select video quality...</option>
    </select>
    {{range .DownloadTypes}}<label><input type="radio" name="download_type" value="{{.Value}}"{{if .Checked}} checked{{end}}> {{.Label}}</label>
    {{end}}<button type="submit">Download</button>
    <p>Maximum file size: {{.MaxFileSizeMB}} MB</p>
  </form>
  <div id="download-progress" style="display: none;">Preparing your download...</div>
</div>
</body>
</html>
`))

type downloadTypeOption struct {
	Value   string
	Label   string
	Checked bool
}

var downloadTypeOptions = []downloadTypeOption{
	{Value: model.DownloadTypeMP4, Label: "MP4 Video", Checked: true},
	{Value: model.DownloadTypeMP3, Label: "MP3 Audio"},
	{Value: model.DownloadTypeBoth, Label: "Both MP4 & MP3"},
}

// RegisterTemplates installs the page templates on the engine
func RegisterTemplates(r *gin.Engine) {
	r.SetHTMLTemplate(indexPage)
}

// PageHandler serves the index page and the health probe
type PageHandler struct {
	cfg *model.Config
}

// NewPageHandler creates a new page handler
func NewPageHandler(cfg *model.Config) *PageHandler {
	return &PageHandler{cfg: cfg}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, IndexTemplate, gin.H{
		"Action":        "/download/",
		"CSRFField":     model.CSRFFormField,
		"CSRFToken":     c.GetString(middleware.CSRFContextKey),
		"DownloadTypes": downloadTypeOptions,
		"MaxFileSizeMB": h.cfg.Storage.MaxVideoSizeMB,
	})
}

// HealthCheck handles GET /health
func (h *PageHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ytpicker",
	})
}
