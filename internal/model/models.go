package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Itag is the opaque identifier of a stream variant. Servers send it either
// as a string or as a number; both decode to the same text.
type Itag string

// UnmarshalJSON accepts string and numeric identifiers
func (i *Itag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = Itag(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = Itag(n.String())
	return nil
}

// StreamDescriptor is one downloadable quality/format variant
type StreamDescriptor struct {
	Itag              Itag   `json:"itag"`
	Resolution        string `json:"resolution"`
	Fps               *int   `json:"fps"`
	FileSize          int64  `json:"filesize"`
	FileSizeFormatted string `json:"filesize_formatted"`
	MimeType          string `json:"mime_type,omitempty"`
	Note              string `json:"note"`
}

// VideoInfo contains display metadata about a video
type VideoInfo struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	ThumbnailURL string `json:"thumbnail_url"`
	Views        int64  `json:"views"`
	Length       int64  `json:"length"` // seconds
}

// StreamsRequest is the body of POST /get_streams/
type StreamsRequest struct {
	URL string `json:"url"`
}

// StreamsResponse is the body returned by POST /get_streams/
type StreamsResponse struct {
	Error     string             `json:"error,omitempty"`
	VideoInfo *VideoInfo         `json:"video_info,omitempty"`
	Streams   []StreamDescriptor `json:"streams,omitempty"`
}

// Download types accepted by the download endpoint
const (
	DownloadTypeMP4  = "mp4"
	DownloadTypeMP3  = "mp3"
	DownloadTypeBoth = "both"
)

// DownloadForm holds the form-encoded fields of a download submission
type DownloadForm struct {
	URL          string `form:"url" json:"url"`
	Itag         string `form:"itag" json:"format_id"`
	DownloadType string `form:"download_type" json:"download_type"`
}

// DownloadedFile tracks a file fetched from the worker until its TTL expires
type DownloadedFile struct {
	ID        string
	Filename  string
	FilePath  string
	Size      int64
	CreatedAt time.Time
	ExpiresAt time.Time
	URL       string
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
}

// WorkerMetadata contains the raw video metadata reported by the yt-dlp worker
type WorkerMetadata struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Duration  float64        `json:"duration"`
	Thumbnail string         `json:"thumbnail"`
	Uploader  string         `json:"uploader"`
	ViewCount int64          `json:"view_count"`
	URL       string         `json:"url"`
	Formats   []WorkerFormat `json:"formats"`
}

// WorkerFormat is a single yt-dlp format entry
type WorkerFormat struct {
	FormatID       string   `json:"format_id"`
	URL            string   `json:"url"`
	Ext            string   `json:"ext"`
	Resolution     string   `json:"resolution"`
	Height         *int     `json:"height"`
	Fps            *float64 `json:"fps"`
	FileSize       *int64   `json:"filesize"`
	FileSizeApprox *int64   `json:"filesize_approx"`
	MimeType       string   `json:"mime_type"`
	FormatNote     string   `json:"format_note"`
}

// Anti-forgery token names shared by the server and the client
const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
	CSRFFormField  = "csrfmiddlewaretoken"
)
