package workflow

import (
	"strconv"
	"strings"

	"ytpicker/internal/model"
)

// PlaceholderLabel is the first, unselectable entry of the quality selector.
const PlaceholderLabel = "Select video quality..."

// QualityOptions maps selector positions to stream descriptors. Position 0
// is the placeholder; position i (i >= 1) is streams[i-1].
type QualityOptions struct {
	streams []model.StreamDescriptor
}

// NewQualityOptions copies streams in the order given.
func NewQualityOptions(streams []model.StreamDescriptor) QualityOptions {
	if len(streams) == 0 {
		return QualityOptions{}
	}
	cp := make([]model.StreamDescriptor, len(streams))
	copy(cp, streams)
	return QualityOptions{streams: cp}
}

// Len returns the number of selector entries, placeholder included.
func (o QualityOptions) Len() int {
	return len(o.streams) + 1
}

// Labels returns the visible text of every entry.
func (o QualityOptions) Labels() []string {
	labels := make([]string, 0, o.Len())
	labels = append(labels, PlaceholderLabel)
	for _, s := range o.streams {
		labels = append(labels, StreamLabel(s))
	}
	return labels
}

// Stream returns the descriptor at a selector position.
func (o QualityOptions) Stream(index int) (model.StreamDescriptor, bool) {
	if index < 1 || index > len(o.streams) {
		return model.StreamDescriptor{}, false
	}
	return o.streams[index-1], true
}

// Value is the form value of an entry: the stream resolution, or "" for the
// placeholder.
func (o QualityOptions) Value(index int) string {
	s, ok := o.Stream(index)
	if !ok {
		return ""
	}
	return s.Resolution
}

// Itag returns the identifier at a selector position, or "".
func (o QualityOptions) Itag(index int) string {
	s, ok := o.Stream(index)
	if !ok {
		return ""
	}
	return string(s.Itag)
}

// DefaultIndex is the entry selected right after population.
func (o QualityOptions) DefaultIndex() int {
	if len(o.streams) == 0 {
		return 0
	}
	return 1
}

// Streams returns a copy of the underlying descriptors.
func (o QualityOptions) Streams() []model.StreamDescriptor {
	if len(o.streams) == 0 {
		return nil
	}
	cp := make([]model.StreamDescriptor, len(o.streams))
	copy(cp, o.streams)
	return cp
}

// StreamLabel renders "<resolution>[ (<fps>fps)] - <size>[ - <note>]".
func StreamLabel(s model.StreamDescriptor) string {
	var b strings.Builder
	b.WriteString(s.Resolution)
	if s.Fps != nil && *s.Fps != 0 {
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(*s.Fps))
		b.WriteString("fps)")
	}
	b.WriteString(" - ")
	b.WriteString(s.FileSizeFormatted)
	if s.Note != "" {
		b.WriteString(" - ")
		b.WriteString(s.Note)
	}
	return b.String()
}
