package validator

import (
	"regexp"
	"strings"
)

// videoURLPatterns are the accepted address shapes: watch page, short link
// and mobile watch page, each with an optional scheme.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`^(https?://)?(m\.)?youtube\.com/watch\?v=[\w-]+`),
}

// IsVideoURL reports whether videoURL matches one of the accepted shapes.
// The input is not trimmed or normalized.
func IsVideoURL(videoURL string) bool {
	for _, p := range videoURLPatterns {
		if p.MatchString(videoURL) {
			return true
		}
	}
	return false
}

// ValidateItag validates a stream identifier
func ValidateItag(itag string) bool {
	if len(itag) == 0 || len(itag) > 50 {
		return false
	}
	return !strings.ContainsAny(itag, " \t\r\n")
}

// ValidateDownloadType reports whether t is a supported download type
func ValidateDownloadType(t string) bool {
	switch t {
	case "mp4", "mp3", "both":
		return true
	}
	return false
}

// SanitizeFilename removes dangerous characters from filename
func SanitizeFilename(filename string) string {
	dangerousChars := []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*", "\x00"}
	result := filename
	for _, char := range dangerousChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" || result == "." || result == ".." {
		return "download"
	}
	return result
}
