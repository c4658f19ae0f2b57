package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// maxExtractBytes caps how much of a text file is read into the grading
// prompt. Anything beyond the cap is truncated, not rejected.
const maxExtractBytes = 64 * 1024

// ExtractedContent is the best-effort textual representation of an uploaded
// file handed to the grading prompt.
type ExtractedContent struct {
	Text     string
	MimeType string
	// Degraded is true when the file could not be parsed and Text holds a
	// placeholder description instead of real content.
	Degraded bool
}

// ContentExtractor derives grading text from uploaded files. Extraction never
// fails the submission flow: unsupported and unreadable files degrade to a
// placeholder description and grading proceeds on the assignment context.
type ContentExtractor struct {
	logger zerolog.Logger
}

// NewContentExtractor constructs an extractor.
func NewContentExtractor(logger zerolog.Logger) *ContentExtractor {
	return &ContentExtractor{
		logger: logger.With().Str("component", "content_extractor").Logger(),
	}
}

// Extract reads textual content from the file when its type allows it.
// Binary document formats are not parsed; the grader receives a placeholder
// noting that only the assignment context is available.
func (e *ContentExtractor) Extract(file *multipart.FileHeader) ExtractedContent {
	mimeType := detectMime(file)

	switch {
	case isTextual(mimeType):
		text, err := readText(file)
		if err != nil {
			e.logger.Warn().Err(err).Str("file", file.Filename).Msg("text extraction failed, degrading to placeholder")
			return placeholder(file.Filename, mimeType)
		}
		return ExtractedContent{Text: text, MimeType: mimeType}
	case isBinaryDocument(mimeType):
		return ExtractedContent{
			Text: fmt.Sprintf("The student uploaded %q (%s), a binary document whose contents were not parsed. "+
				"Grade based on the assignment instructions and note that manual review of the file may be needed.",
				file.Filename, mimeType),
			MimeType: mimeType,
			Degraded: true,
		}
	default:
		return placeholder(file.Filename, mimeType)
	}
}

func placeholder(filename, mimeType string) ExtractedContent {
	return ExtractedContent{
		Text: fmt.Sprintf("The student uploaded a file named %q of type %s. Its contents could not be extracted.",
			filename, mimeType),
		MimeType: mimeType,
		Degraded: true,
	}
}

func detectMime(file *multipart.FileHeader) string {
	reader, err := file.Open()
	if err == nil {
		defer reader.Close()
		if detected, detectErr := mimetype.DetectReader(reader); detectErr == nil {
			return normalizeMime(detected.String())
		}
	}

	if declared := file.Header.Get("Content-Type"); declared != "" {
		return normalizeMime(declared)
	}

	return "application/octet-stream"
}

func readText(file *multipart.FileHeader) (string, error) {
	reader, err := file.Open()
	if err != nil {
		return "", err
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, maxExtractBytes))
	if err != nil {
		return "", err
	}

	return string(content), nil
}

func normalizeMime(m string) string {
	if idx := strings.Index(m, ";"); idx >= 0 {
		m = m[:idx]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

func isTextual(mimeType string) bool {
	switch mimeType {
	case "text/plain", "text/markdown":
		return true
	default:
		return false
	}
}

func isBinaryDocument(mimeType string) bool {
	switch mimeType {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return true
	default:
		return false
	}
}
