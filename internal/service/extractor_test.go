package service

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 4096))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestContentExtractorReadsPlainText(t *testing.T) {
	extractor := NewContentExtractor(testLogger())

	file := buildFileHeader(t, "essay.txt", []byte("Climate change is the defining issue of our time."))
	content := extractor.Extract(file)

	require.False(t, content.Degraded)
	require.Equal(t, "text/plain", content.MimeType)
	require.Contains(t, content.Text, "Climate change is")
}

func TestContentExtractorDegradesPDFToPlaceholder(t *testing.T) {
	extractor := NewContentExtractor(testLogger())

	pdfHeader := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x01}, 64)...)
	file := buildFileHeader(t, "essay_v2.pdf", pdfHeader)
	content := extractor.Extract(file)

	require.True(t, content.Degraded)
	require.Equal(t, "application/pdf", content.MimeType)
	require.Contains(t, content.Text, "essay_v2.pdf")
	require.Contains(t, content.Text, "not parsed")
}

func TestContentExtractorDegradesUnknownBinary(t *testing.T) {
	extractor := NewContentExtractor(testLogger())

	file := buildFileHeader(t, "model.bin", []byte{0x00, 0xFF, 0x13, 0x37, 0x00, 0x01})
	content := extractor.Extract(file)

	require.True(t, content.Degraded)
	require.Contains(t, content.Text, "model.bin")
}
