package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		publicID     string
		resourceType string
	}{
		{
			name:         "raw asset keeps extension",
			url:          "https://res.cloudinary.com/demo/raw/upload/v1693000000/sparkiq/submissions/12/7/1693000000_essay.txt",
			publicID:     "sparkiq/submissions/12/7/1693000000_essay.txt",
			resourceType: "raw",
		},
		{
			name:         "image asset drops extension",
			url:          "https://res.cloudinary.com/demo/image/upload/v1693000000/sparkiq/submissions/12/7/diagram.png",
			publicID:     "sparkiq/submissions/12/7/diagram",
			resourceType: "image",
		},
		{
			name:         "unversioned url",
			url:          "https://res.cloudinary.com/demo/raw/upload/sparkiq/notes.md",
			publicID:     "sparkiq/notes.md",
			resourceType: "raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publicID, resourceType, err := publicIDFromURL(tt.url)
			require.NoError(t, err)
			require.Equal(t, tt.publicID, publicID)
			require.Equal(t, tt.resourceType, resourceType)
		})
	}
}

func TestPublicIDFromURLRejectsForeignURL(t *testing.T) {
	_, _, err := publicIDFromURL("https://example.com/files/essay.txt")
	require.Error(t, err)
}

func TestSanitizePublicID(t *testing.T) {
	require.Equal(t, "1693000000_essay", sanitizePublicID("1693000000_essay.txt"))
	require.Equal(t, "my-report-v2", sanitizePublicID("my report v2.pdf"))
	require.Equal(t, "upload", sanitizePublicID("???.bin"))
}
