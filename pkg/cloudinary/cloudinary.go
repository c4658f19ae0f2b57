package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service stores submission files in Cloudinary and resolves retrieval URLs.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload stores the file under the given storage path, for example
// "submissions/12/7/1693000000_essay.txt", and returns a secure URL.
func (s *Service) Upload(ctx context.Context, storagePath string, reader io.Reader) (string, error) {
	dir, name := path.Split(strings.Trim(storagePath, "/"))

	folder := strings.Trim(path.Join(s.folder, dir), "/")
	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     sanitizePublicID(name),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

// Delete destroys the asset behind a previously returned URL. Used when a
// resubmission replaces the stored file; callers treat failures as
// non-fatal.
func (s *Service) Delete(ctx context.Context, fileURL string) error {
	publicID, resourceType, err := publicIDFromURL(fileURL)
	if err != nil {
		return err
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to destroy asset: %w", err)
	}

	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("destroy returned %q for %s", result.Result, publicID)
	}

	s.logger.Info().Str("public_id", publicID).Msg("previous file removed from cloudinary")

	return nil
}

var uploadURLPattern = regexp.MustCompile(`/(image|raw|video)/upload/(?:v\d+/)?(.+)$`)

// publicIDFromURL reverses the delivery URL back into a public ID. Raw assets
// keep their extension in the public ID, image and video assets do not.
func publicIDFromURL(fileURL string) (string, string, error) {
	matches := uploadURLPattern.FindStringSubmatch(fileURL)
	if matches == nil {
		return "", "", fmt.Errorf("unrecognized cloudinary url: %s", fileURL)
	}

	resourceType := matches[1]
	publicID := matches[2]
	if resourceType != "raw" {
		publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	}

	return publicID, resourceType, nil
}

func sanitizePublicID(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "upload"
	}

	return base
}
