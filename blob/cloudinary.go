// Package blob stores binary payloads and hands back durable URLs.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(url, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("configuring cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Store uploads the bytes under the given name and returns a durable URL.
// Cloudinary files audio under the "video" resource type.
func (c *Cloudinary) Store(ctx context.Context, data []byte, name, contentType string) (string, error) {
	resourceType := "auto"
	if strings.HasPrefix(contentType, "audio/") {
		resourceType = "video"
	}

	publicID := strings.TrimSuffix(name, filepath.Ext(name))
	result, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID,
		Folder:       c.folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload of %s returned no URL: %s", name, result.Error.Message)
	}
	return result.SecureURL, nil
}
