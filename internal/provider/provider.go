// Package provider turns receipt images into recognized text or structured
// entities via an external acquisition provider.
package provider

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// Image is the pipeline input: either in-memory bytes or a filesystem path.
// Conversion to provider-required encoding (base64) happens here, not in the
// extraction logic.
type Image struct {
	Data     []byte
	Path     string
	MimeType string
}

// Bytes returns the image content, reading from Path when Data is empty.
func (i Image) Bytes() ([]byte, error) {
	if len(i.Data) > 0 {
		return i.Data, nil
	}
	return os.ReadFile(i.Path)
}

// Base64 returns the provider wire encoding of the image content.
func (i Image) Base64() (string, error) {
	b, err := i.Bytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Mime returns the declared MIME type, deriving it from the path extension
// when unset.
func (i Image) Mime() string {
	if i.MimeType != "" {
		return i.MimeType
	}
	if i.Path != "" {
		return constants.MimeTypeForExt(filepath.Ext(i.Path))
	}
	return "image/jpeg"
}

// Provider is a single acquisition strategy. Implementations are stateless
// per call; a failed call returns an error classified as transient or
// terminal (see common.ProviderError) so the retry executor and the hybrid
// selector can react accordingly.
type Provider interface {
	Name() entity.AcquisitionMethod
	Acquire(ctx context.Context, img Image) (entity.AcquisitionResult, error)
}
