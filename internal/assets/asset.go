package assets

import (
	"errors"
	"fmt"
	"time"
)

// Errors raised while validating an asset for download.
var (
	ErrUnsupportedAssetType  = errors.New("unsupported asset type")
	ErrAssetNotFullyUploaded = errors.New("asset is not fully uploaded")
)

// Checksums carries the content hashes the origin recorded at upload time.
type Checksums struct {
	XXHash string `yaml:"xx_hash,omitempty" json:"xx_hash,omitempty"`
}

// Asset is the collaborator-supplied description of a remote media file.
// It is immutable for the duration of a download.
type Asset struct {
	ID                string            `yaml:"id" json:"id"`
	Name              string            `yaml:"name" json:"name" validate:"required"`
	Kind              string            `yaml:"kind" json:"kind"`
	UploadCompletedAt *time.Time        `yaml:"upload_completed_at,omitempty" json:"upload_completed_at,omitempty"`
	Filesize          int64             `yaml:"filesize" json:"filesize" validate:"gte=0"`
	Watermarked       bool              `yaml:"is_watermarked" json:"is_watermarked"`
	Checksums         *Checksums        `yaml:"checksums,omitempty" json:"checksums,omitempty"`
	OriginalURL       string            `yaml:"original,omitempty" json:"original,omitempty"`
	Variants          map[string]string `yaml:"downloads,omitempty" json:"downloads,omitempty"`
}

// Checksum returns the asset's xxHash digest, or "" when none was recorded.
func (a *Asset) Checksum() string {
	if a.Checksums == nil {
		return ""
	}
	return a.Checksums.XXHash
}

// Evaluate checks that the asset is eligible for download. Assets created
// before the upload-completion timestamp existed report as incomplete; that
// over-strict behavior is kept on purpose.
func (a *Asset) Evaluate() error {
	if a.Kind != "file" {
		return fmt.Errorf("%w: %q", ErrUnsupportedAssetType, a.Kind)
	}
	if a.UploadCompletedAt == nil {
		return ErrAssetNotFullyUploaded
	}
	return nil
}
