package assets

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrDownloadResolution means no watermark variant carried a usable URL.
	ErrDownloadResolution = errors.New("no usable download variant URL")
	// ErrWatermarkIdentification means the asset has neither an original URL
	// nor watermark variants to fall back on.
	ErrWatermarkIdentification = errors.New("cannot identify a download URL for asset")
)

// DownloadURL resolves the URL to fetch the asset from. The original URL
// wins when present. Watermarked assets are served only through
// resolution-labelled variant URLs; the variant whose label parses to the
// highest numeric resolution is chosen, non-numeric labels are skipped.
func (a *Asset) DownloadURL() (string, error) {
	if a.OriginalURL != "" {
		return a.OriginalURL, nil
	}
	if !a.Watermarked {
		return "", ErrWatermarkIdentification
	}
	best := ""
	bestRes := -1
	for label, url := range a.Variants {
		if url == "" {
			continue
		}
		res, ok := parseResolutionLabel(label)
		if !ok {
			continue
		}
		if res > bestRes {
			bestRes = res
			best = url
		}
	}
	if best == "" {
		return "", ErrDownloadResolution
	}
	return best, nil
}

// parseResolutionLabel extracts the numeric resolution from labels like
// "hd_1080" or "720".
func parseResolutionLabel(label string) (int, bool) {
	field := label
	if parts := strings.Split(label, "_"); len(parts) > 1 {
		field = parts[1]
	}
	res, err := strconv.Atoi(field)
	if err != nil {
		return 0, false
	}
	return res, true
}

// DetectCDN classifies which content delivery network serves a URL, based
// on hostname fragments. Returns "" when neither matches.
func DetectCDN(url string) string {
	switch {
	case strings.Contains(url, "cloudfront"):
		return "Cloudfront"
	case strings.Contains(url, "s3"):
		return "S3"
	default:
		return ""
	}
}
