package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// NewTrackingID returns a fresh probe tracking id.
func NewTrackingID() string {
	return uuid.New().String()
}

// TrackingToken derives the URL token that authenticates a pixel hit for
// a tracking id.
func TrackingToken(trackingID string) string {
	hash := sha256.Sum256([]byte("mailramp-track:" + trackingID))
	return base64.URLEncoding.EncodeToString(hash[:])[:20]
}

// TrackingPixelURL builds the open-tracking pixel URL for a probe.
func TrackingPixelURL(baseURL, trackingID string) string {
	return fmt.Sprintf("%s/track/open/%s/%s", baseURL, trackingID, TrackingToken(trackingID))
}

// InjectTrackingPixel appends the invisible open pixel to an HTML body.
func InjectTrackingPixel(htmlContent, baseURL, trackingID string) string {
	pixel := fmt.Sprintf(`<img src="%s" alt="" width="1" height="1" style="display:none">`,
		TrackingPixelURL(baseURL, trackingID))
	return htmlContent + pixel
}
