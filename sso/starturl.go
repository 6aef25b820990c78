package sso

import (
	"net/url"
	"strings"

	"github.com/screenerhq/scan-server/internal/errors"
)

// DefaultRegion is used when no region is supplied and none can be detected
// from the start URL.
const DefaultRegion = "us-east-1"

// Regions that show up embedded in regional awsapps.com portal URLs.
var detectableRegions = []string{
	"us-east-1",
	"us-east-2",
	"us-west-2",
	"eu-west-1",
	"eu-central-1",
	"ap-southeast-1",
	"ap-northeast-1",
}

// NormalizeStartURL validates and canonicalizes an SSO portal start URL:
// fragments are stripped, trailing slashes removed and a missing /start
// suffix appended.
func NormalizeStartURL(startURL string) (string, error) {
	trimmed := strings.TrimSpace(startURL)
	if trimmed == "" {
		return "", errors.Wrapf(errors.ErrInvalidStartURL, "empty start URL")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidStartURL, "%q", trimmed)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", errors.Wrapf(errors.ErrInvalidStartURL, "%q: missing or unsupported scheme", trimmed)
	}
	if parsed.Host == "" {
		return "", errors.Wrapf(errors.ErrInvalidStartURL, "%q: missing host", trimmed)
	}

	parsed.Fragment = ""
	normalized := strings.TrimRight(parsed.String(), "/")
	if !strings.HasSuffix(normalized, "/start") && !strings.Contains(normalized, "/start/") {
		normalized += "/start"
	}
	return normalized, nil
}

// DetectRegion guesses the SSO region from the start URL. Most awsapps.com
// portals are global and map to us-east-1, but some organizations use
// regional endpoints with the region embedded in the URL.
func DetectRegion(startURL string) string {
	lower := strings.ToLower(startURL)
	if !strings.Contains(lower, "awsapps.com") {
		return DefaultRegion
	}
	for _, region := range detectableRegions {
		if strings.Contains(lower, region) {
			return region
		}
	}
	return DefaultRegion
}
