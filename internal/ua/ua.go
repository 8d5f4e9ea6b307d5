// Package ua classifies User-Agent strings into coarse device, browser and
// OS buckets for click attribution. The rules are ordered substring checks;
// ordering is load-bearing and covered by tests, so do not "fix" the
// apparent quirks (iPad classifies as mobile, Android as linux, Opera UAs
// that contain Chrome/ as chrome).
package ua

import "strings"

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// Fallback labels for browser/os when nothing matches. Which one a
// deployment uses is configuration; the classification logic is shared.
const (
	FallbackUnknown = "unknown"
	FallbackOther   = "other"
)

type Classification struct {
	DeviceType string
	Browser    string
	OS         string
}

type Classifier struct {
	fallback string
}

func New(fallback string) Classifier {
	if fallback == "" {
		fallback = FallbackUnknown
	}
	return Classifier{fallback: fallback}
}

// Classify maps a raw User-Agent to a Classification. Pure and total: the
// empty string yields {desktop, fallback, fallback}.
func (c Classifier) Classify(rawUA string) Classification {
	s := strings.ToLower(rawUA)
	return Classification{
		DeviceType: deviceType(s),
		Browser:    c.browser(s),
		OS:         c.os(s),
	}
}

var mobileSignals = []string{"mobile", "android", "iphone", "ipad", "ipod"}

func deviceType(s string) string {
	for _, sig := range mobileSignals {
		if strings.Contains(s, sig) {
			return DeviceMobile
		}
	}
	if strings.Contains(s, "tablet") {
		return DeviceTablet
	}
	return DeviceDesktop
}

func (c Classifier) browser(s string) string {
	switch {
	case strings.Contains(s, "edg/"):
		return "edge"
	case strings.Contains(s, "chrome/"):
		return "chrome"
	case strings.Contains(s, "firefox/"):
		return "firefox"
	case strings.Contains(s, "safari/") && !strings.Contains(s, "chrome"):
		return "safari"
	case strings.Contains(s, "opera/") || strings.Contains(s, "opr/"):
		return "opera"
	default:
		return c.fallback
	}
}

func (c Classifier) os(s string) string {
	switch {
	case strings.Contains(s, "windows"):
		return "windows"
	case strings.Contains(s, "mac os"):
		return "macos"
	case strings.Contains(s, "linux"):
		return "linux"
	case strings.Contains(s, "android"):
		return "android"
	case strings.Contains(s, "ios"), strings.Contains(s, "iphone"), strings.Contains(s, "ipad"):
		return "ios"
	default:
		return c.fallback
	}
}
