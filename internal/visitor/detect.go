package visitor

import "strings"

// DetectBrowser names the browser family of a User-Agent. Order matters:
// Chromium-based browsers also advertise Chrome and Safari.
func DetectBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "SamsungBrowser"):
		return "Samsung"
	case strings.Contains(ua, "OPR"), strings.Contains(ua, "Opera"):
		return "Opera"
	case strings.Contains(ua, "Edg"):
		return "Edge"
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	default:
		return "Unknown"
	}
}

// DetectOS names the operating system of a User-Agent.
func DetectOS(ua string) string {
	switch {
	case strings.Contains(ua, "Win"):
		if strings.Contains(ua, "Windows NT 10") {
			return "Windows 10/11"
		}
		return "Windows"
	case strings.Contains(ua, "Mac"):
		return "macOS"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "like Mac"):
		return "iOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}
