// Package useragent derives coarse device tags from a User-Agent header.
package useragent

import (
	"strings"

	uaparser "github.com/mssola/useragent"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
	DeviceBot     = "Bot"
	tagOther      = "Other"
)

var knownBrowsers = map[string]struct{}{
	"Chrome":            {},
	"Edge":              {},
	"Firefox":           {},
	"Safari":            {},
	"Opera":             {},
	"Internet Explorer": {},
}

type Parser struct{}

func NewParser() Parser {
	return Parser{}
}

// Parse reports Unknown tags for an empty header and Other for browsers and
// systems outside the tracked set.
func (Parser) Parse(ua string) entity.Device {
	if strings.TrimSpace(ua) == "" {
		return entity.UnknownDevice()
	}

	agent := uaparser.New(ua)

	return entity.Device{
		Type:            deviceType(agent),
		Browser:         browser(agent),
		OperatingSystem: operatingSystem(agent),
	}
}

func deviceType(agent *uaparser.UserAgent) string {
	os := agent.OSInfo().Name

	switch {
	case agent.Bot():
		return DeviceBot
	case agent.Platform() == "iPad", strings.Contains(agent.UA(), "Tablet"):
		return DeviceTablet
	case strings.HasPrefix(os, "Android") && !agent.Mobile():
		return DeviceTablet
	case agent.Mobile():
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

func browser(agent *uaparser.UserAgent) string {
	name, _ := agent.Browser()
	if _, ok := knownBrowsers[name]; ok {
		return name
	}
	return tagOther
}

func operatingSystem(agent *uaparser.UserAgent) string {
	platform := agent.Platform()
	os := agent.OSInfo().Name

	switch {
	case platform == "iPhone", platform == "iPad", platform == "iPod", strings.HasPrefix(os, "iPhone OS"):
		return "iOS"
	case strings.HasPrefix(os, "Android"):
		return "Android"
	case strings.HasPrefix(os, "Windows"):
		return "Windows"
	case strings.HasPrefix(os, "Mac OS"):
		return "macOS"
	case strings.Contains(os, "Linux"), strings.Contains(platform, "Linux"):
		return "Linux"
	default:
		return tagOther
	}
}
