package visit

import (
	"net/url"
	"strings"
	"time"
)

// Page is the navigation context a visit is collected from: what a script
// running in the page can observe about location, referrer, agent and
// viewport.
type Page struct {
	Host          string `json:"host"`
	Path          string `json:"path"`
	Referrer      string `json:"referrer"`
	UserAgent     string `json:"userAgent"`
	ViewportWidth int    `json:"viewportWidth"`
	DoNotTrack    bool   `json:"doNotTrack"`
}

// DirectReferrer is the ref value for visits without a usable referrer.
const DirectReferrer = "direct"

// ReferrerHost returns the hostname of a referrer URL, or DirectReferrer when
// the referrer is empty, unparseable or has no host.
func ReferrerHost(referrer string) string {
	if strings.TrimSpace(referrer) == "" {
		return DirectReferrer
	}
	u, err := url.Parse(referrer)
	if err != nil || u.Hostname() == "" {
		return DirectReferrer
	}
	return u.Hostname()
}

// Collect builds the record for a visit to p at now.
func Collect(p Page, now time.Time) Record {
	path := p.Path
	if path == "" {
		path = "/"
	}
	ts := FormatTimestamp(now)
	return Record{
		Path:   path,
		Ref:    ReferrerHost(p.Referrer),
		Device: ClassifyDevice(p.ViewportWidth),
		TS:     ts,
		Date:   ts[:10],
	}
}
