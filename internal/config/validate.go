package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg together with
// everything wrong with it. Zero values are replaced by defaults.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	def := Default()
	var res Validation

	normEndpoint := func(name string, e *Endpoint, d Endpoint) {
		e.BaseURL = strings.TrimRight(strings.TrimSpace(e.BaseURL), "/")
		if e.BaseURL == "" {
			e.BaseURL = d.BaseURL
		}
		if u, err := url.Parse(e.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("%s.base_url must be an absolute URL, got %q", name, e.BaseURL)
		} else if u.Scheme != "https" {
			res.addWarn("%s.base_url is not https; the API token will travel in clear text.", name)
		}

		if e.DetailConcurrency == 0 {
			e.DetailConcurrency = d.DetailConcurrency
		}
		if e.DetailConcurrency < 0 {
			res.addErr("%s.detail_concurrency must be > 0", name)
		} else if e.DetailConcurrency > 100 {
			res.addWarn("%s.detail_concurrency is very high (%d) and may cause rate limits.", name, e.DetailConcurrency)
		}

		if e.RequestsPerSecond < 0 {
			res.addErr("%s.requests_per_second must be >= 0 (0 disables limiting)", name)
		}
	}
	normEndpoint("source", &out.Source, def.Source)
	normEndpoint("destination", &out.Destination, def.Destination)

	if out.App.StatusPort == 0 {
		out.App.StatusPort = def.App.StatusPort
	}
	if out.App.StatusPort < 0 || out.App.StatusPort > 65535 {
		res.addErr("app.status_port must be 1..65535")
	}

	if out.Transfer.Concurrency == 0 {
		out.Transfer.Concurrency = def.Transfer.Concurrency
	}
	if out.Transfer.Concurrency < 0 {
		res.addErr("transfer.concurrency must be > 0")
	}
	if out.Transfer.SettleDelay < 0 {
		res.addErr("transfer.settle_delay must be >= 0")
	} else if out.Transfer.SettleDelay < 500*time.Millisecond {
		res.addWarn("transfer.settle_delay is %s; notes may be rejected on freshly created applicants.", out.Transfer.SettleDelay)
	}

	if out.Schedule.Interval == 0 {
		out.Schedule.Interval = def.Schedule.Interval
	}
	if out.Schedule.Interval < 0 {
		res.addErr("schedule.interval must be > 0")
	} else if out.Schedule.Interval < time.Minute {
		res.addWarn("schedule.interval is very low (%s) and may cause rate limits.", out.Schedule.Interval)
	}

	return out, res
}
