// Package validate holds the ordered chain of field checks a raw record must
// pass before it is classified. The chain stops at the first failing check.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"venuepipe/internal/config"
	"venuepipe/internal/model"
	"venuepipe/internal/normalize"
)

const (
	MinValue = -1
	MaxValue = 5
)

// Check inspects one concern of raw. A passing check may fill in the parsed
// form of its field on rec; a failing check returns the rejection.
type Check func(raw model.RawRecord, rec *model.Record) *model.Rejection

type namedCheck struct {
	name  string
	check Check
}

type Validator struct {
	checks []namedCheck
}

func New(cfg config.ValidationConfig) *Validator {
	return &Validator{checks: []namedCheck{
		{"completeness", Completeness},
		{"opening_hours", OpeningHours(cfg.OpenHour, cfg.CloseHour)},
		{"site_range", SiteRange(cfg.SiteCount)},
		{"value_range", ValueRange},
		{"type_validity", TypeValidity},
	}}
}

// Checks returns the check names in evaluation order.
func (v *Validator) Checks() []string {
	out := make([]string, 0, len(v.checks))
	for _, c := range v.checks {
		out = append(out, c.name)
	}
	return out
}

func (v *Validator) Validate(raw model.RawRecord) (model.Record, *model.Rejection) {
	rec := model.Record{Payload: raw.Payload}
	for _, c := range v.checks {
		if rej := c.check(raw, &rec); rej != nil {
			rej.Payload = raw.Payload
			return model.Record{}, rej
		}
	}
	return rec, nil
}

func reject(reason model.ReasonCode, field string, format string, args ...any) *model.Rejection {
	return &model.Rejection{Reason: reason, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// Completeness reports the first absent required key, in lexicographic order.
func Completeness(raw model.RawRecord, _ *model.Record) *model.Rejection {
	switch {
	case raw.At == nil:
		return reject(model.ReasonMissingKey, "at", "missing at")
	case raw.Site == nil:
		return reject(model.ReasonMissingKey, "site", "missing site")
	case raw.Val == nil:
		return reject(model.ReasonMissingKey, "val", "missing val")
	}
	return nil
}

func OpeningHours(openHour, closeHour int) Check {
	return func(raw model.RawRecord, rec *model.Record) *model.Rejection {
		ts, err := normalize.ParseTimestamp(*raw.At)
		if err != nil {
			return reject(model.ReasonTimestamp, "at", "at %q is not an ISO-8601 timestamp", *raw.At)
		}
		if h := ts.Hour(); h < openHour || h >= closeHour {
			return reject(model.ReasonOpeningHours, "at", "hour (%d) not within opening hours", h)
		}
		rec.At = strings.TrimSpace(*raw.At)
		rec.Time = ts
		return nil
	}
}

func SiteRange(count int) Check {
	return func(raw model.RawRecord, rec *model.Record) *model.Rejection {
		site, err := normalize.ParseSite(*raw.Site)
		if err != nil || site < 0 || site >= count {
			return reject(model.ReasonSite, "site", "site %s does not exist", *raw.Site)
		}
		rec.Site = site
		return nil
	}
}

func ValueRange(raw model.RawRecord, rec *model.Record) *model.Rejection {
	val := *raw.Val
	if val < MinValue || val >= MaxValue {
		return reject(model.ReasonValue, "val", "value %d is invalid", val)
	}
	rec.Val = val
	return nil
}

// TypeValidity only applies to calls (val == -1), where type tells an
// emergency from an assistance request.
func TypeValidity(raw model.RawRecord, rec *model.Record) *model.Rejection {
	if *raw.Val != MinValue {
		return nil
	}
	if raw.Type == nil {
		return reject(model.ReasonMissingType, "type", "missing type")
	}
	var t int
	if err := json.Unmarshal(raw.Type, &t); err != nil {
		return reject(model.ReasonType, "type", "type %s is invalid", raw.Type)
	}
	if t != model.TypeAssistance && t != model.TypeEmergency {
		return reject(model.ReasonType, "type", "type %d is invalid", t)
	}
	rec.Type = &t
	return nil
}
