package classify

import "venuepipe/internal/model"

// SiteID converts a zero-indexed site to its stored one-indexed id.
func SiteID(site int) int { return site + 1 }

// RatingID maps a raw rating value onto its stored rating-scale id.
func RatingID(val int) int { return val + 1 }

// Project trusts its input; it never re-validates.
func Project(c model.Classified) model.Row {
	rec := c.Record
	switch c.Kind {
	case model.KindEmergency:
		return model.Row{Destination: model.DestEmergencies, Values: []any{rec.At, SiteID(rec.Site)}}
	case model.KindAssistance:
		return model.Row{Destination: model.DestAssistances, Values: []any{rec.At, SiteID(rec.Site)}}
	default:
		return model.Row{Destination: model.DestReviews, Values: []any{rec.At, SiteID(rec.Site), RatingID(rec.Val)}}
	}
}
