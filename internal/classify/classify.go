// Package classify routes validated records to their record kind and maps
// each kind onto the positional row of its sink table.
package classify

import "venuepipe/internal/model"

// Classify is total over validated records: a call (val -1) always carries
// a type of 0 or 1.
func Classify(rec model.Record) model.Classified {
	kind := model.KindRating
	if rec.Val == -1 && rec.Type != nil {
		switch *rec.Type {
		case model.TypeAssistance:
			kind = model.KindAssistance
		case model.TypeEmergency:
			kind = model.KindEmergency
		}
	}
	return model.Classified{Kind: kind, Record: rec}
}
