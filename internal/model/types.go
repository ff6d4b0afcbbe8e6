package model

import (
	"encoding/json"
	"time"
)

// RawRecord is one decoded queue payload. Absent keys and JSON nulls are nil.
// Type stays undecoded since it only matters for calls.
type RawRecord struct {
	At      *string         `json:"at,omitempty"`
	Site    *string         `json:"site,omitempty"`
	Val     *int            `json:"val,omitempty"`
	Type    json.RawMessage `json:"type,omitempty"`
	Payload string          `json:"-"`
}

// Record is a RawRecord that passed every validation check.
type Record struct {
	At      string    `json:"at"`
	Time    time.Time `json:"time"`
	Site    int       `json:"site"`
	Val     int       `json:"val"`
	Type    *int      `json:"type,omitempty"`
	Payload string    `json:"-"`
}

type Kind string

const (
	KindRating     Kind = "rating"
	KindEmergency  Kind = "emergency"
	KindAssistance Kind = "assistance"
)

const (
	TypeAssistance = 0
	TypeEmergency  = 1
)

type Classified struct {
	Kind   Kind
	Record Record
}

type Destination string

const (
	DestReviews     Destination = "reviews"
	DestEmergencies Destination = "emergencies"
	DestAssistances Destination = "assistances"
)

// Destinations lists every sink table.
var Destinations = []Destination{DestReviews, DestEmergencies, DestAssistances}

// Row is the positional tuple written to a single sink table.
type Row struct {
	Destination Destination
	Values      []any
}

type ReasonCode string

const (
	ReasonDecode       ReasonCode = "decode_error"
	ReasonMissingKey   ReasonCode = "missing_key"
	ReasonTimestamp    ReasonCode = "invalid_timestamp"
	ReasonOpeningHours ReasonCode = "outside_opening_hours"
	ReasonSite         ReasonCode = "invalid_site"
	ReasonValue        ReasonCode = "invalid_value"
	ReasonMissingType  ReasonCode = "missing_type"
	ReasonType         ReasonCode = "invalid_type"
)

type Rejection struct {
	ID      string     `json:"id"`
	Time    time.Time  `json:"time"`
	Reason  ReasonCode `json:"reason"`
	Field   string     `json:"field,omitempty"`
	Detail  string     `json:"detail"`
	Payload string     `json:"payload"`
}

func (r *Rejection) Error() string {
	return string(r.Reason) + ": " + r.Detail
}
