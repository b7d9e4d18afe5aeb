// Package registration derives an attendee's aggregate status from their
// append-only history of registration records.
package registration

import (
	"strings"
	"time"
)

// Status is the aggregate state of one attendee/conference relationship.
type Status string

const (
	StatusNotRegistered Status = "not-registered"
	StatusRegistered    Status = "registered"
	StatusCheckedIn     Status = "checked-in"
	StatusCheckedOut    Status = "checked-out"
	StatusNoShow        Status = "no-show"
	StatusCancelled     Status = "cancelled"
)

// Record is one historical registration event. Records are never mutated in
// place, only appended, so re-registration after a cancellation shows up as a
// second record. RegistrationDate is kept as the wire string because upstream
// systems have produced several formats and the resolver must not fail on a
// single corrupt row.
type Record struct {
	ConferenceID     int64  `json:"conferenceId"`
	Status           string `json:"status"`
	RegistrationDate string `json:"registrationDate"`
}

// Aggregate is the derived status plus the most recent check-in/check-out
// timestamps, absent when the attendee never reached those states. It is
// recomputed on every read, never stored.
type Aggregate struct {
	Status           Status     `json:"status"`
	LastCheckinTime  *time.Time `json:"lastCheckinTime,omitempty"`
	LastCheckoutTime *time.Time `json:"lastCheckoutTime,omitempty"`
}

// dateFormats are tried in order when parsing a record date.
var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate parses leniently: an unparseable date becomes the zero time, the
// earliest possible value, so a corrupt record sorts last instead of taking
// the whole computation down.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Resolve computes the aggregate status for one attendee's records.
//
// The status comes from the single record with the latest registration date;
// earlier records do not override it no matter how severe their status. An
// attendee whose latest record says checked-in is checked-in even if an
// older record says cancelled. On equal dates the first-seen record is kept,
// deterministically; duplicate timestamps are a data anomaly.
//
// Resolve is total: unknown status strings count as registered, statuses are
// case-insensitive, and bad dates never cause an error.
func Resolve(records []Record) Aggregate {
	if len(records) == 0 {
		return Aggregate{Status: StatusNotRegistered}
	}

	latest := records[0]
	latestAt := parseDate(latest.RegistrationDate)
	for _, rec := range records[1:] {
		if at := parseDate(rec.RegistrationDate); at.After(latestAt) {
			latest = rec
			latestAt = at
		}
	}

	agg := Aggregate{Status: normalizeStatus(latest.Status)}

	var lastCheckin, lastCheckout time.Time
	for _, rec := range records {
		at := parseDate(rec.RegistrationDate)
		switch normalizeStatus(rec.Status) {
		case StatusCheckedIn:
			if at.After(lastCheckin) {
				lastCheckin = at
			}
		case StatusCheckedOut:
			// A check-out implies a prior check-in; its date counts for
			// both timestamps.
			if at.After(lastCheckin) {
				lastCheckin = at
			}
			if at.After(lastCheckout) {
				lastCheckout = at
			}
		}
	}
	if !lastCheckin.IsZero() {
		agg.LastCheckinTime = &lastCheckin
	}
	if !lastCheckout.IsZero() {
		agg.LastCheckoutTime = &lastCheckout
	}
	return agg
}

// normalizeStatus maps a raw status string to its aggregate value. Anything
// unrecognized, including plain "registered", is registered.
func normalizeStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cancelled":
		return StatusCancelled
	case "no-show":
		return StatusNoShow
	case "checked-out":
		return StatusCheckedOut
	case "checked-in":
		return StatusCheckedIn
	default:
		return StatusRegistered
	}
}
