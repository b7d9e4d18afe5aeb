package registration

import (
	"testing"
	"time"
)

func rec(status, date string) Record {
	return Record{ConferenceID: 1, Status: status, RegistrationDate: date}
}

func TestResolveEmpty(t *testing.T) {
	agg := Resolve(nil)
	if agg.Status != StatusNotRegistered {
		t.Errorf("status = %s, want not-registered", agg.Status)
	}
	if agg.LastCheckinTime != nil || agg.LastCheckoutTime != nil {
		t.Error("no timestamps expected for an empty history")
	}
}

func TestResolveLatestRecordWins(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    Status
	}{
		{
			name: "register then check in",
			records: []Record{
				rec("registered", "2026-03-01T09:00:00Z"),
				rec("checked-in", "2026-03-02T09:00:00Z"),
			},
			want: StatusCheckedIn,
		},
		{
			name: "earlier cancellation does not override later check-in",
			records: []Record{
				rec("checked-in", "2026-03-02T09:00:00Z"),
				rec("cancelled", "2026-03-01T09:00:00Z"),
			},
			want: StatusCheckedIn,
		},
		{
			name: "later cancellation wins",
			records: []Record{
				rec("checked-in", "2026-03-01T09:00:00Z"),
				rec("cancelled", "2026-03-02T09:00:00Z"),
			},
			want: StatusCancelled,
		},
		{
			name: "full day",
			records: []Record{
				rec("registered", "2026-03-01T08:00:00Z"),
				rec("checked-in", "2026-03-01T09:00:00Z"),
				rec("checked-out", "2026-03-01T17:00:00Z"),
			},
			want: StatusCheckedOut,
		},
		{
			name:    "no-show",
			records: []Record{rec("no-show", "2026-03-01T09:00:00Z")},
			want:    StatusNoShow,
		},
		{
			name:    "unknown status defaults to registered",
			records: []Record{rec("pending-approval", "2026-03-01T09:00:00Z")},
			want:    StatusRegistered,
		},
		{
			name:    "status is case-insensitive",
			records: []Record{rec("Checked-In", "2026-03-01T09:00:00Z")},
			want:    StatusCheckedIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.records).Status; got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveTimestamps(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)

	agg := Resolve([]Record{
		rec("registered", "2026-02-20T09:00:00Z"),
		rec("checked-in", t1.Format(time.RFC3339)),
		rec("checked-in", t2.Format(time.RFC3339)),
		rec("checked-out", t3.Format(time.RFC3339)),
	})

	if agg.Status != StatusCheckedOut {
		t.Errorf("status = %s, want checked-out", agg.Status)
	}
	if agg.LastCheckinTime == nil || !agg.LastCheckinTime.Equal(t3) {
		t.Errorf("lastCheckinTime = %v, want %v", agg.LastCheckinTime, t3)
	}
	if agg.LastCheckoutTime == nil || !agg.LastCheckoutTime.Equal(t3) {
		t.Errorf("lastCheckoutTime = %v, want %v", agg.LastCheckoutTime, t3)
	}
}

func TestResolveCheckinWithoutCheckout(t *testing.T) {
	t2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	agg := Resolve([]Record{
		rec("registered", "2026-03-01T09:00:00Z"),
		rec("checked-in", t2.Format(time.RFC3339)),
	})

	if agg.Status != StatusCheckedIn {
		t.Errorf("status = %s, want checked-in", agg.Status)
	}
	if agg.LastCheckinTime == nil || !agg.LastCheckinTime.Equal(t2) {
		t.Errorf("lastCheckinTime = %v, want %v", agg.LastCheckinTime, t2)
	}
	if agg.LastCheckoutTime != nil {
		t.Errorf("lastCheckoutTime should be absent, got %v", agg.LastCheckoutTime)
	}
}

func TestResolveTieKeepsFirstSeen(t *testing.T) {
	agg := Resolve([]Record{
		rec("cancelled", "2026-03-01T09:00:00Z"),
		rec("checked-in", "2026-03-01T09:00:00Z"),
	})
	if agg.Status != StatusCancelled {
		t.Errorf("equal dates should keep the first record, got %s", agg.Status)
	}
}

func TestResolveMalformedDates(t *testing.T) {
	// A corrupt date sorts earliest; it must neither crash the resolver nor
	// outrank a valid later record.
	agg := Resolve([]Record{
		rec("cancelled", "definitely not a date"),
		rec("checked-in", "2026-03-01T09:00:00Z"),
	})
	if agg.Status != StatusCheckedIn {
		t.Errorf("status = %s, want checked-in", agg.Status)
	}

	// All dates corrupt: still total, first record's status stands.
	agg = Resolve([]Record{
		rec("no-show", ""),
		rec("registered", "🗑️"),
	})
	if agg.Status != StatusNoShow {
		t.Errorf("status = %s, want no-show", agg.Status)
	}
}

func TestResolveAlternateDateFormats(t *testing.T) {
	agg := Resolve([]Record{
		rec("registered", "2026-03-01"),
		rec("checked-in", "2026-03-02 10:30:00"),
	})
	if agg.Status != StatusCheckedIn {
		t.Errorf("status = %s, want checked-in", agg.Status)
	}
}

func TestResolveZonelessISODates(t *testing.T) {
	// Zone-less ISO timestamps must keep their ordering instead of parsing
	// to the zero time and sorting last.
	agg := Resolve([]Record{
		rec("checked-in", "2026-03-02T10:30:00"),
		rec("registered", "2026-03-01T09:00:00"),
	})
	if agg.Status != StatusCheckedIn {
		t.Errorf("status = %s, want checked-in", agg.Status)
	}
	if agg.LastCheckinTime == nil {
		t.Fatal("expected a check-in timestamp")
	}
	want := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	if !agg.LastCheckinTime.Equal(want) {
		t.Errorf("checkin time = %v, want %v", agg.LastCheckinTime, want)
	}
}
