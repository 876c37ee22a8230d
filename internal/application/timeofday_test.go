package application

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    minuteOfDay
		wantErr bool
	}{
		{input: "10:00 AM", want: 10 * 60},
		{input: "10:00AM", want: 10 * 60},
		{input: "10:00 am", want: 10 * 60},
		{input: "12:00 AM", want: 0},
		{input: "12:30 PM", want: 12*60 + 30},
		{input: "7:45 PM", want: 19*60 + 45},
		{input: "7:45 P.M.", want: 19*60 + 45},
		{input: "19:30", want: 19*60 + 30},
		{input: "00:00", want: 0},
		{input: "23:59", want: 23*60 + 59},
		{input: "9", want: 9 * 60},
		{input: "  8:05  ", want: 8*60 + 5},
		{input: "", wantErr: true},
		{input: "25:00", wantErr: true},
		{input: "13:00 PM", wantErr: true},
		{input: "0:30 AM", wantErr: true},
		{input: "10:75", wantErr: true},
		{input: "ten o'clock", wantErr: true},
	}

	for _, tc := range cases {
		got, err := parseTimeOfDay(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseTimeOfDay(%q) expected error, got %d", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTimeOfDay(%q) returned error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseTimeOfDay(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseTimeWindow(t *testing.T) {
	t.Parallel()

	window, err := parseTimeWindow("10:00 AM-11:00 AM")
	if err != nil {
		t.Fatalf("parseTimeWindow returned error: %v", err)
	}
	if window.start != 10*60 {
		t.Fatalf("unexpected start: %d", window.start)
	}
	if !window.hasEnd || window.end != 11*60 {
		t.Fatalf("unexpected end: %d (hasEnd=%v)", window.end, window.hasEnd)
	}

	window, err = parseTimeWindow("19:30")
	if err != nil {
		t.Fatalf("parseTimeWindow returned error: %v", err)
	}
	if window.hasEnd {
		t.Fatal("expected open-ended window")
	}
	if window.start != 19*60+30 {
		t.Fatalf("unexpected start: %d", window.start)
	}

	if _, err := parseTimeWindow(""); err == nil {
		t.Fatal("expected error for empty window")
	}
	if _, err := parseTimeWindow("whenever-forever"); err == nil {
		t.Fatal("expected error for unparseable window")
	}
}

func TestMinuteOfDayAnchor(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, 6, 2, 18, 42, 11, 0, time.UTC)
	anchored := minuteOfDay(9*60 + 15).anchor(ref)

	want := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	if !anchored.Equal(want) {
		t.Fatalf("anchor = %v, want %v", anchored, want)
	}
}
