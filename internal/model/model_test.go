package model

import (
	"testing"
	"time"
)

func TestTokenZoneIndependent(t *testing.T) {
	sgt, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		t.Fatal(err)
	}
	utc := Instant(time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC))
	local := Instant(time.Date(2026, 3, 10, 9, 0, 0, 0, sgt))

	if utc.Token() != local.Token() {
		t.Errorf("same instant, different tokens: %q vs %q", utc.Token(), local.Token())
	}
	if !utc.Equal(local) {
		t.Error("same instant should compare equal")
	}
}

func TestTokenShapes(t *testing.T) {
	d := Date(2026, 3, 10)
	if d.Token() != "20260310" {
		t.Errorf("date token %q", d.Token())
	}
	i := Instant(time.Unix(1765000000, 0))
	if i.Token() != "1765000000" {
		t.Errorf("instant token %q", i.Token())
	}
	if d.Equal(i) {
		t.Error("date and instant must never compare equal")
	}
}

func TestDateOfUsesOwnZone(t *testing.T) {
	sgt, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		t.Fatal(err)
	}
	// 07:30 SGT on the 11th is still 23:30 UTC on the 10th; the day is
	// read in the value's own zone.
	v := DateOf(time.Date(2026, 3, 11, 7, 30, 0, 0, sgt))
	if v.Token() != "20260311" {
		t.Errorf("got %q", v.Token())
	}
}

func TestAddDays(t *testing.T) {
	d := Date(2026, 3, 10).AddDays(2)
	if d.Token() != "20260312" {
		t.Errorf("got %q", d.Token())
	}
	if !d.IsDate() {
		t.Error("AddDays must preserve the variant")
	}
}

func TestPageTotal(t *testing.T) {
	p := Page{Events: make([]Event, 2), Tasks: []string{"a", "b", "c"}}
	if p.Total() != 5 {
		t.Errorf("got %d", p.Total())
	}
}
