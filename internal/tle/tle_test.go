package tle

import (
	"errors"
	"strings"
	"testing"
)

func elementText() string {
	iss, _ := Bundled(DefaultSatelliteName)
	return strings.Join([]string{
		"CSS (TIANHE)",
		"1 48274U 21035A   26051.50000000  .00010000  00000+0  18277-3 0  9997",
		"2 48274  41.4700 200.0000 0005825 100.0000 300.0000 15.60000000000004",
		iss.Name,
		iss.Line1,
		iss.Line2,
	}, "\n") + "\n"
}

func TestParseFindsNamedSatellite(t *testing.T) {
	got, err := Parse(DefaultSatelliteName, elementText())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want, _ := Bundled(DefaultSatelliteName)
	if got != want {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}
}

func TestParseIsCaseInsensitive(t *testing.T) {
	if _, err := Parse("iss (zarya)", elementText()); err != nil {
		t.Errorf("Parse with lowercase name: %v", err)
	}
}

func TestParseNotFound(t *testing.T) {
	_, err := Parse("HUBBLE", elementText())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestParseRejectsBadChecksum(t *testing.T) {
	iss, _ := Bundled(DefaultSatelliteName)
	corrupted := iss.Line1[:68] + "0"
	if corrupted == iss.Line1 {
		corrupted = iss.Line1[:68] + "1"
	}
	text := iss.Name + "\n" + corrupted + "\n" + iss.Line2 + "\n"

	_, err := Parse(iss.Name, text)
	if !errors.Is(err, ErrBadChecksum) {
		t.Errorf("err = %v, want ErrBadChecksum", err)
	}
}

func TestParseRejectsShortLine(t *testing.T) {
	iss, _ := Bundled(DefaultSatelliteName)
	text := iss.Name + "\n" + iss.Line1[:50] + "\n" + iss.Line2 + "\n"

	_, err := Parse(iss.Name, text)
	if !errors.Is(err, ErrBadChecksum) {
		t.Errorf("err = %v, want ErrBadChecksum for truncated line", err)
	}
}

func TestBundledChecksumsValid(t *testing.T) {
	iss, ok := Bundled(DefaultSatelliteName)
	if !ok {
		t.Fatal("no bundled ISS elements")
	}
	if err := verifyChecksum(iss.Line1); err != nil {
		t.Errorf("bundled line 1: %v", err)
	}
	if err := verifyChecksum(iss.Line2); err != nil {
		t.Errorf("bundled line 2: %v", err)
	}
}

func TestBundledUnknownName(t *testing.T) {
	if _, ok := Bundled("HUBBLE"); ok {
		t.Error("Bundled returned elements for an unknown satellite")
	}
}

func TestBundledTrimsAndIgnoresCase(t *testing.T) {
	if _, ok := Bundled("  iss (zarya)  "); !ok {
		t.Error("Bundled should match ignoring case and surrounding space")
	}
}
