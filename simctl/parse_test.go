package simctl

import (
	"errors"
	"strings"
	"testing"
)

const sectionListing = `== Devices ==
-- iOS 14.4 --
    iPhone 8 (B5B8AD44-F3E8-4DFE-B1F2-1B35BF4F1CA2) (Shutdown)
    iPhone 11 (63E1A0D3-1A2B-4C5D-8E9F-0A1B2C3D4E5F) (Booted)
-- iOS 13.0 --
    iPad Air (F1E2D3C4-B5A6-7890-ABCD-EF0123456789) (Creating)
-- tvOS 14.3 --
`

func TestParseDeviceSections(t *testing.T) {
	inventory, err := ParseDeviceSections(sectionListing)
	if err != nil {
		t.Fatalf("parse sections: %v", err)
	}
	if len(inventory) != 3 {
		t.Fatalf("expected 3 SDK keys, got %d", len(inventory))
	}

	ios14 := inventory["iOS 14.4"]
	if len(ios14) != 2 {
		t.Fatalf("expected 2 devices for iOS 14.4, got %d", len(ios14))
	}
	if ios14[0].Name != "iPhone 8" || ios14[0].UDID != "B5B8AD44-F3E8-4DFE-B1F2-1B35BF4F1CA2" || ios14[0].State != "Shutdown" {
		t.Fatalf("unexpected first device: %+v", ios14[0])
	}
	if ios14[1].Name != "iPhone 11" || ios14[1].State != "Booted" {
		t.Fatalf("unexpected second device: %+v", ios14[1])
	}
	for _, device := range ios14 {
		if device.Sdk != "iOS 14.4" {
			t.Fatalf("device not tagged with section SDK: %+v", device)
		}
	}

	if len(inventory["iOS 13.0"]) != 1 {
		t.Fatalf("expected 1 device for iOS 13.0, got %d", len(inventory["iOS 13.0"]))
	}
	if devices, ok := inventory["tvOS 14.3"]; !ok || len(devices) != 0 {
		t.Fatalf("expected empty device list for tvOS 14.3, got %v (present=%v)", devices, ok)
	}
}

func TestParseDeviceSectionsNoSections(t *testing.T) {
	_, err := ParseDeviceSections("some output without any device blocks\n")
	if err == nil {
		t.Fatal("expected an error for output without sections")
	}
	if !strings.Contains(err.Error(), "could not find device section") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseDeviceSectionsMalformedLine(t *testing.T) {
	listing := "-- iOS 14.4 --\n    iPhone 8 without parens\n"
	_, err := ParseDeviceSections(listing)
	if err == nil {
		t.Fatal("expected an error for a malformed device line")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a ParseError, got %T", err)
	}
	if !strings.Contains(err.Error(), "iPhone 8 without parens") {
		t.Fatalf("error does not name the offending line: %v", err)
	}
}

func TestParseDeviceSectionsTwoWordState(t *testing.T) {
	listing := "-- iOS 14.4 --\n    iPhone 8 (B5B8AD44-F3E8-4DFE-B1F2-1B35BF4F1CA2) (Shutting Down)\n"
	inventory, err := ParseDeviceSections(listing)
	if err != nil {
		t.Fatalf("parse sections: %v", err)
	}
	if state := inventory["iOS 14.4"][0].State; state != "Shutting Down" {
		t.Fatalf("expected two word state, got %q", state)
	}
}

func TestParseDelimitedDevices(t *testing.T) {
	listing := "A1B2|iPhone 11|Booted|x|iOS 14.4\nC3D4 | iPhone 8 | Shutdown | x86_64 | iOS 13.0\n"
	inventory, err := ParseDelimitedDevices(listing)
	if err != nil {
		t.Fatalf("parse delimited: %v", err)
	}
	if len(inventory) != 2 {
		t.Fatalf("expected 2 SDK keys, got %d", len(inventory))
	}

	device := inventory["iOS 14.4"][0]
	if device.UDID != "A1B2" || device.Name != "iPhone 11" || device.State != "Booted" {
		t.Fatalf("unexpected device: %+v", device)
	}
	if device.Sdk != "" {
		t.Fatalf("delimited records must not carry an SDK tag, got %q", device.Sdk)
	}
}

func TestParseDelimitedDevicesMalformedLine(t *testing.T) {
	listing := "A1B2|iPhone 11|Booted|x|iOS 14.4\nC3D4|iPhone 8|Shutdown\n"
	_, err := ParseDelimitedDevices(listing)
	if err == nil {
		t.Fatal("expected an error for a device line with missing fields")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a ParseError, got %T", err)
	}
	if !strings.Contains(err.Error(), "C3D4|iPhone 8|Shutdown") {
		t.Fatalf("error does not name the offending line: %v", err)
	}
}

func TestParseDelimitedDevicesForSdk(t *testing.T) {
	listing := "A1B2|iPhone 11|Booted|x|iOS 14.4\nC3D4|iPhone 8|Shutdown|x|iOS 13.0\n"

	devices, err := ParseDelimitedDevicesForSdk(listing, "iOS 13.0")
	if err != nil {
		t.Fatalf("filter by sdk: %v", err)
	}
	if len(devices) != 1 || devices[0].UDID != "C3D4" {
		t.Fatalf("unexpected filtered devices: %+v", devices)
	}

	_, err = ParseDelimitedDevicesForSdk(listing, "iOS 9.3")
	if err == nil {
		t.Fatal("expected an error for an unknown SDK")
	}
	if !strings.Contains(err.Error(), "unknown SDK `iOS 9.3`") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseCreatedUdid(t *testing.T) {
	output := "Create Started\nCreate Ended: 1234-ABCD | iPhone 8, iOS 13.0\n"
	udid, err := parseCreatedUdid(output)
	if err != nil {
		t.Fatalf("parse create output: %v", err)
	}
	if udid != "1234-ABCD" {
		t.Fatalf("expected udid `1234-ABCD`, got %q", udid)
	}
}

func TestParseCreatedUdidMalformed(t *testing.T) {
	_, err := parseCreatedUdid("some unrelated output\n")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a ParseError, got %v", err)
	}
}
