package cache

import "testing"

func TestLocationKey(t *testing.T) {
	cases := []struct {
		lat, lng     float64
		propertyType string
		businessType string
		want         string
	}{
		{12.9716, 77.5946, "", "", "location-intel:12.97160:77.59460:all:all"},
		{12.9716, 77.5946, "retail", "cafe", "location-intel:12.97160:77.59460:retail:cafe"},
		{-33.865143, 151.2099, " kiosk ", "", "location-intel:-33.86514:151.20990:kiosk:all"},
		{-0.000001, 0, "", "qsr", "location-intel:0.00000:0.00000:all:qsr"},
		{12.345678, 77.594569, "", "", "location-intel:12.34567:77.59456:all:all"},
		{-12.345678, -77.594569, "", "", "location-intel:-12.34567:-77.59456:all:all"},
	}

	for _, tc := range cases {
		if got := LocationKey(tc.lat, tc.lng, tc.propertyType, tc.businessType); got != tc.want {
			t.Fatalf("LocationKey(%v, %v, %q, %q) = %q, want %q", tc.lat, tc.lng, tc.propertyType, tc.businessType, got, tc.want)
		}
	}
}

func TestLocationKeyAbsorbsFloatNoise(t *testing.T) {
	base := LocationKey(12.97159, 77.59460, "retail", "cafe")
	noisy := LocationKey(12.971589999999999, 77.594600000000014, "retail", "cafe")
	if base != noisy {
		t.Fatalf("expected identical keys, got %q and %q", base, noisy)
	}
	if LocationKey(0.1+0.2, 0, "", "") != LocationKey(0.3, 0, "", "") {
		t.Fatal("0.1+0.2 and 0.3 should share a key")
	}
}

func TestLocationKeySeparatesDimensions(t *testing.T) {
	a := LocationKey(1, 2, "retail", "")
	b := LocationKey(1, 2, "", "retail")
	if a == b {
		t.Fatalf("property and business type must not collide: %q", a)
	}
}

func TestLocationKeyTruncatesInsteadOfRounding(t *testing.T) {
	if LocationKey(12.345678, 0, "", "") != LocationKey(12.34567, 0, "", "") {
		t.Fatal("digits past the fifth decimal should be dropped")
	}
	if LocationKey(12.345679, 0, "", "") == LocationKey(12.34568, 0, "", "") {
		t.Fatal("12.345679 must not round up into the next key")
	}
}
