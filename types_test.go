package anchorpds

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestLocationListRoundTrip(t *testing.T) {
	name := "Coffee Shop"
	record := CheckinRecord{
		Type:      "app.dropanchor.checkin",
		Text:      "Coffee",
		CreatedAt: "2025-06-15T13:00:00Z",
		Locations: LocationList{
			GeoLocation{Latitude: "40.7128", Longitude: "-74.0060"},
			AddressLocation{Name: &name},
		},
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(encoded), `"$type":"community.lexicon.location.geo"`) {
		t.Fatalf("geo variant missing type tag: %s", encoded)
	}
	if !strings.Contains(string(encoded), `"$type":"community.lexicon.location.address"`) {
		t.Fatalf("address variant missing type tag: %s", encoded)
	}

	var decoded CheckinRecord
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(decoded.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(decoded.Locations))
	}

	geo, ok := decoded.Locations[0].(GeoLocation)
	if !ok {
		t.Fatalf("expected first item to be a GeoLocation, got %T", decoded.Locations[0])
	}
	if geo.Latitude != "40.7128" || geo.Longitude != "-74.0060" {
		t.Fatalf("coordinates mangled: %+v", geo)
	}

	addr, ok := decoded.Locations[1].(AddressLocation)
	if !ok {
		t.Fatalf("expected second item to be an AddressLocation, got %T", decoded.Locations[1])
	}
	if addr.Name == nil || *addr.Name != name {
		t.Fatalf("address name mangled: %+v", addr)
	}
	if addr.Street != nil {
		t.Fatalf("expected absent street to stay absent")
	}
}

func TestLocationListRejectsUnknownTag(t *testing.T) {
	var list LocationList
	err := json.Unmarshal([]byte(`[{"$type":"unknown.type","foo":"bar"}]`), &list)
	if err == nil {
		t.Fatalf("expected unknown tag to fail")
	}
	if !strings.Contains(err.Error(), "unknown.type") {
		t.Fatalf("error should name the offending tag: %v", err)
	}
}

func TestCheckinRecordOmitsAbsentFields(t *testing.T) {
	record := CheckinRecord{
		Type:      "app.dropanchor.checkin",
		Text:      "Coffee",
		CreatedAt: "2025-06-15T13:00:00Z",
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, field := range []string{"locations", "category", "categoryGroup", "categoryIcon"} {
		if strings.Contains(string(encoded), `"`+field+`"`) {
			t.Fatalf("absent field %s should be omitted: %s", field, encoded)
		}
	}
}
