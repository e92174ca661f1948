package listing

import (
	"encoding/json"
	"testing"

	"github.com/NERVsystems/osmingest/pkg/geo"
)

func TestCategories(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(all))
	}
	if all[0] != Hotels || all[5] != Promotions {
		t.Errorf("unexpected processing order: %v", all)
	}

	for _, c := range all {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Category("museums").Valid() {
		t.Error("museums should not be a valid category")
	}

	if !Sports.Network() {
		t.Error("sports should be fetched from the network")
	}
	if Events.Network() || Promotions.Network() {
		t.Error("events and promotions should be synthetic")
	}

	if got := Hotels.FileName(); got != "hotels.json" {
		t.Errorf("expected hotels.json, got %s", got)
	}
}

func TestHotelJSONLayout(t *testing.T) {
	h := Hotel{
		Base: Base{
			Name:     "Oberoi Grand",
			Category: "Luxury",
			Location: geo.NewPoint(22.5605, 88.3509),
			Address:  Address{City: "Kolkata"},
			Contact:  Contact{Phone: []string{}, SocialMedia: map[string]string{}},
		},
		StarRating: 5,
		Meta: Meta{
			Tags:    []string{"luxury"},
			Status:  StatusActive,
			OSMID:   42,
			OSMType: "way",
			Source:  SourceOSM,
		},
	}

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Embedded structs are flattened
	if decoded["name"] != "Oberoi Grand" {
		t.Errorf("unexpected name: %v", decoded["name"])
	}
	if decoded["osmId"] != float64(42) {
		t.Errorf("unexpected osmId: %v", decoded["osmId"])
	}
	if decoded["osmType"] != "way" {
		t.Errorf("unexpected osmType: %v", decoded["osmType"])
	}
	if decoded["source"] != "OpenStreetMap" {
		t.Errorf("unexpected source: %v", decoded["source"])
	}
	for _, key := range []string{"Base", "Meta"} {
		if _, ok := decoded[key]; ok {
			t.Errorf("embedded %s should be flattened", key)
		}
	}

	loc := decoded["location"].(map[string]any)
	coords := loc["coordinates"].([]any)
	if coords[0] != 88.3509 || coords[1] != 22.5605 {
		t.Errorf("expected [lon, lat], got %v", coords)
	}

	contact := decoded["contact"].(map[string]any)
	if phone, ok := contact["phone"].([]any); !ok || len(phone) != 0 {
		t.Errorf("expected empty phone array, got %v", contact["phone"])
	}
	if social, ok := contact["socialMedia"].(map[string]any); !ok || len(social) != 0 {
		t.Errorf("expected empty socialMedia object, got %v", contact["socialMedia"])
	}
}

func TestRecordInterface(t *testing.T) {
	hotels := []Hotel{{Base: Base{Name: "A"}, Meta: Meta{OSMID: 1, OSMType: "node"}}}
	records := Records(hotels)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].RecordID(); got != "node/1" {
		t.Errorf("expected node/1, got %s", got)
	}
	if got := records[0].DisplayName(); got != "A" {
		t.Errorf("expected A, got %s", got)
	}

	events := Records([]Event{{ID: "evt-1", Title: "Durga Puja"}})
	if got := events[0].RecordID(); got != "evt-1" {
		t.Errorf("expected evt-1, got %s", got)
	}
	if got := events[0].DisplayName(); got != "Durga Puja" {
		t.Errorf("expected Durga Puja, got %s", got)
	}
}

func TestRecordIDDistinguishesElementTypes(t *testing.T) {
	node := Attraction{Meta: Meta{OSMID: 1, OSMType: "node"}}
	way := Attraction{Meta: Meta{OSMID: 1, OSMType: "way"}}
	relation := SportsFacility{Meta: Meta{OSMID: 1, OSMType: "relation"}}

	seen := map[string]bool{}
	for _, r := range []Record{node, way, relation} {
		id := r.RecordID()
		if seen[id] {
			t.Errorf("duplicate record id %s", id)
		}
		seen[id] = true
	}
	if got := way.RecordID(); got != "way/1" {
		t.Errorf("expected way/1, got %s", got)
	}

	// Records built without an element type keep the bare id
	if got := (Restaurant{Meta: Meta{OSMID: 7}}).RecordID(); got != "7" {
		t.Errorf("expected 7, got %s", got)
	}
}
