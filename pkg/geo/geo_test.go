package geo

import (
	"encoding/json"
	"testing"
)

func TestNewPointCoordinateOrder(t *testing.T) {
	p := NewPoint(22.57, 88.36)
	if p.Type != "Point" {
		t.Errorf("expected type Point, got %s", p.Type)
	}
	if p.Coordinates[0] != 88.36 || p.Coordinates[1] != 22.57 {
		t.Errorf("expected [lon, lat] = [88.36, 22.57], got %v", p.Coordinates)
	}
	if p.Lat() != 22.57 || p.Lon() != 88.36 {
		t.Errorf("accessors returned lat=%f lon=%f", p.Lat(), p.Lon())
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"Point","coordinates":[88.36,22.57]}` {
		t.Errorf("unexpected GeoJSON: %s", data)
	}
}

func TestBoundingBoxValidate(t *testing.T) {
	tests := []struct {
		name    string
		bbox    BoundingBox
		wantErr bool
	}{
		{"valid", BoundingBox{MinLat: 22.45, MinLon: 88.25, MaxLat: 22.65, MaxLon: 88.45}, false},
		{"latitude out of range", BoundingBox{MinLat: -91, MinLon: 0, MaxLat: 1, MaxLon: 1}, true},
		{"longitude out of range", BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 1, MaxLon: 181}, true},
		{"inverted", BoundingBox{MinLat: 2, MinLon: 0, MaxLat: 1, MaxLon: 1}, true},
		{"zero area", BoundingBox{MinLat: 1, MinLon: 1, MaxLat: 1, MaxLon: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bbox.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBoundingBoxContains(t *testing.T) {
	b := BoundingBox{MinLat: 22.5, MinLon: 88.3, MaxLat: 22.6, MaxLon: 88.4}

	if !b.Contains(22.55, 88.35) {
		t.Error("expected point inside box")
	}
	if !b.Contains(22.5, 88.4) {
		t.Error("expected corner to be inside box")
	}
	if b.Contains(22.7, 88.35) {
		t.Error("expected point outside box")
	}
	if b.Contains(22.55, 88.41) {
		t.Error("expected point east of box to be outside")
	}
	if got := b.OverpassString(); got != "22.500000,88.300000,22.600000,88.400000" {
		t.Errorf("unexpected overpass bbox: %s", got)
	}
}

func TestBoundingBoxJSONFieldNames(t *testing.T) {
	var b BoundingBox
	if err := json.Unmarshal([]byte(`{"minLat":1,"minLon":2,"maxLat":3,"maxLon":4}`), &b); err != nil {
		t.Fatal(err)
	}
	if b != (BoundingBox{MinLat: 1, MinLon: 2, MaxLat: 3, MaxLon: 4}) {
		t.Errorf("unexpected bbox: %+v", b)
	}
}
