// Package osm provides the Overpass API client used by the ingestion pipeline.
package osm

// Element types returned by Overpass
const (
	TypeNode     = "node"
	TypeWay      = "way"
	TypeRelation = "relation"
)

// Coordinate is a bare lat/lon pair
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Member is one member of a relation
type Member struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

// Element represents an element returned from the Overpass API.
// Lat and Lon are pointers so that an absent coordinate is distinguishable
// from the equator or the prime meridian.
type Element struct {
	ID      int64             `json:"id"`
	Type    string            `json:"type"`
	Lat     *float64          `json:"lat,omitempty"`
	Lon     *float64          `json:"lon,omitempty"`
	Center  *Coordinate       `json:"center,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
	Nodes   []int64           `json:"nodes,omitempty"` // For ways, list of node IDs
	Members []Member          `json:"members,omitempty"`
}

// HasCoordinates reports whether the element carries its own lat/lon
func (e Element) HasCoordinates() bool {
	return e.Lat != nil && e.Lon != nil
}

// Tag returns the value of key, or "" when absent
func (e Element) Tag(key string) string {
	if e.Tags == nil {
		return ""
	}
	return e.Tags[key]
}

// Response is the JSON envelope of an Overpass answer
type Response struct {
	Version   float64    `json:"version"`
	Generator string     `json:"generator"`
	Remark    string     `json:"remark,omitempty"`
	Elements  *[]Element `json:"elements"`
}

// NewNode is a convenience constructor for tagged nodes
func NewNode(id int64, lat, lon float64, tags map[string]string) Element {
	return Element{
		ID:   id,
		Type: TypeNode,
		Lat:  &lat,
		Lon:  &lon,
		Tags: tags,
	}
}
