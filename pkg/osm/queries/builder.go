// Package queries builds the Overpass QL sent by the ingestion pipeline.
package queries

import (
	"fmt"
	"strings"

	"github.com/NERVsystems/osmingest/pkg/geo"
)

// Element types a filter can be applied to
var allElementTypes = []string{"node", "way", "relation"}

// TagFilter represents a tag filter for Overpass queries
type TagFilter struct {
	Key    string
	Values []string
}

// ElementFilter represents a filter with tags for a specific element type
type ElementFilter struct {
	ElementType string // "node", "way", "relation"
	Tags        []TagFilter
}

// OverpassBuilder provides a fluent interface for building Overpass API queries.
// Filters are rendered in the order they were added.
type OverpassBuilder struct {
	timeout        int
	bbox           *geo.BoundingBox
	elementFilters []ElementFilter
}

// NewOverpassBuilder creates a new builder with default settings
func NewOverpassBuilder() *OverpassBuilder {
	return &OverpassBuilder{
		timeout: 25, // Default timeout in seconds
	}
}

// WithTimeout sets the server-side query timeout
func (b *OverpassBuilder) WithTimeout(seconds int) *OverpassBuilder {
	b.timeout = seconds
	return b
}

// WithBoundingBox restricts every filter to the box
func (b *OverpassBuilder) WithBoundingBox(bbox geo.BoundingBox) *OverpassBuilder {
	b.bbox = &bbox
	return b
}

// WithAny adds the same filter for nodes, ways and relations
func (b *OverpassBuilder) WithAny(tags ...TagFilter) *OverpassBuilder {
	for _, elementType := range allElementTypes {
		b.with(elementType, tags)
	}
	return b
}

func (b *OverpassBuilder) with(elementType string, tags []TagFilter) *OverpassBuilder {
	b.elementFilters = append(b.elementFilters, ElementFilter{
		ElementType: elementType,
		Tags:        tags,
	})
	return b
}

// Tag creates a TagFilter for a key with optional values
func Tag(key string, values ...string) TagFilter {
	return TagFilter{
		Key:    key,
		Values: values,
	}
}

// Build generates the Overpass query string
func (b *OverpassBuilder) Build() string {
	var query strings.Builder

	query.WriteString(fmt.Sprintf("[out:json][timeout:%d];", b.timeout))

	query.WriteString("(")
	for _, filter := range b.elementFilters {
		query.WriteString(b.buildElementFilter(filter))
	}
	// recurse down so ways and relations come with their member nodes
	query.WriteString(");out body;>;out skel qt;")

	return query.String()
}

// buildElementFilter generates the query part for a specific element filter
func (b *OverpassBuilder) buildElementFilter(filter ElementFilter) string {
	var elementQuery strings.Builder

	elementQuery.WriteString(filter.ElementType)
	if b.bbox != nil {
		elementQuery.WriteString("(" + b.bbox.OverpassString() + ")")
	}

	for _, tag := range filter.Tags {
		elementQuery.WriteString(buildTagFilter(tag))
	}

	elementQuery.WriteString(";")
	return elementQuery.String()
}

// buildTagFilter generates the query part for a tag filter
func buildTagFilter(filter TagFilter) string {
	// No values, or "*", only checks for the existence of the tag
	if len(filter.Values) == 0 || (len(filter.Values) == 1 && filter.Values[0] == "*") {
		return fmt.Sprintf("[%s]", filter.Key)
	}

	if len(filter.Values) == 1 {
		return fmt.Sprintf("[%s=%s]", filter.Key, filter.Values[0])
	}

	// Multiple values using regex
	values := strings.Join(filter.Values, "|")
	return fmt.Sprintf("[%s~\"%s\"]", filter.Key, values)
}
