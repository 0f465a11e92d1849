// Package entities models the vector entity stream handed over by the CAD
// container parser. The stream is a closed tagged union: every variant the
// engine understands is listed here, and conversion into normalized text
// items happens through exhaustive type switches instead of attribute probing.
package entities

import "github.com/MeKo-Tech/framescan/internal/geometry"

// Entity is the closed union of vector entity variants.
// Only types in this package implement it.
type Entity interface {
	entity()
}

// Polyline is a polygon or polyline defined by its vertices.
type Polyline struct {
	Points []geometry.Point
	Closed bool
}

// Line is a single line segment.
type Line struct {
	Start geometry.Point
	End   geometry.Point
}

// Horizontal text alignment codes, as produced by the container parser.
const (
	HAlignLeft   = 0
	HAlignCenter = 1
	HAlignRight  = 2
)

// Vertical text alignment codes.
const (
	VAlignBaseline = 0
	VAlignMiddle   = 2
	VAlignTop      = 3
)

// Text is a single-line text entity.
type Text struct {
	Value  string
	Insert geometry.Point
	Height float64
	HAlign int
	VAlign int
}

// MText is a multi-line text entity with wrapping.
type MText struct {
	Value      string
	Insert     geometry.Point
	CharHeight float64
	// Width is the wrap width; zero means unconstrained.
	Width float64
	// Attachment is the 1..9 attachment point (1=top-left ... 9=bottom-right).
	Attachment int
}

// Insert is a block reference carrying attribute text and resolvable
// child entities.
type Insert struct {
	Name     string
	Attribs  []Text
	Children []Entity
}

func (Polyline) entity() {}
func (Line) entity()     {}
func (Text) entity()     {}
func (MText) entity()    {}
func (Insert) entity()   {}

// Collection is one drawing's materialized entity stream.
type Collection struct {
	Source   string
	Entities []Entity
}

// Polylines returns all closed polylines in the collection.
func (c *Collection) Polylines() []Polyline {
	var out []Polyline
	for _, e := range c.Entities {
		if p, ok := e.(Polyline); ok {
			out = append(out, p)
		}
	}
	return out
}

// Lines returns all line segments in the collection.
func (c *Collection) Lines() []Line {
	var out []Line
	for _, e := range c.Entities {
		if l, ok := e.(Line); ok {
			out = append(out, l)
		}
	}
	return out
}
