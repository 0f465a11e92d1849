package entities

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/MeKo-Tech/framescan/internal/geometry"
)

// Entity kind discriminators used in the JSON interchange format.
const (
	kindPolyline = "polyline"
	kindLine     = "line"
	kindText     = "text"
	kindMText    = "mtext"
	kindInsert   = "insert"
)

type jsonDocument struct {
	Source   string       `json:"source,omitempty"`
	Entities []jsonEntity `json:"entities"`
}

type jsonEntity struct {
	Type       string       `json:"type"`
	Points     [][2]float64 `json:"points,omitempty"`
	Closed     bool         `json:"closed,omitempty"`
	Start      *[2]float64  `json:"start,omitempty"`
	End        *[2]float64  `json:"end,omitempty"`
	Text       string       `json:"text,omitempty"`
	Insert     *[2]float64  `json:"insert,omitempty"`
	Height     float64      `json:"height,omitempty"`
	HAlign     int          `json:"halign,omitempty"`
	VAlign     int          `json:"valign,omitempty"`
	CharHeight float64      `json:"char_height,omitempty"`
	Width      float64      `json:"width,omitempty"`
	Attachment int          `json:"attachment,omitempty"`
	Name       string       `json:"name,omitempty"`
	Attribs    []jsonEntity `json:"attribs,omitempty"`
	Children   []jsonEntity `json:"children,omitempty"`
}

// Decode reads one drawing's entity stream from the JSON interchange format.
// A malformed document is the only fatal condition in this package; unknown
// entity kinds fail the decode so that schema drift surfaces immediately.
func Decode(r io.Reader) (*Collection, error) {
	var doc jsonDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding entity stream: %w", err)
	}
	ents, err := convertEntities(doc.Entities)
	if err != nil {
		return nil, err
	}
	return &Collection{Source: doc.Source, Entities: ents}, nil
}

// Encode writes the collection in the JSON interchange format.
func Encode(w io.Writer, c *Collection) error {
	doc := jsonDocument{Source: c.Source, Entities: encodeEntities(c.Entities)}
	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding entity stream: %w", err)
	}
	return nil
}

func convertEntities(raw []jsonEntity) ([]Entity, error) {
	out := make([]Entity, 0, len(raw))
	for i, je := range raw {
		e, err := convertEntity(je)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func convertEntity(je jsonEntity) (Entity, error) {
	switch je.Type {
	case kindPolyline:
		pts := make([]geometry.Point, len(je.Points))
		for i, p := range je.Points {
			pts[i] = geometry.Point{X: p[0], Y: p[1]}
		}
		return Polyline{Points: pts, Closed: je.Closed}, nil
	case kindLine:
		if je.Start == nil || je.End == nil {
			return nil, fmt.Errorf("line entity missing endpoints")
		}
		return Line{
			Start: geometry.Point{X: je.Start[0], Y: je.Start[1]},
			End:   geometry.Point{X: je.End[0], Y: je.End[1]},
		}, nil
	case kindText:
		return convertText(je)
	case kindMText:
		if je.Insert == nil {
			return nil, fmt.Errorf("mtext entity missing insert point")
		}
		return MText{
			Value:      je.Text,
			Insert:     geometry.Point{X: je.Insert[0], Y: je.Insert[1]},
			CharHeight: je.CharHeight,
			Width:      je.Width,
			Attachment: je.Attachment,
		}, nil
	case kindInsert:
		attribs := make([]Text, 0, len(je.Attribs))
		for i, a := range je.Attribs {
			t, err := convertText(a)
			if err != nil {
				return nil, fmt.Errorf("attrib %d: %w", i, err)
			}
			attribs = append(attribs, t)
		}
		children, err := convertEntities(je.Children)
		if err != nil {
			return nil, fmt.Errorf("insert %q: %w", je.Name, err)
		}
		return Insert{Name: je.Name, Attribs: attribs, Children: children}, nil
	default:
		return nil, fmt.Errorf("unknown entity type %q", je.Type)
	}
}

func convertText(je jsonEntity) (Text, error) {
	if je.Insert == nil {
		return Text{}, fmt.Errorf("text entity missing insert point")
	}
	return Text{
		Value:  je.Text,
		Insert: geometry.Point{X: je.Insert[0], Y: je.Insert[1]},
		Height: je.Height,
		HAlign: je.HAlign,
		VAlign: je.VAlign,
	}, nil
}

func encodeEntities(ents []Entity) []jsonEntity {
	out := make([]jsonEntity, 0, len(ents))
	for _, e := range ents {
		out = append(out, encodeEntity(e))
	}
	return out
}

func encodeEntity(e Entity) jsonEntity {
	switch v := e.(type) {
	case Polyline:
		pts := make([][2]float64, len(v.Points))
		for i, p := range v.Points {
			pts[i] = [2]float64{p.X, p.Y}
		}
		return jsonEntity{Type: kindPolyline, Points: pts, Closed: v.Closed}
	case Line:
		s := [2]float64{v.Start.X, v.Start.Y}
		e2 := [2]float64{v.End.X, v.End.Y}
		return jsonEntity{Type: kindLine, Start: &s, End: &e2}
	case Text:
		return encodeText(v)
	case MText:
		ins := [2]float64{v.Insert.X, v.Insert.Y}
		return jsonEntity{
			Type: kindMText, Text: v.Value, Insert: &ins,
			CharHeight: v.CharHeight, Width: v.Width, Attachment: v.Attachment,
		}
	case Insert:
		attribs := make([]jsonEntity, 0, len(v.Attribs))
		for _, a := range v.Attribs {
			attribs = append(attribs, encodeText(a))
		}
		return jsonEntity{
			Type: kindInsert, Name: v.Name,
			Attribs: attribs, Children: encodeEntities(v.Children),
		}
	default:
		// The union is closed; a new variant must be added here explicitly.
		panic(fmt.Sprintf("entities: unhandled entity type %T", e))
	}
}

func encodeText(t Text) jsonEntity {
	ins := [2]float64{t.Insert.X, t.Insert.Y}
	return jsonEntity{
		Type: kindText, Text: t.Value, Insert: &ins,
		Height: t.Height, HAlign: t.HAlign, VAlign: t.VAlign,
	}
}
