package entities

import (
	"strings"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/geometry"
)

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func TestDecodeEntityStream(t *testing.T) {
	input := `{
		"source": "plan.dxf",
		"entities": [
			{"type": "polyline", "points": [[0,0],[100,0],[100,50],[0,50]], "closed": true},
			{"type": "line", "start": [0,0], "end": [100,0]},
			{"type": "text", "text": "CNPE", "insert": [90,5], "height": 2.5},
			{"type": "insert", "name": "TB", "attribs": [
				{"type": "text", "text": "1:100", "insert": [95,2], "height": 2.5}
			], "children": [
				{"type": "mtext", "text": "TITLE", "insert": [50,25], "char_height": 3, "attachment": 5}
			]}
		]
	}`
	c, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if c.Source != "plan.dxf" {
		t.Fatalf("unexpected source %q", c.Source)
	}
	if len(c.Entities) != 4 {
		t.Fatalf("expected 4 entities, got %d", len(c.Entities))
	}
	if len(c.Polylines()) != 1 || len(c.Lines()) != 1 {
		t.Fatalf("accessor counts wrong: %d polylines, %d lines", len(c.Polylines()), len(c.Lines()))
	}
	ins, ok := c.Entities[3].(Insert)
	if !ok {
		t.Fatalf("expected insert, got %T", c.Entities[3])
	}
	if len(ins.Attribs) != 1 || len(ins.Children) != 1 {
		t.Fatalf("insert not fully decoded: %+v", ins)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"entities":[{"type":"spline"}]}`))
	if err == nil {
		t.Fatalf("expected error for unknown entity type")
	}
	if !strings.Contains(err.Error(), "spline") {
		t.Fatalf("error should name the offending type: %v", err)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"entities": [`)); err == nil {
		t.Fatalf("expected error for truncated document")
	}
}

func TestEncodeDecodeNestedInsert(t *testing.T) {
	orig := &Collection{
		Source: "a.dxf",
		Entities: []Entity{
			Insert{Name: "OUTER", Children: []Entity{
				Insert{Name: "INNER", Children: []Entity{
					Text{Value: "deep", Insert: pt(1, 2), Height: 2.5},
				}},
			}},
		},
	}
	var buf strings.Builder
	if err := Encode(&buf, orig); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := Decode(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	items, _ := CollectTextItems(got, 0)
	if len(items) != 1 || items[0].Text != "deep" {
		t.Fatalf("nested text lost in roundtrip: %+v", items)
	}
}
