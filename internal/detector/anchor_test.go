package detector

import (
	"testing"

	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

func TestMatchAnchorText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		want    bool
	}{
		{"ascii exact", "CNPE", "CNPE", true},
		{"ascii case insensitive", "cnpe", "CNPE", true},
		{"ascii substring", "Issued by CNPE 2024", "CNPE", true},
		{"ascii mismatch", "ACME", "CNPE", false},
		{"ascii spaces stripped", "C N P E", "CNPE", true},
		{"cjk exact", "中国核电工程有限公司", "中国核电工程有限公司", true},
		{"cjk substring", "设计单位:中国核电工程有限公司(北京)", "中国核电工程有限公司", true},
		{"cjk spaces stripped", "中国核电 工程有限公司", "中国核电工程有限公司", true},
		{"cjk partial only", "中国核电", "中国核电工程有限公司", false},
		{"empty pattern", "anything", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchAnchorText(tt.text, tt.pattern); got != tt.want {
				t.Errorf("matchAnchorText(%q, %q) = %v, want %v", tt.text, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestAnchorValidator(t *testing.T) {
	det := config.DefaultConfig().Detection
	v := NewAnchorValidator(&det)
	outer := geometry.NewRect(0, 0, 420, 297)

	// BASE10 anchor ROI is x [240, 410], y [46, 56] before margin.
	inside := entities.TextItem{X: 300, Y: 50, Text: "中国核电工程有限公司"}
	outside := entities.TextItem{X: 100, Y: 150, Text: "中国核电工程有限公司"}
	wrongText := entities.TextItem{X: 300, Y: 50, Text: "某某设计院"}

	if !v.Validate([]entities.TextItem{inside}, outer, 1, 1, "BASE10") {
		t.Error("expected primary anchor inside ROI to validate")
	}
	if !v.Validate([]entities.TextItem{{X: 300, Y: 50, Text: "cnpe"}}, outer, 1, 1, "BASE10") {
		t.Error("expected secondary anchor inside ROI to validate")
	}
	if v.Validate([]entities.TextItem{outside}, outer, 1, 1, "BASE10") {
		t.Error("expected anchor outside ROI to fail")
	}
	if v.Validate([]entities.TextItem{wrongText}, outer, 1, 1, "BASE10") {
		t.Error("expected non-anchor text to fail")
	}
	if v.Validate([]entities.TextItem{inside}, outer, 1, 1, "NO-SUCH-PROFILE") {
		t.Error("expected unknown profile to fail")
	}
}

func TestAnchorValidatorMarginExpansion(t *testing.T) {
	det := config.DefaultConfig().Detection
	v := NewAnchorValidator(&det)
	outer := geometry.NewRect(0, 0, 420, 297)

	// Just past the raw ROI edge but inside the 5% margin expansion.
	edge := entities.TextItem{X: 300, Y: 56.3, Text: "CNPE"}
	if !v.Validate([]entities.TextItem{edge}, outer, 1, 1, "BASE10") {
		t.Error("expected text within margin expansion to validate")
	}
}
