package labels_test

import (
	"math"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/JaimeStill/labelsort/pkg/labels"
)

func TestLabelRegion(t *testing.T) {
	box := types.NewRectangle(0, 0, 600, 800)

	tests := []struct {
		name   string
		rotate int
		want   [4]float64
	}{
		{"upright", 0, [4]float64{0, 400, 600, 800}},
		{"rotated 90", 90, [4]float64{0, 0, 300, 800}},
		{"rotated 180", 180, [4]float64{0, 0, 600, 400}},
		{"rotated 270", 270, [4]float64{300, 0, 600, 800}},
		{"negative rotation", -90, [4]float64{300, 0, 600, 800}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := labels.LabelRegion(box, tt.rotate, 0.5)
			got := [4]float64{r.LL.X, r.LL.Y, r.UR.X, r.UR.Y}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Fatalf("LabelRegion() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLabelRegionOffsetBox(t *testing.T) {
	box := types.NewRectangle(10, 20, 110, 220)

	r := labels.LabelRegion(box, 0, 0.44)

	if math.Abs(r.Height()-88) > 1e-9 {
		t.Errorf("height = %v, want 88", r.Height())
	}
	if r.UR.Y != 220 || r.LL.X != 10 || r.UR.X != 110 {
		t.Errorf("region = %v, want top edge preserved", r)
	}
}
