package labels

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var disableConfigDir sync.Once

// newConfiguration returns a fresh pdfcpu configuration. pdfcpu records the
// running command on the configuration, so one is created per operation.
func newConfiguration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), newConfiguration())
}

// collect writes a document holding the 0-based source pages in seq order.
func collect(data []byte, seq []int) ([]byte, error) {
	selection := make([]string, len(seq))
	for i, p := range seq {
		selection[i] = strconv.Itoa(p + 1)
	}

	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(data), &buf, selection, newConfiguration()); err != nil {
		return nil, fmt.Errorf("collect pages: %w", err)
	}
	return buf.Bytes(), nil
}

// cropTop shrinks every page to the top ratio of its visible height. The
// content stream is untouched; MediaBox and CropBox are both set to the
// label region so the output page height equals ratio times the source height.
func cropTop(data []byte, ratio float64) ([]byte, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	for nr := 1; nr <= ctx.PageCount; nr++ {
		d, _, inh, err := ctx.PageDict(nr, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", nr, err)
		}
		if d == nil || inh == nil {
			return nil, fmt.Errorf("page %d: missing page dictionary", nr)
		}

		box := inh.CropBox
		if box == nil {
			box = inh.MediaBox
		}
		if box == nil {
			return nil, fmt.Errorf("page %d: missing media box", nr)
		}

		region := LabelRegion(box, inh.Rotate, ratio)
		d.Update("MediaBox", region.Array())
		d.Update("CropBox", region.Array())
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}

// LabelRegion returns the part of box that is the top ratio of the page as
// displayed. Rotate is the page's /Rotate value; the displayed top edge is
// the user-space top, left, bottom, or right edge for 0, 90, 180, and 270.
func LabelRegion(box *types.Rectangle, rotate int, ratio float64) *types.Rectangle {
	llx, lly, urx, ury := box.LL.X, box.LL.Y, box.UR.X, box.UR.Y

	switch ((rotate % 360) + 360) % 360 {
	case 90:
		return types.NewRectangle(llx, lly, llx+box.Width()*ratio, ury)
	case 180:
		return types.NewRectangle(llx, lly, urx, lly+box.Height()*ratio)
	case 270:
		return types.NewRectangle(urx-box.Width()*ratio, lly, urx, ury)
	default:
		return types.NewRectangle(llx, ury-box.Height()*ratio, urx, ury)
	}
}
