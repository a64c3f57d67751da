package labelstest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageDims returns the dimensions of every page in data.
func PageDims(data []byte) ([]types.Dim, error) {
	return api.PageDims(bytes.NewReader(data), configuration())
}

// PageContents returns the decoded content stream of every page in data.
func PageContents(data []byte) ([][]byte, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), configuration())
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	contents := make([][]byte, 0, ctx.PageCount)
	for nr := 1; nr <= ctx.PageCount; nr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, nr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", nr, err)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", nr, err)
		}
		contents = append(contents, b)
	}
	return contents, nil
}

func configuration() *model.Configuration {
	api.DisableConfigDir()
	return model.NewDefaultConfiguration()
}
