package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/go-pdf/fpdf"

	"resumeKit/internal/render/visual"
)

// visualPDF 把预览截图按 A4 比例切片，每片铺满一页。
// 输出是位图，文字不可选，且可能在页边界处截断内容。
func (s *Service) visualPDF(ctx context.Context, surface Surface) ([]byte, int, error) {
	shot, err := surface.Capture(ctx)
	if err != nil {
		return nil, 0, &Error{Stage: StageCapture, Format: FormatVisualPDF, Cause: err}
	}
	src, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, 0, &Error{Stage: StageCapture, Format: FormatVisualPDF, Cause: fmt.Errorf("decode screenshot: %w", err)}
	}
	if src.Bounds().Empty() {
		return nil, 0, &Error{Stage: StageCapture, Format: FormatVisualPDF, Cause: fmt.Errorf("empty screenshot")}
	}

	var data []byte
	var pages int
	err = guard(func() error {
		var err error
		data, pages, err = rasterPDF(visual.SliceBands(src), s.compress)
		return err
	})
	if err != nil {
		return nil, 0, &Error{Stage: StageSerialize, Format: FormatVisualPDF, Cause: err}
	}
	return data, pages, nil
}

func rasterPDF(bands []*image.RGBA, compress bool) ([]byte, int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(compress)
	pdf.SetCreator("resumeKit", false)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, band := range bands {
		var buf bytes.Buffer
		if err := png.Encode(&buf, band); err != nil {
			return nil, 0, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, visual.A4WidthMM, visual.A4HeightMM, false, opts, 0, "")
		if pdf.Err() {
			return nil, 0, pdf.Error()
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, 0, fmt.Errorf("write visual pdf: %w", err)
	}
	return out.Bytes(), len(bands), nil
}
