package visual

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// A4 纸张尺寸（毫米）。
const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
)

// Band 是整页截图中属于同一 A4 页的像素区间 [Top, Bottom)。
type Band struct {
	Top    int
	Bottom int
}

// BandHeight 返回给定像素宽度下一页 A4 的像素高度。
func BandHeight(width int) int {
	return int(math.Round(float64(width) * A4HeightMM / A4WidthMM))
}

// RasterPages 按固定宽高比把高度为 height 的截图切成若干页。
// 纯粹按像素高度切分，可能从文字中间切开，这是可视化格式已知的限制。
func RasterPages(width, height int) []Band {
	if width <= 0 || height <= 0 {
		return nil
	}
	step := BandHeight(width)
	bands := make([]Band, 0, height/step+1)
	for top := 0; top < height; top += step {
		bands = append(bands, Band{Top: top, Bottom: min(top+step, height)})
	}
	return bands
}

// SliceBands 把截图切成等高的页面图像，最后一页不足部分补白。
func SliceBands(src image.Image) []*image.RGBA {
	b := src.Bounds()
	width := b.Dx()
	step := BandHeight(width)
	var pages []*image.RGBA
	for _, band := range RasterPages(width, b.Dy()) {
		page := image.NewRGBA(image.Rect(0, 0, width, step))
		draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		r := image.Rect(0, 0, width, band.Bottom-band.Top)
		draw.Draw(page, r, src, image.Pt(b.Min.X, b.Min.Y+band.Top), draw.Src)
		pages = append(pages, page)
	}
	return pages
}
