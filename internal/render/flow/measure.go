package flow

import (
	"math"
	"sync"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

// FontMeasurer 使用与 WritePDF 相同的 UTF-8 字体度量文本。
type FontMeasurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	err error
}

// NewFontMeasurer 注册 fs（零值为内置字体）。字体无效时 Width 返回 NaN，
// 排版随之以 ErrLayout 失败。
func NewFontMeasurer(fs FontSet) *FontMeasurer {
	pdf := fpdf.New("P", "pt", "A4", "")
	return &FontMeasurer{pdf: pdf, err: fs.register(pdf)}
}

func (m *FontMeasurer) Width(text string, size float64, style Style) float64 {
	if m.err != nil {
		return math.NaN()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(fontFamily, string(style), size)
	return m.pdf.GetStringWidth(text)
}

// FixedMeasurer 每个字符固定宽度 Advance×size，用于确定性测试。
type FixedMeasurer struct {
	Advance float64
}

func (m FixedMeasurer) Width(text string, size float64, _ Style) float64 {
	return float64(utf8.RuneCountInString(text)) * m.Advance * size
}
