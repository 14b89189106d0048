package flow

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
)

// fontFamily 是 UTF-8 字体在 fpdf 中注册的族名。
const fontFamily = "Resume"

// 内置 DejaVu Sans Condensed，覆盖拉丁扩展、希腊与西里尔字母。
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejavuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejavuBold []byte
	//go:embed fonts/DejaVuSansCondensed-Oblique.ttf
	dejavuOblique []byte
)

// FontSet 是一套 TrueType 字体，度量与输出必须使用同一套。
// Bold、Italic 为空时回退到 Regular。
type FontSet struct {
	Regular []byte
	Bold    []byte
	Italic  []byte
}

// DefaultFonts 返回内置字体。中日韩文字需要通过 LoadFontSet 提供覆盖这些字形的字体，
// 否则文本层仍然完整，但字形显示为缺字框。
func DefaultFonts() FontSet {
	return FontSet{Regular: dejavuRegular, Bold: dejavuBold, Italic: dejavuOblique}
}

// LoadFontSet 从磁盘读取字体；bold 为空时粗体使用常规字重。
func LoadFontSet(regular, bold string) (FontSet, error) {
	var fs FontSet
	var err error
	if fs.Regular, err = os.ReadFile(regular); err != nil {
		return FontSet{}, fmt.Errorf("load regular font: %w", err)
	}
	if bold != "" {
		if fs.Bold, err = os.ReadFile(bold); err != nil {
			return FontSet{}, fmt.Errorf("load bold font: %w", err)
		}
	}
	return fs, nil
}

func (fs FontSet) orDefault() FontSet {
	if len(fs.Regular) == 0 {
		return DefaultFonts()
	}
	return fs
}

// register 把三种字形注册到 pdf 上。
// fpdf 解析失败时只打印日志并跳过该字体，这里用 SetFont 逐一确认。
func (fs FontSet) register(pdf *fpdf.Fpdf) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register fonts: %v", r)
		}
	}()
	fs = fs.orDefault()
	pick := func(b []byte) []byte {
		if len(b) == 0 {
			return fs.Regular
		}
		return b
	}
	styles := []struct {
		style Style
		data  []byte
	}{
		{Normal, fs.Regular},
		{Bold, pick(fs.Bold)},
		{Italic, pick(fs.Italic)},
	}
	for _, s := range styles {
		pdf.AddUTF8FontFromBytes(fontFamily, string(s.style), s.data)
		pdf.SetFont(fontFamily, string(s.style), 10)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("register fonts: %w", err)
	}
	return nil
}
