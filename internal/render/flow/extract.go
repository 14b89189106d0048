package flow

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrNotPDF 表示输入不是 PDF。
var ErrNotPDF = errors.New("not a pdf document")

// ExtractText 按页返回每个文本显示操作（Tj、TJ、' 与 "）的字符串，近似 ATS 解析器看到的文本。
func ExtractText(data []byte) (texts []string, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	// 内容流损坏时解析器会 panic
	defer func() {
		if rec := recover(); rec != nil {
			texts, err = nil, fmt.Errorf("read pdf content: %v", rec)
		}
	}()
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines, err := pageText(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		texts = append(texts, lines...)
	}
	return texts, nil
}

func pageText(page pdf.Page) ([]string, error) {
	decoders := make(map[string]*encoding.Decoder)
	for _, name := range page.Fonts() {
		decoders[name] = fontDecoder(page.Font(name))
	}

	var (
		out    []string
		failed error
		dec    = encoding.Nop.NewDecoder()
	)
	show := func(raw string) {
		s, err := dec.String(raw)
		if err != nil && failed == nil {
			failed = fmt.Errorf("decode pdf string: %w", err)
		}
		out = append(out, s)
	}
	pdf.Interpret(page.V.Key("Contents"), func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "Tf":
			if len(args) == 0 {
				return
			}
			if d, ok := decoders[args[0].Name()]; ok {
				dec = d
			} else {
				dec = encoding.Nop.NewDecoder()
			}
		case "Tj", "'", "\"":
			if len(args) > 0 {
				show(args[len(args)-1].RawString())
			}
		case "TJ":
			if len(args) == 0 {
				return
			}
			var raw string
			for i, arr := 0, args[0]; i < arr.Len(); i++ {
				raw += arr.Index(i).RawString()
			}
			show(raw)
		}
	})
	return out, failed
}

// fontDecoder 按字体编码选择解码器。fpdf 的 UTF-8 字体使用 Identity-H，
// CID 即 Unicode 码点，ToUnicode 为恒等映射。
func fontDecoder(f pdf.Font) *encoding.Decoder {
	switch f.V.Key("Encoding").Name() {
	case "Identity-H":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case "WinAnsiEncoding":
		return charmap.Windows1252.NewDecoder()
	case "MacRomanEncoding":
		return charmap.Macintosh.NewDecoder()
	}
	return encoding.Nop.NewDecoder()
}
