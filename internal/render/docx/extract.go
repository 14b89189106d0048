package docx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gomutex/godocx/packager"
	"github.com/gomutex/godocx/wml/ctypes"
)

// ErrNotDocx 表示输入不是有效的 .docx 包。
var ErrNotDocx = errors.New("not a docx document")

// ExtractText 读取正文部件，返回每个非空段落的文本。
func ExtractText(data []byte) ([]string, error) {
	rd, err := packager.Unpack(&data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	if rd.Document == nil || rd.Document.Body == nil {
		return nil, nil
	}
	var out []string
	for _, child := range rd.Document.Body.Children {
		if child.Para == nil {
			continue
		}
		var b strings.Builder
		writeChildren(&b, child.Para.GetCT().Children)
		if s := b.String(); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func writeChildren(b *strings.Builder, children []ctypes.ParagraphChild) {
	for _, c := range children {
		if c.Link != nil {
			writeChildren(b, c.Link.Children)
		}
		if c.Run == nil {
			continue
		}
		for _, rc := range c.Run.Children {
			switch {
			case rc.Text != nil:
				b.WriteString(rc.Text.Text)
			case rc.Tab != nil:
				b.WriteByte('\t')
			case rc.Break != nil:
				b.WriteByte('\n')
			}
		}
	}
}
