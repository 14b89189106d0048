package export

import (
	"strings"
	"time"
)

type Format string

const (
	FormatATSPDF    Format = "ats-pdf"
	FormatATSDOCX   Format = "ats-docx"
	FormatVisualPDF Format = "visual-pdf"
)

// Formats 列出全部支持的导出格式。
var Formats = []Format{FormatATSPDF, FormatATSDOCX, FormatVisualPDF}

const (
	contentTypePDF  = "application/pdf"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ParseFormat 解析格式名，未知格式返回 PreconditionError。
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	if !f.Valid() {
		return f, &PreconditionError{Format: f, Err: ErrUnknownFormat}
	}
	return f, nil
}

func (f Format) Valid() bool {
	switch f {
	case FormatATSPDF, FormatATSDOCX, FormatVisualPDF:
		return true
	}
	return false
}

// NeedsSurface 只有可视化导出需要预先渲染好的预览。
func (f Format) NeedsSurface() bool { return f == FormatVisualPDF }

func (f Format) Extension() string {
	if f == FormatATSDOCX {
		return "docx"
	}
	return "pdf"
}

func (f Format) ContentType() string {
	if f == FormatATSDOCX {
		return contentTypeDOCX
	}
	return contentTypePDF
}

// Label 是界面上展示的格式名。
func (f Format) Label() string {
	switch f {
	case FormatATSPDF:
		return "ATS-Friendly PDF (Recommended)"
	case FormatATSDOCX:
		return "ATS-Friendly DOCX"
	case FormatVisualPDF:
		return "Visual PDF"
	}
	return string(f)
}

const defaultBaseName = "resume"

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// Filename 形如 "{标题或 resume}_{YYYY-MM-DD}.{ext}"；重名交给文件系统处理。
func Filename(title string, now time.Time, f Format) string {
	base := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, filenameReplacer.Replace(strings.TrimSpace(title)))
	base = strings.Trim(base, " .")
	if base == "" {
		base = defaultBaseName
	}
	return base + "_" + now.Format("2006-01-02") + "." + f.Extension()
}
