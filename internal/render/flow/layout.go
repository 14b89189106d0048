// Package flow 把排序后的分区排成固定 A4 几何上的绝对定位文本，
// 用于生成可提取文本的 ATS PDF。分页完全由算术决定，不感知内容。
package flow

import (
	"errors"
	"fmt"
	"math"
)

// A4 页面几何，单位为 pt。
const (
	PageWidth    = 595.28
	PageHeight   = 841.89
	Margin       = 40.0
	PrintableW   = PageWidth - 2*Margin
	LeadingRatio = 0.5
)

// ErrLayout 表示排版计算失败（例如度量结果不是有限数）。
var ErrLayout = errors.New("flow layout failed")

type Style string

const (
	Normal Style = ""
	Bold   Style = "B"
	Italic Style = "I"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

type Color struct {
	R, G, B uint8
}

// Hex 解析 "#rrggbb"，格式错误时返回黑色。
func Hex(s string) Color {
	var c Color
	if len(s) == 7 && s[0] == '#' {
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err == nil {
			return c
		}
	}
	return Color{}
}

// Font 是一次 addText 调用的全部排版参数。
type Font struct {
	Size  float64
	Style Style
	Align Align
	Color Color
}

type OpKind int

const (
	OpText OpKind = iota
	OpRule
)

// Op 是一条页内绝对定位的绘制指令。Y 为文本基线或横线位置。
type Op struct {
	Kind  OpKind
	Page  int
	X     float64
	Y     float64
	X2    float64
	Text  string
	Font  Font
	Width float64
}

// Measurer 返回文本在给定字号与字形下的宽度（pt）。
type Measurer interface {
	Width(text string, size float64, style Style) float64
}

// layout 是带游标的排版状态。
type layout struct {
	m     Measurer
	y     float64
	page  int
	pages int
	ops   []Op
	err   error
}

func newLayout(m Measurer) *layout {
	return &layout{m: m, y: Margin, pages: 1}
}

func (l *layout) bottom() float64 { return PageHeight - Margin }

func (l *layout) newPage() {
	l.page++
	l.pages++
	l.y = Margin
}

func (l *layout) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

// addSpace 推进游标。
func (l *layout) addSpace(pt float64) {
	l.y += pt
}

// addText 折行后逐行输出。整块放不下时先换页；
// 此外每一行输出前都检查该行推进后是否越过下边距，越过则先换页再输出。
func (l *layout) addText(text string, f Font) {
	if text == "" || l.err != nil {
		return
	}
	lines, err := wrap(l.m, text, f.Size, f.Style, PrintableW)
	if err != nil {
		l.fail(err)
		return
	}
	lead := f.Size * LeadingRatio
	if l.y > Margin && l.y+float64(len(lines))*lead > l.bottom() {
		l.newPage()
	}
	for _, line := range lines {
		if l.y > Margin && l.y+lead > l.bottom() {
			l.newPage()
		}
		x := Margin
		if f.Align == AlignCenter {
			w := l.m.Width(line, f.Size, f.Style)
			if !finite(w) {
				l.fail(fmt.Errorf("%w: width of %q is %v", ErrLayout, line, w))
				return
			}
			x = (PageWidth - w) / 2
		}
		l.ops = append(l.ops, Op{Kind: OpText, Page: l.page, X: x, Y: l.y, Text: line, Font: f})
		l.y += lead
	}
}

// addRule 画一条横跨可打印宽度的横线。
func (l *layout) addRule(width float64, c Color) {
	if l.err != nil {
		return
	}
	if l.y > l.bottom() {
		l.newPage()
	}
	l.ops = append(l.ops, Op{
		Kind: OpRule, Page: l.page,
		X: Margin, Y: l.y, X2: PageWidth - Margin,
		Width: width, Font: Font{Color: c},
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
