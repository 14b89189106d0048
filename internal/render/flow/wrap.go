package flow

import (
	"fmt"
	"strings"
)

// wrap 按可打印宽度贪心折行。显式换行保留；单词本身超宽时按字符拆开。
func wrap(m Measurer, text string, size float64, style Style, maxWidth float64) ([]string, error) {
	var out []string
	measure := func(s string) (float64, error) {
		w := m.Width(s, size, style)
		if !finite(w) || w < 0 {
			return 0, fmt.Errorf("%w: width of %q is %v", ErrLayout, s, w)
		}
		return w, nil
	}

	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			w, err := measure(candidate)
			if err != nil {
				return nil, err
			}
			if w <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				out = append(out, line)
				line = ""
			}
			ww, err := measure(word)
			if err != nil {
				return nil, err
			}
			if ww <= maxWidth {
				line = word
				continue
			}
			pieces, err := breakWord(measure, word, maxWidth)
			if err != nil {
				return nil, err
			}
			out = append(out, pieces[:len(pieces)-1]...)
			line = pieces[len(pieces)-1]
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func breakWord(measure func(string) (float64, error), word string, maxWidth float64) ([]string, error) {
	var pieces []string
	var cur []rune
	for _, r := range word {
		next := string(append(cur, r))
		w, err := measure(next)
		if err != nil {
			return nil, err
		}
		if w > maxWidth && len(cur) > 0 {
			pieces = append(pieces, string(cur))
			cur = []rune{r}
			continue
		}
		cur = append(cur, r)
	}
	return append(pieces, string(cur)), nil
}
