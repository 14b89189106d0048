package resume

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date 是不含时区的日历日期。
// 可选日期一律使用 *Date 表示，缺省为 nil，不允许出现空字符串。
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var errEmptyDate = errors.New("empty date")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01",
	"2006",
}

// ParseDate 解析常见的日期写法，空串返回 errEmptyDate。
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, errEmptyDate
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", raw)
}

// DateOf 截取 t 的日历日期部分。
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String 返回 ISO 格式 YYYY-MM-DD。
func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// MonthYear 返回形如 "Jan 2020" 的展示格式。
func (d Date) MonthYear() string {
	return d.Time().Format("Jan 2006")
}

func (d Date) YearString() string {
	return d.Time().Format("2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
