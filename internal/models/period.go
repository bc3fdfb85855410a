package models

import (
	"fmt"
	"time"
)

// Period 统计期间
type Period string

const (
	Period1Day   Period = "1day"
	Period1Week  Period = "1week"
	Period1Month Period = "1month"
	PeriodAll    Period = "all"
)

var periodDays = map[Period]int{
	Period1Day:   1,
	Period1Week:  7,
	Period1Month: 30,
}

var periodLabels = map[Period]string{
	Period1Day:   "過去1日",
	Period1Week:  "過去1週間",
	Period1Month: "過去1ヶ月",
	PeriodAll:    "全期間",
}

// ParsePeriod 解析期间，空字符串返回默认值
func ParsePeriod(value string, def Period) (Period, error) {
	if value == "" {
		return def, nil
	}
	p := Period(value)
	if _, ok := periodLabels[p]; !ok {
		return "", fmt.Errorf("unknown period: %q", value)
	}
	return p, nil
}

// Since 返回期间起点；PeriodAll 不限时间，返回false
func (p Period) Since(now time.Time) (time.Time, bool) {
	days, ok := periodDays[p]
	if !ok {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}

// Label 显示名称
func (p Period) Label() string {
	if label, ok := periodLabels[p]; ok {
		return label
	}
	return periodLabels[PeriodAll]
}
