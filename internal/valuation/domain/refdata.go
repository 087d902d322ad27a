package domain

import (
	"fmt"
	"time"
)

// CalendarID 假日日历标识
type CalendarID string

const (
	// CalendarWeekendOnly 仅周末休市的日历
	CalendarWeekendOnly CalendarID = "WeekendOnly"
	// CalendarNone 不休市
	CalendarNone CalendarID = "None"
)

// HolidayCalendar 假日日历，判断营业日
type HolidayCalendar interface {
	// ID 日历标识
	ID() CalendarID
	// IsBusinessDay 指定日期是否为营业日
	IsBusinessDay(date time.Time) bool
}

// ErrUnknownCalendar 引用数据中不存在请求的日历
var ErrUnknownCalendar = fmt.Errorf("unknown holiday calendar")

// ReferenceData 不可变引用数据快照，仅在交易解析阶段使用
type ReferenceData interface {
	// Calendar 查找假日日历，未找到返回 ErrUnknownCalendar
	Calendar(id CalendarID) (HolidayCalendar, error)
}

// holidayCalendar 基于周末规则加假日集合的日历实现
type holidayCalendar struct {
	id       CalendarID
	holidays map[string]struct{}
	workWeek bool // true 时周六周日休市
}

// NewHolidayCalendar 创建日历，holidays 为休市日期列表
func NewHolidayCalendar(id CalendarID, weekendsOff bool, holidays []time.Time) HolidayCalendar {
	hs := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		hs[dateKey(h)] = struct{}{}
	}
	return &holidayCalendar{id: id, holidays: hs, workWeek: weekendsOff}
}

func (c *holidayCalendar) ID() CalendarID {
	return c.id
}

func (c *holidayCalendar) IsBusinessDay(date time.Time) bool {
	if c.workWeek {
		wd := date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	_, holiday := c.holidays[dateKey(date)]
	return !holiday
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// referenceData map 支撑的引用数据快照
type referenceData struct {
	calendars map[CalendarID]HolidayCalendar
}

// NewReferenceData 从日历集合构建引用数据快照
func NewReferenceData(calendars ...HolidayCalendar) ReferenceData {
	m := make(map[CalendarID]HolidayCalendar, len(calendars))
	for _, c := range calendars {
		m[c.ID()] = c
	}
	return &referenceData{calendars: m}
}

// StandardReferenceData 内置标准日历的引用数据
func StandardReferenceData() ReferenceData {
	return NewReferenceData(
		NewHolidayCalendar(CalendarWeekendOnly, true, nil),
		NewHolidayCalendar(CalendarNone, false, nil),
	)
}

func (r *referenceData) Calendar(id CalendarID) (HolidayCalendar, error) {
	c, ok := r.calendars[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCalendar, id)
	}
	return c, nil
}

// BusinessDayConvention 营业日调整惯例
type BusinessDayConvention string

const (
	// ConventionNoAdjust 不调整
	ConventionNoAdjust BusinessDayConvention = "NoAdjust"
	// ConventionFollowing 顺延至下一营业日
	ConventionFollowing BusinessDayConvention = "Following"
	// ConventionModifiedFollowing 顺延，跨月则回退
	ConventionModifiedFollowing BusinessDayConvention = "ModifiedFollowing"
	// ConventionPreceding 回退至上一营业日
	ConventionPreceding BusinessDayConvention = "Preceding"
)

// Adjust 按惯例将日期调整为营业日
func (c BusinessDayConvention) Adjust(date time.Time, calendar HolidayCalendar) (time.Time, error) {
	switch c {
	case ConventionNoAdjust, "":
		return date, nil
	case ConventionFollowing:
		return nextBusinessDay(date, calendar), nil
	case ConventionModifiedFollowing:
		adjusted := nextBusinessDay(date, calendar)
		if adjusted.Month() != date.Month() {
			return prevBusinessDay(date, calendar), nil
		}
		return adjusted, nil
	case ConventionPreceding:
		return prevBusinessDay(date, calendar), nil
	default:
		return time.Time{}, fmt.Errorf("unknown business day convention: %q", c)
	}
}

func nextBusinessDay(date time.Time, calendar HolidayCalendar) time.Time {
	for !calendar.IsBusinessDay(date) {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

func prevBusinessDay(date time.Time, calendar HolidayCalendar) time.Time {
	for !calendar.IsBusinessDay(date) {
		date = date.AddDate(0, 0, -1)
	}
	return date
}

// AdjustableDate 待调整日期：原始日期加调整惯例与日历
type AdjustableDate struct {
	Unadjusted time.Time             `json:"unadjusted"`
	Convention BusinessDayConvention `json:"convention"`
	Calendar   CalendarID            `json:"calendar"`
}

// Adjust 解析日历并按惯例调整，日历缺失时返回错误
func (d AdjustableDate) Adjust(refData ReferenceData) (time.Time, error) {
	if d.Convention == ConventionNoAdjust || d.Convention == "" {
		return d.Unadjusted, nil
	}
	calendar, err := refData.Calendar(d.Calendar)
	if err != nil {
		return time.Time{}, err
	}
	return d.Convention.Adjust(d.Unadjusted, calendar)
}
