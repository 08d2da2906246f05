package ecma

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ── ECMA 时间字符串解析 ────────────────────────────────────
//
// 前端以三种可互换的字符串格式传递时间，按以下优先级识别：
//
//  1. ECMAScript Date Time String（毫秒 + 时区后缀，如
//     1970-01-01T00:00:00.000Z）
//  2. RFC 9557 无日历标注的 ZonedDateTime（可带可不带小数秒，如
//     1970-01-01T00:00:00+00:00[UTC]）
//  3. PlainDate（如 1970-01-01，按周排班的班次只有日期，不携带时区）
//
// Unlocalize 把任何本地化信息归一到 UTC 后再落库，避免按天排班的
// 班次边界隐式依赖服务器时区；PlainDate 原样保留。
// ─────────────────────────────────────────────────────────────

// Type 识别出的时间字符串类别
type Type string

const (
	// TypeDate ECMAScript Date Time String
	TypeDate Type = "Date"
	// TypeZonedDateTime RFC 9557 无日历标注字符串
	TypeZonedDateTime Type = "ZonedDateTime"
	// TypePlainDate 纯日期字符串
	TypePlainDate Type = "PlainDate"
)

// ErrMalformed 字符串不属于任何受支持格式
var ErrMalformed = errors.New("不支持的时间字符串格式")

const (
	layoutDateTime = "2006-01-02T15:04:05.000Z07:00"

	// ZonedDateTime 去掉 [Zone] 标注后的主体部分。
	// Go 解析时小数秒即使未出现在 layout 中也会被接受，
	// 因此带与不带小数秒共用同一解析 layout，序列化时再区分。
	layoutZonedBase = "2006-01-02T15:04:05Z07:00"

	layoutZonedOut     = "2006-01-02T15:04:05-07:00"
	layoutZonedFracOut = "2006-01-02T15:04:05.000-07:00"

	layoutPlainDate = "2006-01-02"

	// LayoutICalPlainDate iCalendar 全天事件使用的纯日期格式
	LayoutICalPlainDate = "20060102"
)

// Parse 按优先级解析 value，返回对应的 UTC 绝对时刻与识别出的类别。
//
// loc 仅在 value 为 PlainDate 时生效（纯日期没有自带时区）；
// 传 nil 时按 UTC 解析。
func Parse(value string, loc *time.Location) (time.Time, Type, error) {
	t, typ, _, err := parse(value, loc)
	return t, typ, err
}

// Unlocalize 去除 value 中的本地化信息：解析后转换到 UTC，
// 再按其原始格式族重新序列化。
//
//   - Date → 同格式，时区后缀为 Z
//   - ZonedDateTime → 同格式，时区为 +00:00[UTC]
//   - PlainDate → 原字符串原样返回
//
// 对已是 UTC 的字符串，Unlocalize 是不动点。
func Unlocalize(value string) (string, time.Time, error) {
	t, typ, hasFrac, err := parse(value, time.UTC)
	if err != nil {
		return "", time.Time{}, err
	}
	utc := t.UTC()
	switch typ {
	case TypeDate:
		return utc.Format(layoutDateTime), utc, nil
	case TypeZonedDateTime:
		layout := layoutZonedOut
		if hasFrac {
			layout = layoutZonedFracOut
		}
		return utc.Format(layout) + "[UTC]", utc, nil
	default: // PlainDate 不携带时区，原样保留
		return value, utc, nil
	}
}

func parse(value string, loc *time.Location) (time.Time, Type, bool, error) {
	if loc == nil {
		loc = time.UTC
	}

	// 1. ECMAScript Date Time String（毫秒必须存在）
	if t, err := time.Parse(layoutDateTime, value); err == nil {
		return t.UTC(), TypeDate, true, nil
	}

	// 2./3. RFC 9557：主体 + [Zone] 标注
	if base, ok := splitZoneAnnotation(value); ok {
		if t, err := time.Parse(layoutZonedBase, base); err == nil {
			hasFrac := strings.Contains(base, ".")
			return t.UTC(), TypeZonedDateTime, hasFrac, nil
		}
	}

	// 4. PlainDate，按 loc 解析为当日零点
	if t, err := time.ParseInLocation(layoutPlainDate, value, loc); err == nil {
		return t.UTC(), TypePlainDate, false, nil
	}

	return time.Time{}, "", false, fmt.Errorf("%w: %q", ErrMalformed, value)
}

// splitZoneAnnotation 去掉 RFC 9557 的 [Zone] 后缀，返回主体部分。
// 标注为空或缺失时返回 ok=false。
func splitZoneAnnotation(value string) (string, bool) {
	if !strings.HasSuffix(value, "]") {
		return "", false
	}
	i := strings.LastIndexByte(value, '[')
	if i <= 0 || i == len(value)-2 {
		return "", false
	}
	return value[:i], true
}
