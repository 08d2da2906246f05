package ecma

import (
	"errors"
	"testing"
	"time"
)

// ── Parse 测试 ──

func TestParse_DateTimeString(t *testing.T) {
	got, typ, err := Parse("2024-05-06T08:00:00.000Z", nil)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	if typ != TypeDate {
		t.Errorf("期望类型 Date，实际 %s", typ)
	}
	want := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestParse_DateTimeString_WithOffset(t *testing.T) {
	got, typ, err := Parse("2024-05-06T10:00:00.000+02:00", nil)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	if typ != TypeDate {
		t.Errorf("期望类型 Date，实际 %s", typ)
	}
	want := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestParse_ZonedDateTime(t *testing.T) {
	got, typ, err := Parse("2024-05-06T10:00:00+02:00[Europe/Berlin]", nil)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	if typ != TypeZonedDateTime {
		t.Errorf("期望类型 ZonedDateTime，实际 %s", typ)
	}
	want := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestParse_ZonedDateTime_Fractional(t *testing.T) {
	_, typ, err := Parse("2024-05-06T10:00:00.500+02:00[Europe/Berlin]", nil)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	if typ != TypeZonedDateTime {
		t.Errorf("期望类型 ZonedDateTime，实际 %s", typ)
	}
}

func TestParse_PlainDate(t *testing.T) {
	got, typ, err := Parse("2024-05-06", nil)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	if typ != TypePlainDate {
		t.Errorf("期望类型 PlainDate，实际 %s", typ)
	}
	want := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestParse_PlainDate_Location(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skipf("缺少时区数据: %v", err)
	}
	got, _, err := Parse("2024-05-06", loc)
	if err != nil {
		t.Fatalf("Parse 应成功: %v", err)
	}
	// 上海 2024-05-06 00:00 对应 UTC 2024-05-05 16:00
	want := time.Date(2024, 5, 5, 16, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"",
		"not-a-date",
		"2024-05-06T08:00:00",       // 无时区后缀
		"2024-05-06T08:00:00Z",      // ECMA 格式要求毫秒
		"2024-05-06T08:00:00+02:00", // 无 [Zone] 标注的带秒格式
		"2024/05/06",
	}
	for _, c := range cases {
		if _, _, err := Parse(c, nil); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) 期望 ErrMalformed，实际 %v", c, err)
		}
	}
}

// ── Unlocalize 测试 ──

func TestUnlocalize_UTCFixedPoint(t *testing.T) {
	cases := []string{
		"2024-05-06T08:00:00.000Z",
		"2024-05-06T08:00:00+00:00[UTC]",
		"2024-05-06T08:00:00.000+00:00[UTC]",
		"2024-05-06",
	}
	for _, c := range cases {
		got, _, err := Unlocalize(c)
		if err != nil {
			t.Fatalf("Unlocalize(%q) 应成功: %v", c, err)
		}
		if got != c {
			t.Errorf("已是 UTC 的字符串应为不动点: %q → %q", c, got)
		}
	}
}

func TestUnlocalize_DateTimeString(t *testing.T) {
	got, instant, err := Unlocalize("2024-05-06T10:30:00.000+02:00")
	if err != nil {
		t.Fatalf("Unlocalize 应成功: %v", err)
	}
	if got != "2024-05-06T08:30:00.000Z" {
		t.Errorf("期望 2024-05-06T08:30:00.000Z，实际 %q", got)
	}
	want := time.Date(2024, 5, 6, 8, 30, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Errorf("期望时刻 %v，实际 %v", want, instant)
	}
}

func TestUnlocalize_ZonedDateTime(t *testing.T) {
	got, _, err := Unlocalize("2024-05-06T10:30:00+02:00[Europe/Berlin]")
	if err != nil {
		t.Fatalf("Unlocalize 应成功: %v", err)
	}
	if got != "2024-05-06T08:30:00+00:00[UTC]" {
		t.Errorf("期望 2024-05-06T08:30:00+00:00[UTC]，实际 %q", got)
	}
}

func TestUnlocalize_ZonedDateTime_KeepsFraction(t *testing.T) {
	got, _, err := Unlocalize("2024-05-06T10:30:00.250+02:00[Europe/Berlin]")
	if err != nil {
		t.Fatalf("Unlocalize 应成功: %v", err)
	}
	if got != "2024-05-06T08:30:00.250+00:00[UTC]" {
		t.Errorf("期望保留小数秒，实际 %q", got)
	}
}

func TestUnlocalize_PlainDateUnchanged(t *testing.T) {
	got, _, err := Unlocalize("2024-05-06")
	if err != nil {
		t.Fatalf("Unlocalize 应成功: %v", err)
	}
	if got != "2024-05-06" {
		t.Errorf("PlainDate 应原样返回，实际 %q", got)
	}
}

func TestUnlocalize_Malformed(t *testing.T) {
	if _, _, err := Unlocalize("tomorrow"); !errors.Is(err, ErrMalformed) {
		t.Errorf("期望 ErrMalformed，实际 %v", err)
	}
}
