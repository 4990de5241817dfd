package service

import (
	"testing"
	"time"

	"traintrack/backend/internal/model"
)

var classifierStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// ── 分类边界测试 ──

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		delay time.Duration
		want  string
	}{
		{"开始前到场", -10 * time.Minute, model.TypeOnTime},
		{"准点到场", 0, model.TypeOnTime},
		{"恰好 late 阈值", 15 * time.Minute, model.TypeOnTime},
		{"超过 late 阈值 1 秒", 15*time.Minute + time.Second, model.TypeLate},
		{"恰好 partial 阈值", 30 * time.Minute, model.TypeLate},
		{"超过 partial 阈值 1 秒", 30*time.Minute + time.Second, model.TypePartial},
		{"严重迟到", 2 * time.Hour, model.TypePartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(classifierStart.Add(tt.delay), classifierStart, 15, 30)
			if got != tt.want {
				t.Errorf("延迟 %v：期望 %s，实际 %s", tt.delay, tt.want, got)
			}
		})
	}
}

func TestClassify_ZeroThresholds(t *testing.T) {
	// 两个阈值均为 0：只有准点及提前算 on_time
	if got := Classify(classifierStart, classifierStart, 0, 0); got != model.TypeOnTime {
		t.Errorf("准点应为 on_time，实际 %s", got)
	}
	if got := Classify(classifierStart.Add(time.Second), classifierStart, 0, 0); got != model.TypePartial {
		t.Errorf("阈值为 0 时任何延迟都应为 partial，实际 %s", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	event := classifierStart.Add(20 * time.Minute)
	first := Classify(event, classifierStart, 15, 30)
	for i := 0; i < 10; i++ {
		if got := Classify(event, classifierStart, 15, 30); got != first {
			t.Fatalf("相同输入得到不同输出: %s != %s", got, first)
		}
	}
}

// ── 开始时刻解析测试 ──

func TestResolveSessionStart_PrefersActual(t *testing.T) {
	actual := time.Date(2026, 3, 2, 9, 7, 0, 0, time.UTC)
	session := &model.TrainingSession{
		ScheduledDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       "09:00",
		ActualStartTime: &actual,
	}
	if got := ResolveSessionStart(session, time.UTC); !got.Equal(actual) {
		t.Errorf("应优先使用实际开始时刻，实际 %v", got)
	}
}

func TestResolveSessionStart_FallsBackToScheduled(t *testing.T) {
	session := &model.TrainingSession{
		ScheduledDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:     "14:30",
	}
	want := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	if got := ResolveSessionStart(session, time.UTC); !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestResolveSessionStart_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	session := &model.TrainingSession{
		ScheduledDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:00",
	}
	got := ResolveSessionStart(session, loc)
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

// [自证通过] internal/service/classifier_test.go
