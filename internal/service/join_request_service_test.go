package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"traintrack/backend/internal/dto"
	"traintrack/backend/internal/model"
	"traintrack/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestJoinRequestService(clk *testClock) (JoinRequestService, *repository.Repository) {
	repo := newTestRepo()
	svc := NewJoinRequestService(testConfig(), repo, clk, zap.NewNop())
	return svc, repo
}

// ── Request 测试 ──

func TestJoinRequestService_Request_Success(t *testing.T) {
	clk := &testClock{now: sessionStart.Add(10 * time.Minute)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	enroll(repo, "session-001", "user-001")

	result, err := svc.Request(context.Background(), "user-001", &dto.CreateJoinRequestRequest{
		SessionID: "session-001",
	})
	if err != nil {
		t.Fatalf("Request 应成功: %v", err)
	}
	if result.Status != model.RequestPending {
		t.Errorf("新申请应为 pending，实际=%s", result.Status)
	}
	if result.RequestedAt != clk.now.Format(time.RFC3339) {
		t.Errorf("requested_at 应取申请时刻，实际=%s", result.RequestedAt)
	}
}

func TestJoinRequestService_Request_SessionGates(t *testing.T) {
	clk := &testClock{now: sessionStart.Add(10 * time.Minute)}
	svc, repo := setupTestJoinRequestService(clk)
	session := seedActiveSession(repo, "trainer-001")
	enroll(repo, "session-001", "user-001")

	// 场次不存在
	_, err := svc.Request(context.Background(), "user-001", &dto.CreateJoinRequestRequest{SessionID: "session-999"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}

	// 场次未激活
	session.Status = model.SessionScheduled
	_, err = svc.Request(context.Background(), "user-001", &dto.CreateJoinRequestRequest{SessionID: "session-001"})
	if !errors.Is(err, ErrSessionInactive) {
		t.Errorf("期望 ErrSessionInactive，实际: %v", err)
	}

	// 未报名
	session.Status = model.SessionActive
	_, err = svc.Request(context.Background(), "user-002", &dto.CreateJoinRequestRequest{SessionID: "session-001"})
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际: %v", err)
	}
}

func TestJoinRequestService_Request_Duplicate(t *testing.T) {
	clk := &testClock{now: sessionStart.Add(10 * time.Minute)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	enroll(repo, "session-001", "user-001")

	if _, err := svc.Request(context.Background(), "user-001", &dto.CreateJoinRequestRequest{SessionID: "session-001"}); err != nil {
		t.Fatalf("首次申请应成功: %v", err)
	}

	_, err := svc.Request(context.Background(), "user-001", &dto.CreateJoinRequestRequest{SessionID: "session-001"})
	if !errors.Is(err, ErrRequestAlreadyExists) {
		t.Errorf("重复申请应报 ErrRequestAlreadyExists，实际: %v", err)
	}
}

func TestJoinRequestService_Request_DuplicateAfterProcessed(t *testing.T) {
	// 申请已被处理过（非 pending）仍不允许再次提交
	clk := &testClock{now: sessionStart.Add(10 * time.Minute)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	enroll(repo, "session-001", "user-001")

	repo.JoinRequest.(*mockJoinRequestRepo).requests["req-001"] = &model.JoinRequest{
		RequestID: "req-001", SessionID: "session-001", UserID: "user-001",
		Status: model.RequestRejected, RequestedAt: sessionStart,
	}

	_, err := svc.Request(context.Background(), "user-001", &dto.CreateJoinRequestRequest{SessionID: "session-001"})
	if !errors.Is(err, ErrRequestAlreadyExists) {
		t.Errorf("已有已处理申请仍应报 ErrRequestAlreadyExists，实际: %v", err)
	}
}

// ── Process 测试 ──

func seedPendingRequest(repo *repository.Repository, requestedAt time.Time) *model.JoinRequest {
	request := &model.JoinRequest{
		RequestID: "req-001", SessionID: "session-001", UserID: "user-001",
		Status: model.RequestPending, RequestedAt: requestedAt,
	}
	repo.JoinRequest.(*mockJoinRequestRepo).requests[request.RequestID] = request
	return request
}

func TestJoinRequestService_Process_ApproveClassifiesByRequestedAt(t *testing.T) {
	// 申请发生在 late 区间（t0+20min），审批拖延 2 小时后批准，分类仍按申请时刻
	clk := &testClock{now: sessionStart.Add(2*time.Hour + 20*time.Minute)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	seedPendingRequest(repo, sessionStart.Add(20*time.Minute))

	result, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "approve",
	})
	if err != nil {
		t.Fatalf("Process 应成功: %v", err)
	}
	if result.RequestStatus != model.RequestApproved {
		t.Errorf("期望 approved，实际=%s", result.RequestStatus)
	}
	if result.AttendanceType != model.TypeLate {
		t.Errorf("分类应按 requested_at 得 late，实际=%s", result.AttendanceType)
	}

	record, err := repo.Attendance.GetBySessionUser(context.Background(), "session-001", "user-001")
	if err != nil {
		t.Fatalf("台账应已落库: %v", err)
	}
	if record.JoinTime == nil || !record.JoinTime.Equal(sessionStart.Add(20*time.Minute)) {
		t.Errorf("join_time 应为申请时刻，实际=%v", record.JoinTime)
	}
}

func TestJoinRequestService_Process_ApproveOnTimeByRequestedAt(t *testing.T) {
	// 申请在开始前（准点区间），延迟审批不应降级分类
	clk := &testClock{now: sessionStart.Add(3 * time.Hour)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	seedPendingRequest(repo, sessionStart.Add(5*time.Minute))

	result, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "approve",
	})
	if err != nil {
		t.Fatalf("Process 应成功: %v", err)
	}
	if result.AttendanceType != model.TypeOnTime {
		t.Errorf("申请发生在阈值内应为 on_time，实际=%s", result.AttendanceType)
	}
}

func TestJoinRequestService_Process_ScanBeforeApprovalWins(t *testing.T) {
	// 学员在审批前已扫码记到：批准不覆盖扫码记录
	clk := &testClock{now: sessionStart.Add(time.Hour)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	seedPendingRequest(repo, sessionStart.Add(40*time.Minute))

	scanTime := sessionStart.Add(10 * time.Minute)
	onTime := model.TypeOnTime
	repo.Attendance.(*mockAttendanceRepo).records[pairKey("session-001", "user-001")] = &model.Attendance{
		AttendanceID: "att-001", SessionID: "session-001", UserID: "user-001",
		Status: model.AttendancePresent, AttendanceType: &onTime, JoinTime: &scanTime,
	}

	result, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "approve",
	})
	if err != nil {
		t.Fatalf("Process 应成功: %v", err)
	}
	if result.AttendanceType != model.TypeOnTime {
		t.Errorf("已扫码记到的应保留扫码分类 on_time，实际=%s", result.AttendanceType)
	}

	record, _ := repo.Attendance.GetBySessionUser(context.Background(), "session-001", "user-001")
	if !record.JoinTime.Equal(scanTime) {
		t.Errorf("join_time 不应被审批覆盖，实际=%v", record.JoinTime)
	}
}

func TestJoinRequestService_Process_Reject(t *testing.T) {
	clk := &testClock{now: sessionStart.Add(time.Hour)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	seedPendingRequest(repo, sessionStart.Add(20*time.Minute))

	result, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "reject",
	})
	if err != nil {
		t.Fatalf("Process 应成功: %v", err)
	}
	if result.RequestStatus != model.RequestRejected {
		t.Errorf("期望 rejected，实际=%s", result.RequestStatus)
	}

	// 拒绝不写台账
	if _, err := repo.Attendance.GetBySessionUser(context.Background(), "session-001", "user-001"); err == nil {
		t.Error("拒绝不应落库台账")
	}
}

func TestJoinRequestService_Process_RepeatSameActionIdempotent(t *testing.T) {
	clk := &testClock{now: sessionStart.Add(time.Hour)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	seedPendingRequest(repo, sessionStart.Add(20*time.Minute))

	first, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "approve",
	})
	if err != nil {
		t.Fatalf("首次审批应成功: %v", err)
	}

	second, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "approve",
	})
	if err != nil {
		t.Fatalf("重复同动作审批应幂等成功: %v", err)
	}
	if second.AttendanceType != first.AttendanceType {
		t.Errorf("重复审批不应改变分类：首次=%s，重复=%s", first.AttendanceType, second.AttendanceType)
	}
}

func TestJoinRequestService_Process_ConflictingAction(t *testing.T) {
	clk := &testClock{now: sessionStart.Add(time.Hour)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	seedPendingRequest(repo, sessionStart.Add(20*time.Minute))

	if _, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "approve",
	}); err != nil {
		t.Fatalf("首次审批应成功: %v", err)
	}

	_, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "reject",
	})
	if !errors.Is(err, ErrRequestAlreadyProcessed) {
		t.Errorf("异动作重复处理应报 ErrRequestAlreadyProcessed，实际: %v", err)
	}
}

func TestJoinRequestService_Process_Forbidden(t *testing.T) {
	clk := &testClock{now: sessionStart.Add(time.Hour)}
	svc, repo := setupTestJoinRequestService(clk)
	seedActiveSession(repo, "trainer-001")
	seedPendingRequest(repo, sessionStart.Add(20*time.Minute))

	_, err := svc.Process(context.Background(), "trainer-002", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-001", Action: "approve",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("非负责讲师审批应拒绝，实际: %v", err)
	}
}

func TestJoinRequestService_Process_NotFound(t *testing.T) {
	clk := &testClock{now: sessionStart}
	svc, _ := setupTestJoinRequestService(clk)

	_, err := svc.Process(context.Background(), "trainer-001", model.RoleTrainer, &dto.ProcessJoinRequestRequest{
		RequestID: "req-999", Action: "approve",
	})
	if !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("期望 ErrRequestNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/join_request_service_test.go
