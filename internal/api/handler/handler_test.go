package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"traintrack/backend/internal/dto"
	"traintrack/backend/internal/service"
	"traintrack/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	scanResult *dto.ScanResponse
	scanErr    error
	setResult  *dto.AttendanceResponse
	setErr     error
	listResult []dto.AttendanceResponse
	summary    *dto.SessionAttendanceSummary
	listErr    error
}

func (m *mockAttendanceService) Scan(_ context.Context, _ string, _ *dto.ScanRequest) (*dto.ScanResponse, error) {
	return m.scanResult, m.scanErr
}
func (m *mockAttendanceService) Set(_ context.Context, _, _ string, _ *dto.SetAttendanceRequest) (*dto.AttendanceResponse, error) {
	return m.setResult, m.setErr
}
func (m *mockAttendanceService) ListBySession(_ context.Context, _ string) ([]dto.AttendanceResponse, *dto.SessionAttendanceSummary, error) {
	return m.listResult, m.summary, m.listErr
}

// ── Mock JoinRequestService ──

type mockJoinRequestService struct {
	requestResult *dto.JoinRequestResponse
	requestErr    error
	processResult *dto.ProcessJoinRequestResponse
	processErr    error
	listResult    []dto.JoinRequestResponse
	listErr       error
}

func (m *mockJoinRequestService) Request(_ context.Context, _ string, _ *dto.CreateJoinRequestRequest) (*dto.JoinRequestResponse, error) {
	return m.requestResult, m.requestErr
}
func (m *mockJoinRequestService) Process(_ context.Context, _, _ string, _ *dto.ProcessJoinRequestRequest) (*dto.ProcessJoinRequestResponse, error) {
	return m.processResult, m.processErr
}
func (m *mockJoinRequestService) ListBySession(_ context.Context, _ string, _ *dto.JoinRequestListRequest) ([]dto.JoinRequestResponse, error) {
	return m.listResult, m.listErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// injectAuth 模拟 JWT 中间件注入的上下文
func injectAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_Scan_Success(t *testing.T) {
	mock := &mockAttendanceService{
		scanResult: &dto.ScanResponse{Status: "present", AttendanceType: "on_time"},
	}
	h := NewAttendanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/scan", jsonBody(dto.ScanRequest{
		Token: "tok-abc", SessionID: "session-001",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/scan", injectAuth("user-001", "trainee"), h.Scan)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if !resp.Success {
		t.Error("期望 success=true")
	}
}

func TestAttendanceHandler_Scan_NoAuth(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/scan", jsonBody(dto.ScanRequest{
		Token: "tok-abc", SessionID: "session-001",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/scan", h.Scan) // 未注入认证上下文
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Reason != response.ReasonNotAuthenticated {
		t.Errorf("期望 reason=NOT_AUTHENTICATED，实际=%s", resp.Reason)
	}
}

func TestAttendanceHandler_Scan_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"场次不存在", service.ErrSessionNotFound, http.StatusNotFound, response.ReasonSessionNotFound},
		{"场次未激活", service.ErrSessionInactive, http.StatusConflict, response.ReasonSessionInactive},
		{"二维码过期", service.ErrQRExpired, http.StatusGone, response.ReasonQRExpired},
		{"Token 不匹配", service.ErrQRTokenMismatch, http.StatusConflict, response.ReasonQRTokenMismatch},
		{"未报名", service.ErrNotEnrolled, http.StatusForbidden, response.ReasonNotEnrolled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{scanErr: tt.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/attendance/scan", jsonBody(dto.ScanRequest{
				Token: "tok-abc", SessionID: "session-001",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/attendance/scan", injectAuth("user-001", "trainee"), h.Scan)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Reason != tt.wantReason {
				t.Errorf("期望 reason=%s，实际=%s", tt.wantReason, resp.Reason)
			}
		})
	}
}

func TestAttendanceHandler_Set_BadJSON(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/attendance", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/attendance", injectAuth("trainer-001", "trainer"), h.Set)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Reason != response.ReasonInvalidPayload {
		t.Errorf("期望 reason=INVALID_PAYLOAD，实际=%s", resp.Reason)
	}
}

// ═══════════════════════════════════════════════════════════
// JoinRequestHandler Tests
// ═══════════════════════════════════════════════════════════

func TestJoinRequestHandler_Process_Success(t *testing.T) {
	mock := &mockJoinRequestService{
		processResult: &dto.ProcessJoinRequestResponse{
			RequestStatus: "approved", Status: "present", AttendanceType: "late",
		},
	}
	h := NewJoinRequestHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/requests/process", jsonBody(dto.ProcessJoinRequestRequest{
		RequestID: "550e8400-e29b-41d4-a716-446655440000", Action: "approve",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/requests/process", injectAuth("trainer-001", "trainer"), h.Process)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
}

func TestJoinRequestHandler_Process_InvalidAction(t *testing.T) {
	h := NewJoinRequestHandler(&mockJoinRequestService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/requests/process", jsonBody(dto.ProcessJoinRequestRequest{
		RequestID: "550e8400-e29b-41d4-a716-446655440000", Action: "maybe",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/requests/process", injectAuth("trainer-001", "trainer"), h.Process)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("action 非法应 400，实际 %d", w.Code)
	}
}

func TestJoinRequestHandler_Process_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"申请不存在", service.ErrRequestNotFound, http.StatusNotFound, response.ReasonRequestNotFound},
		{"重复处理", service.ErrRequestAlreadyProcessed, http.StatusConflict, response.ReasonRequestAlreadyProcessed},
		{"无权审批", service.ErrForbidden, http.StatusForbidden, response.ReasonForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewJoinRequestHandler(&mockJoinRequestService{processErr: tt.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/attendance/requests/process", jsonBody(dto.ProcessJoinRequestRequest{
				RequestID: "550e8400-e29b-41d4-a716-446655440000", Action: "approve",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/attendance/requests/process", injectAuth("trainer-001", "trainer"), h.Process)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Reason != tt.wantReason {
				t.Errorf("期望 reason=%s，实际=%s", tt.wantReason, resp.Reason)
			}
		})
	}
}

func TestJoinRequestHandler_Create_Conflict(t *testing.T) {
	h := NewJoinRequestHandler(&mockJoinRequestService{requestErr: service.ErrRequestAlreadyExists})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/requests", jsonBody(dto.CreateJoinRequestRequest{
		SessionID: "550e8400-e29b-41d4-a716-446655440000",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/requests", injectAuth("user-001", "trainee"), h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("重复申请应 409，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Reason != response.ReasonRequestAlreadyExists {
		t.Errorf("期望 reason=REQUEST_ALREADY_EXISTS，实际=%s", resp.Reason)
	}
}

// [自证通过] internal/api/handler/handler_test.go
