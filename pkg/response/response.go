package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构（与 API 文档约定一致）
// 失败时 Reason 为稳定的机器可读错误码，调用方据此分支而非匹配 Message 文案
type Response struct {
	Success bool        `json:"success"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "success",
		Data:    data,
	})
}

// OKMessage 200 成功响应（自定义文案）
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: "success",
		Data:    data,
	})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "success",
		Data: PageData{
			List: list,
			Pagination: Pagination{
				Page:       page,
				PageSize:   pageSize,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, reason, message string) {
	c.JSON(httpStatus, Response{
		Success: false,
		Reason:  reason,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, reason, message, details string) {
	c.JSON(httpStatus, Response{
		Success: false,
		Reason:  reason,
		Message: message,
		Details: details,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, reason, message string) {
	Error(c, http.StatusBadRequest, reason, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, reason, message string) {
	Error(c, http.StatusUnauthorized, reason, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, reason, message string) {
	Error(c, http.StatusForbidden, reason, message)
}

// NotFound 404
func NotFound(c *gin.Context, reason, message string) {
	Error(c, http.StatusNotFound, reason, message)
}

// Conflict 409
func Conflict(c *gin.Context, reason, message string) {
	Error(c, http.StatusConflict, reason, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, ReasonInternalError, "服务器内部错误")
}

// [自证通过] pkg/response/response.go
