package dto

// CreateTrainingRequest 创建培训项目请求
type CreateTrainingRequest struct {
	Title       string `json:"title"       binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// UpdateTrainingRequest 更新培训项目请求
type UpdateTrainingRequest struct {
	Title       *string `json:"title"       binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// TrainingResponse 培训项目响应
type TrainingResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	SessionCount int    `json:"session_count"`
	CreatedAt    string `json:"created_at"`
}

// [自证通过] internal/dto/training.go
