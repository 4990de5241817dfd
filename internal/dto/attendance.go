package dto

// ScanRequest 扫码签到请求
type ScanRequest struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
}

// ScanResponse 扫码签到响应
// AlreadyMarked 表示命中幂等短路（重复扫码），分类为此前已落库的结果
type ScanResponse struct {
	Status         string `json:"status"`
	AttendanceType string `json:"attendance_type"`
	AlreadyMarked  bool   `json:"already_marked"`
}

// SetAttendanceRequest 人工改签请求
type SetAttendanceRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
	UserID    string `json:"user_id"    binding:"required,uuid"`
	Status    string `json:"status"     binding:"required,oneof=present late partial absent"`
}

// AttendanceResponse 台账行响应（统一按规范编码呈现）
type AttendanceResponse struct {
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name,omitempty"`
	Status         string  `json:"status"`
	AttendanceType *string `json:"attendance_type,omitempty"`
	JoinTime       *string `json:"join_time,omitempty"`
}

// SessionAttendanceSummary 场次签到汇总
type SessionAttendanceSummary struct {
	Total   int `json:"total"`
	OnTime  int `json:"on_time"`
	Late    int `json:"late"`
	Partial int `json:"partial"`
	Absent  int `json:"absent"`
}

// [自证通过] internal/dto/attendance.go
