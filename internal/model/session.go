package model

import "time"

// 场次生命周期状态（线性，一旦离开不再回头）
const (
	SessionScheduled = "scheduled"
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// sessionTransitions 合法状态迁移表
// scheduled → active | cancelled；active → completed | cancelled
var sessionTransitions = map[string][]string{
	SessionScheduled: {SessionActive, SessionCancelled},
	SessionActive:    {SessionCompleted, SessionCancelled},
	SessionCompleted: {},
	SessionCancelled: {},
}

// CanTransition 校验场次状态迁移是否合法
func CanTransition(from, to string) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TrainingSession 培训场次表 — 对应 training_sessions
type TrainingSession struct {
	SessionID               string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	TrainingID              string     `gorm:"type:uuid;not null"                             json:"training_id"`
	TrainerID               *string    `gorm:"type:uuid"                                      json:"trainer_id,omitempty"`
	Title                   string     `gorm:"type:varchar(200);not null"                     json:"title"`
	ScheduledDate           time.Time  `gorm:"type:date;not null"                             json:"scheduled_date"`
	StartTime               string     `gorm:"type:varchar(5);not null"                       json:"start_time"` // HH:MM 墙钟时间
	EndTime                 string     `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Status                  string     `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	ActualStartTime         *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime           *time.Time `json:"actual_end_time,omitempty"`
	QRToken                 *string    `gorm:"type:varchar(64)"                               json:"-"`
	QRExpiresAt             *time.Time `json:"qr_expires_at,omitempty"`
	LateThresholdMinutes    int        `gorm:"type:smallint;not null;default:15"              json:"late_threshold_minutes"`
	PartialThresholdMinutes int        `gorm:"type:smallint;not null;default:30"              json:"partial_threshold_minutes"`
	BaseModel

	// 关联
	Training *Training `gorm:"foreignKey:TrainingID;references:TrainingID" json:"training,omitempty"`
	Trainer  *User     `gorm:"foreignKey:TrainerID;references:UserID"      json:"trainer,omitempty"`
}

// TableName 指定表名
func (TrainingSession) TableName() string { return "training_sessions" }

// SessionParticipant 场次报名表 — 对应 session_participants
// (session_id, user_id) 唯一
type SessionParticipant struct {
	ParticipantID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participant_id"`
	SessionID     string    `gorm:"type:uuid;not null;uniqueIndex:uq_participants_session_user" json:"session_id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:uq_participants_session_user" json:"user_id"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy     *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (SessionParticipant) TableName() string { return "session_participants" }

// [自证通过] internal/model/session.go
