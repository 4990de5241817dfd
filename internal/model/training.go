package model

// Training 培训项目表 — 对应 trainings
type Training struct {
	TrainingID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"training_id"`
	Title       string `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string `gorm:"type:varchar(1000)"                             json:"description,omitempty"`
	BaseModel

	// 关联
	Sessions []TrainingSession `gorm:"foreignKey:TrainingID" json:"sessions,omitempty"`
}

// TableName 指定表名
func (Training) TableName() string { return "trainings" }

// [自证通过] internal/model/training.go
