package repository

import (
	"context"

	"gorm.io/gorm"

	"traintrack/backend/internal/model"
)

// JoinRequestRepository 补签申请数据访问接口
type JoinRequestRepository interface {
	// Create 插入申请；(session_id, user_id) 已存在时返回唯一约束冲突错误
	Create(ctx context.Context, request *model.JoinRequest) error
	GetByID(ctx context.Context, id string) (*model.JoinRequest, error)
	GetBySessionUser(ctx context.Context, sessionID, userID string) (*model.JoinRequest, error)
	ListBySession(ctx context.Context, sessionID, status string) ([]model.JoinRequest, error)
	Update(ctx context.Context, request *model.JoinRequest) error
}

// joinRequestRepo JoinRequestRepository 的 GORM 实现
type joinRequestRepo struct {
	db *gorm.DB
}

// NewJoinRequestRepo 创建 JoinRequestRepository 实例
func NewJoinRequestRepo(db *gorm.DB) JoinRequestRepository {
	return &joinRequestRepo{db: db}
}

func (r *joinRequestRepo) Create(ctx context.Context, request *model.JoinRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *joinRequestRepo) GetByID(ctx context.Context, id string) (*model.JoinRequest, error) {
	var request model.JoinRequest
	err := r.db.WithContext(ctx).
		Preload("Session").
		Preload("User").
		Where("request_id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *joinRequestRepo) GetBySessionUser(ctx context.Context, sessionID, userID string) (*model.JoinRequest, error) {
	var request model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *joinRequestRepo) ListBySession(ctx context.Context, sessionID, status string) ([]model.JoinRequest, error) {
	var requests []model.JoinRequest
	db := r.db.WithContext(ctx).
		Preload("User").
		Where("session_id = ?", sessionID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Order("requested_at ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *joinRequestRepo) Update(ctx context.Context, request *model.JoinRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// [自证通过] internal/repository/join_request_repo.go
