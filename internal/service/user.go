package service

import (
	"context"

	"edulift/internal/core"
	fluentdModel "edulift/internal/database/fluentd/model"
	fluentdRepo "edulift/internal/database/fluentd/repository"
	"edulift/internal/database/mongodb/model"
	"edulift/internal/dto"
	cErr "edulift/internal/pkg/error"
	"edulift/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// UserStore users collection 的存取介面，由 repository.UserRepository 實作
type UserStore interface {
	Save(ctx context.Context, user *model.User) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, bool, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	ExistsByID(ctx context.Context, id primitive.ObjectID) (bool, error)
	Count(ctx context.Context) (int64, error)

	FindByUsername(ctx context.Context, username string) (*model.User, bool, error)
	FindByEmail(ctx context.Context, email string) (*model.User, bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	FindByRolesContaining(ctx context.Context, role core.Role) ([]*model.User, error)
	FindByGroupHomeID(ctx context.Context, groupHomeID string) ([]*model.User, error)
	FindByGroupHomeIDAndRolesContaining(ctx context.Context, groupHomeID string, role core.Role) ([]*model.User, error)
	FindByRiskFlagsIn(ctx context.Context, riskFlags []string) ([]*model.User, error)
	FindByRolesIn(ctx context.Context, roles []core.Role) ([]*model.User, error)
	ExistsByGroupHomeID(ctx context.Context, groupHomeID string) (bool, error)
	CountByRolesContaining(ctx context.Context, role core.Role) (int64, error)
	CountByGroupHomeID(ctx context.Context, groupHomeID string) (int64, error)
	FindByDataProcessingConsent(ctx context.Context, consent bool) ([]*model.User, error)
	FindByCommunicationConsent(ctx context.Context, consent bool) ([]*model.User, error)
	FindByPreferenceLanguage(ctx context.Context, language string) ([]*model.User, error)
	FindUsersWithEmailNotificationsEnabled(ctx context.Context) ([]*model.User, error)

	Ping(ctx context.Context) error
}

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"

	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type UserService struct {
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	logger   *zap.Logger
	store    UserStore
	auditLog *fluentdRepo.LogRepository
}

func NewUserService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	store UserStore,
	auditLog *fluentdRepo.LogRepository,
) *UserService {
	return &UserService{trace: trace, metric: metric, logger: logger, store: store, auditLog: auditLog}
}

// 列舉用戶，依篩選條件選擇對應的 finder
func (s *UserService) ListUsers(ctx context.Context, query dto.UserListQuery) (_ []*dto.UserResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meta := core.TraceUserQueryMeta{
		Op:          "list",
		Roles:       rolesToStrings(query.Roles),
		GroupHomeID: query.GroupHomeID,
		RiskFlags:   query.RiskFlags,
	}

	families := 0
	if len(query.Roles) > 0 || query.GroupHomeID != "" {
		families++
	}
	if len(query.RiskFlags) > 0 {
		families++
	}
	if query.DataProcessingConsent != nil {
		families++
	}
	if query.CommunicationConsent != nil {
		families++
	}
	if query.Language != "" {
		families++
	}
	if query.EmailNotifications {
		families++
	}
	if families > 1 {
		return nil, cErr.BadRequestParams("only one filter may be used at a time")
	}

	var (
		users []*model.User
		err   error
	)
	switch {
	case query.GroupHomeID != "" && len(query.Roles) == 1:
		meta.Op = "findByGroupHomeIdAndRolesContaining"
		users, err = s.store.FindByGroupHomeIDAndRolesContaining(ctx, query.GroupHomeID, query.Roles[0])
	case query.GroupHomeID != "" && len(query.Roles) > 1:
		return nil, cErr.BadRequestParams("groupHomeId can be combined with a single role only")
	case query.GroupHomeID != "":
		meta.Op = "findByGroupHomeId"
		users, err = s.store.FindByGroupHomeID(ctx, query.GroupHomeID)
	case len(query.Roles) == 1:
		meta.Op = "findByRolesContaining"
		users, err = s.store.FindByRolesContaining(ctx, query.Roles[0])
	case len(query.Roles) > 1:
		meta.Op = "findByRolesIn"
		users, err = s.store.FindByRolesIn(ctx, query.Roles)
	case len(query.RiskFlags) > 0:
		meta.Op = "findByRiskFlagsIn"
		users, err = s.store.FindByRiskFlagsIn(ctx, query.RiskFlags)
	case query.DataProcessingConsent != nil:
		meta.Op = "findByDataProcessingConsent"
		users, err = s.store.FindByDataProcessingConsent(ctx, *query.DataProcessingConsent)
	case query.CommunicationConsent != nil:
		meta.Op = "findByCommunicationConsent"
		users, err = s.store.FindByCommunicationConsent(ctx, *query.CommunicationConsent)
	case query.Language != "":
		meta.Op = "findByPreferenceLanguage"
		users, err = s.store.FindByPreferenceLanguage(ctx, query.Language)
	case query.EmailNotifications:
		meta.Op = "findUsersWithEmailNotificationsEnabled"
		users, err = s.store.FindUsersWithEmailNotificationsEnabled(ctx)
	default:
		users, err = s.store.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error("list users failed", zap.String("op", meta.Op), zap.Error(err))
		return nil, cErr.DatabaseError("database ListUsers error")
	}

	meta.ResultCount = len(users)
	s.trace.ApplyTraceAttributes(span, meta)

	resp := make([]*dto.UserResponseDto, len(users))
	for i, u := range users {
		resp[i] = modelToUserResponseDto(u)
	}
	return resp, nil
}

// 依 id 查詢
func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (_ *dto.UserResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	s.trace.ApplyTraceAttributes(span, core.TraceUserQueryMeta{Op: "findById", UserID: id.Hex()})

	user, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("find user failed", zap.String("id", id.Hex()), zap.Error(err))
		return nil, cErr.DatabaseError("database GetUserByID error")
	}
	if !found {
		return nil, cErr.NotFound("user not found")
	}
	return modelToUserResponseDto(user), nil
}

// 依 email 或 username 查詢（兩者擇一，email 優先）
func (s *UserService) LookupUser(ctx context.Context, email, username string) (_ *dto.UserResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	var (
		user  *model.User
		found bool
		err   error
	)
	switch {
	case email != "" && username != "":
		return nil, cErr.BadRequestParams("use either email or username, not both")
	case email != "":
		s.trace.ApplyTraceAttributes(span, core.TraceUserQueryMeta{Op: "findByEmail"})
		user, found, err = s.store.FindByEmail(ctx, email)
	case username != "":
		s.trace.ApplyTraceAttributes(span, core.TraceUserQueryMeta{Op: "findByUsername"})
		user, found, err = s.store.FindByUsername(ctx, username)
	default:
		return nil, cErr.BadRequestParams("email or username is required")
	}
	if err != nil {
		s.logger.Error("lookup user failed", zap.Error(err))
		return nil, cErr.DatabaseError("database LookupUser error")
	}
	if !found {
		return nil, cErr.NotFound("user not found")
	}
	return modelToUserResponseDto(user), nil
}

// 新增用戶：先檢查 username / email 是否重複，最後仍以 unique index 為準
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserDto) (_ *dto.UserResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	outcome := OutcomeSuccess
	var userID string
	defer func() {
		s.recordWrite(ctx, span, OpCreate, userID, outcome)
		end(returnedError)
	}()

	if req.Username != "" {
		exists, err := s.store.ExistsByUsername(ctx, req.Username)
		if err != nil {
			outcome = OutcomeError
			s.logger.Error("check username failed", zap.Error(err))
			return nil, cErr.DatabaseError("database CreateUser error")
		}
		if exists {
			outcome = OutcomeConflict
			return nil, cErr.Conflict("username already exists")
		}
	}
	exists, err := s.store.ExistsByEmail(ctx, req.Email)
	if err != nil {
		outcome = OutcomeError
		s.logger.Error("check email failed", zap.Error(err))
		return nil, cErr.DatabaseError("database CreateUser error")
	}
	if exists {
		outcome = OutcomeConflict
		return nil, cErr.Conflict("email already exists")
	}

	user := createDtoToModel(req)
	created, err := s.store.Save(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			outcome = OutcomeConflict
			return nil, cErr.Conflict("username or email already exists")
		}
		outcome = OutcomeError
		s.logger.Error("save user failed", zap.Error(err))
		return nil, cErr.DatabaseError("database CreateUser error")
	}
	userID = created.ID.Hex()
	return modelToUserResponseDto(created), nil
}

// 更新用戶：只覆寫 username / email / firstName / lastName，並刷新 updatedAt
func (s *UserService) UpdateUser(ctx context.Context, id primitive.ObjectID, req *dto.UpdateUserDto) (_ *dto.UserResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	outcome := OutcomeSuccess
	defer func() {
		s.recordWrite(ctx, span, OpUpdate, id.Hex(), outcome)
		end(returnedError)
	}()

	user, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		outcome = OutcomeError
		s.logger.Error("find user failed", zap.String("id", id.Hex()), zap.Error(err))
		return nil, cErr.DatabaseError("database UpdateUser error")
	}
	if !found {
		outcome = OutcomeNotFound
		return nil, cErr.NotFound("user not found")
	}

	user.Username = req.Username
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.UpdatedAt = model.Now()

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			outcome = OutcomeConflict
			return nil, cErr.Conflict("username or email already exists")
		}
		outcome = OutcomeError
		s.logger.Error("save user failed", zap.String("id", id.Hex()), zap.Error(err))
		return nil, cErr.DatabaseError("database UpdateUser error")
	}
	return modelToUserResponseDto(saved), nil
}

// 刪除用戶
func (s *UserService) DeleteUser(ctx context.Context, id primitive.ObjectID) (returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	outcome := OutcomeSuccess
	defer func() {
		s.recordWrite(ctx, span, OpDelete, id.Hex(), outcome)
		end(returnedError)
	}()

	exists, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		outcome = OutcomeError
		s.logger.Error("check user failed", zap.String("id", id.Hex()), zap.Error(err))
		return cErr.DatabaseError("database DeleteUser error")
	}
	if !exists {
		outcome = OutcomeNotFound
		return cErr.NotFound("user not found")
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		outcome = OutcomeError
		s.logger.Error("delete user failed", zap.String("id", id.Hex()), zap.Error(err))
		return cErr.DatabaseError("database DeleteUser error")
	}
	return nil
}

// CheckHealth 以 count 確認資料庫可用
func (s *UserService) CheckHealth(ctx context.Context) (count int64, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	count, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Error("mongodb health check failed", zap.Error(err))
		return 0, cErr.DatabaseError("database health check error")
	}
	return count, nil
}

// GetStats 總數、各角色人數；有 groupHomeID 時附上該 group home 的人數
func (s *UserService) GetStats(ctx context.Context, groupHomeID string) (_ *dto.UserStatsDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	s.trace.ApplyTraceAttributes(span, core.TraceUserQueryMeta{Op: "stats", GroupHomeID: groupHomeID})

	total, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Error("count users failed", zap.Error(err))
		return nil, cErr.DatabaseError("database GetStats error")
	}
	stats := &dto.UserStatsDto{Total: total, ByRole: make(map[string]int64, len(core.Roles()))}
	for _, role := range core.Roles() {
		n, err := s.store.CountByRolesContaining(ctx, role)
		if err != nil {
			s.logger.Error("count users by role failed", zap.String("role", role.String()), zap.Error(err))
			return nil, cErr.DatabaseError("database GetStats error")
		}
		stats.ByRole[role.String()] = n
	}

	if groupHomeID != "" {
		exists, err := s.store.ExistsByGroupHomeID(ctx, groupHomeID)
		if err != nil {
			s.logger.Error("check group home failed", zap.Error(err))
			return nil, cErr.DatabaseError("database GetStats error")
		}
		var count int64
		if exists {
			if count, err = s.store.CountByGroupHomeID(ctx, groupHomeID); err != nil {
				s.logger.Error("count group home failed", zap.Error(err))
				return nil, cErr.DatabaseError("database GetStats error")
			}
		}
		stats.GroupHomeID = groupHomeID
		stats.GroupHomeExists = &exists
		stats.GroupHomeCount = &count
	}
	return stats, nil
}

// recordWrite 寫入結果同時進 trace / metric / fluentd，fluentd 失敗只記 log
func (s *UserService) recordWrite(ctx context.Context, span oteltrace.Span, op, userID, outcome string) {
	s.trace.ApplyTraceAttributes(span, core.TraceUserWriteMeta{Op: op, UserID: userID, Outcome: outcome})
	s.metric.IncUserWrite(op, outcome)
	if s.auditLog == nil {
		return
	}
	if err := s.auditLog.LogUserWrite(ctx, fluentdModel.UserAuditLog{
		RequestID: telemetry.RequestIDFromContext(ctx),
		Operation: op,
		UserID:    userID,
		Outcome:   outcome,
	}); err != nil {
		s.logger.Warn("send user audit log failed", zap.String("op", op), zap.Error(err))
	}
}

func createDtoToModel(req *dto.CreateUserDto) *model.User {
	user := model.NewUser()
	user.Roles = req.Roles
	user.GroupHomeID = req.GroupHomeID
	user.Profile = req.Profile
	user.ConsentFlags = req.ConsentFlags
	if req.Preferences != nil {
		user.Preferences = req.Preferences
	}
	user.RiskFlags = req.RiskFlags
	user.Username = req.Username
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	return user
}

func modelToUserResponseDto(m *model.User) *dto.UserResponseDto {
	return &dto.UserResponseDto{
		ID:           m.ID.Hex(),
		Roles:        m.Roles,
		GroupHomeID:  m.GroupHomeID,
		Profile:      m.Profile,
		ConsentFlags: m.ConsentFlags,
		Preferences:  m.Preferences,
		RiskFlags:    m.RiskFlags,
		CreatedAt:    m.CreatedAt,
		Username:     m.Username,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		UpdatedAt:    m.UpdatedAt,
	}
}

func rolesToStrings(roles []core.Role) []string {
	if len(roles) == 0 {
		return nil
	}
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}
