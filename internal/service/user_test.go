package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"edulift/config"
	"edulift/internal/core"
	fluentdRepo "edulift/internal/database/fluentd/repository"
	"edulift/internal/database/mongodb/model"
	"edulift/internal/dto"
	"edulift/internal/mocks"
	cErr "edulift/internal/pkg/error"
	"edulift/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recordingClient 收集送往 Fluentd 的紀錄
type recordingClient struct {
	mu      sync.Mutex
	tags    []string
	records []map[string]any
}

func (r *recordingClient) Post(_ context.Context, tag string, rec map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
	r.records = append(r.records, rec)
	return nil
}
func (r *recordingClient) Tag(suffix string) string { return "test." + suffix }
func (r *recordingClient) Close() error             { return nil }

type fixture struct {
	store   *mocks.UserStore
	audit   *recordingClient
	metric  *telemetry.Metric
	service *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conf := &config.Configuration{}
	conf.Telemetry.Metric.Enabled = true

	store := mocks.NewUserStore(t)
	audit := &recordingClient{}
	metric := telemetry.NewMetricWithRegisterer(conf, prometheus.NewRegistry())
	svc := NewUserService(&telemetry.Trace{}, metric, zap.NewNop(), store, fluentdRepo.NewLogRepository(conf, audit))
	return &fixture{store: store, audit: audit, metric: metric, service: svc}
}

func requireAppError(t *testing.T, err error, httpCode int) *cErr.Error {
	t.Helper()
	var appErr *cErr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, httpCode, appErr.HttpCode())
	return appErr
}

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

func boolPtr(b bool) *bool { return &b }

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	req := &dto.CreateUserDto{
		Roles:     []core.Role{core.RoleStudent},
		Email:     "s@example.com",
		Username:  "student1",
		RiskFlags: []string{"academic_risk"},
	}
	f.store.On("ExistsByUsername", mock.Anything, "student1").Return(false, nil).Once()
	f.store.On("ExistsByEmail", mock.Anything, "s@example.com").Return(false, nil).Once()
	f.store.On("Save", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID.IsZero() && u.Email == "s@example.com" && u.Preferences != nil && u.Preferences.Language == "en"
	})).Return(func(_ context.Context, u *model.User) (*model.User, error) {
		u.ID = primitive.NewObjectID()
		return u, nil
	}).Once()

	ctx := telemetry.WithRequestID(context.Background(), "0199d5c8-6a2e-7c11-9c1e-3f0a8e2b4d10")
	created, err := f.service.CreateUser(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []core.Role{core.RoleStudent}, created.Roles)
	assert.Equal(t, []string{"academic_risk"}, created.RiskFlags)
	assert.False(t, created.CreatedAt.IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metric.UserWriteTotal.WithLabelValues(OpCreate, OutcomeSuccess)))
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, "test."+string(core.FluentdUserAudit), f.audit.tags[0])
	assert.Equal(t, created.ID, f.audit.records[0]["user_id"])
	assert.Equal(t, "0199d5c8-6a2e-7c11-9c1e-3f0a8e2b4d10", f.audit.records[0]["request_id"])
}

func TestCreateUserSkipsUsernameCheckWhenEmpty(t *testing.T) {
	f := newFixture(t)
	f.store.On("ExistsByEmail", mock.Anything, "a@example.com").Return(false, nil).Once()
	f.store.On("Save", mock.Anything, mock.Anything).Return(func(_ context.Context, u *model.User) (*model.User, error) {
		u.ID = primitive.NewObjectID()
		return u, nil
	}).Once()

	_, err := f.service.CreateUser(context.Background(), &dto.CreateUserDto{Roles: []core.Role{core.RoleAdmin}, Email: "a@example.com"})
	require.NoError(t, err)
	f.store.AssertNotCalled(t, "ExistsByUsername", mock.Anything, mock.Anything)
}

func TestCreateUserConflicts(t *testing.T) {
	t.Run("username taken", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil).Once()

		_, err := f.service.CreateUser(context.Background(), &dto.CreateUserDto{Roles: []core.Role{core.RoleStudent}, Email: "x@example.com", Username: "taken"})
		appErr := requireAppError(t, err, http.StatusConflict)
		assert.Equal(t, cErr.CONFLICT, appErr.ErrorCode())
		f.store.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("ExistsByEmail", mock.Anything, "dup@example.com").Return(true, nil).Once()

		_, err := f.service.CreateUser(context.Background(), &dto.CreateUserDto{Roles: []core.Role{core.RoleStudent}, Email: "dup@example.com"})
		requireAppError(t, err, http.StatusConflict)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metric.UserWriteTotal.WithLabelValues(OpCreate, OutcomeConflict)))
	})

	t.Run("race on unique index", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("ExistsByEmail", mock.Anything, "race@example.com").Return(false, nil).Once()
		f.store.On("Save", mock.Anything, mock.Anything).Return(nil, duplicateKeyError()).Once()

		_, err := f.service.CreateUser(context.Background(), &dto.CreateUserDto{Roles: []core.Role{core.RoleStudent}, Email: "race@example.com"})
		requireAppError(t, err, http.StatusConflict)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("ExistsByEmail", mock.Anything, "e@example.com").Return(false, errors.New("socket closed")).Once()

		_, err := f.service.CreateUser(context.Background(), &dto.CreateUserDto{Roles: []core.Role{core.RoleStudent}, Email: "e@example.com"})
		appErr := requireAppError(t, err, http.StatusInternalServerError)
		assert.NotContains(t, appErr.ErrorDesc(), "socket")
	})
}

func TestGetUserByID(t *testing.T) {
	f := newFixture(t)
	existing := model.NewUserWithRoles([]core.Role{core.RoleMentor}, "m@example.com")
	existing.ID = primitive.NewObjectID()
	missing := primitive.NewObjectID()

	f.store.On("FindByID", mock.Anything, existing.ID).Return(existing, true, nil).Once()
	f.store.On("FindByID", mock.Anything, missing).Return(nil, false, nil).Once()

	got, err := f.service.GetUserByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID.Hex(), got.ID)
	assert.Equal(t, "m@example.com", got.Email)

	_, err = f.service.GetUserByID(context.Background(), missing)
	requireAppError(t, err, http.StatusNotFound)
}

func TestUpdateUserOverwritesLegacyFieldsOnly(t *testing.T) {
	f := newFixture(t)
	createdAt := model.Now().Add(-48 * time.Hour)
	existing := model.NewLegacyUser("old", "old@example.com", "Old", "Name")
	existing.ID = primitive.NewObjectID()
	existing.CreatedAt = createdAt
	existing.UpdatedAt = createdAt
	existing.Roles = []core.Role{core.RoleCounselor}
	existing.Profile = model.NewProfile("Keep", "Me")
	existing.ConsentFlags = &model.ConsentFlags{PhotoVideoConsent: true}
	existing.RiskFlags = []string{"attendance"}

	f.store.On("FindByID", mock.Anything, existing.ID).Return(existing, true, nil).Once()
	f.store.On("Save", mock.Anything, mock.Anything).Return(func(_ context.Context, u *model.User) (*model.User, error) {
		return u, nil
	}).Once()

	updated, err := f.service.UpdateUser(context.Background(), existing.ID, &dto.UpdateUserDto{
		Username: "new", Email: "new@example.com", FirstName: "New", LastName: "Person",
	})
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Username)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "Person", updated.LastName)
	assert.True(t, updated.UpdatedAt.After(createdAt))
	assert.True(t, updated.CreatedAt.Equal(createdAt))
	assert.Equal(t, "Keep", updated.Profile.FirstName)
	assert.True(t, updated.ConsentFlags.PhotoVideoConsent)
	assert.Equal(t, []core.Role{core.RoleCounselor}, updated.Roles)
	assert.Equal(t, []string{"attendance"}, updated.RiskFlags)
}

func TestUpdateUserErrors(t *testing.T) {
	f := newFixture(t)
	missing := primitive.NewObjectID()
	f.store.On("FindByID", mock.Anything, missing).Return(nil, false, nil).Once()

	_, err := f.service.UpdateUser(context.Background(), missing, &dto.UpdateUserDto{Email: "a@example.com"})
	requireAppError(t, err, http.StatusNotFound)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	existing := model.NewUser()
	existing.ID = primitive.NewObjectID()
	f.store.On("FindByID", mock.Anything, existing.ID).Return(existing, true, nil).Once()
	f.store.On("Save", mock.Anything, mock.Anything).Return(nil, duplicateKeyError()).Once()

	_, err = f.service.UpdateUser(context.Background(), existing.ID, &dto.UpdateUserDto{Email: "taken@example.com"})
	requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metric.UserWriteTotal.WithLabelValues(OpUpdate, OutcomeConflict)))
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.store.On("ExistsByID", mock.Anything, id).Return(true, nil).Once()
	f.store.On("DeleteByID", mock.Anything, id).Return(nil).Once()
	require.NoError(t, f.service.DeleteUser(context.Background(), id))

	missing := primitive.NewObjectID()
	f.store.On("ExistsByID", mock.Anything, missing).Return(false, nil).Once()
	requireAppError(t, f.service.DeleteUser(context.Background(), missing), http.StatusNotFound)
	f.store.AssertNumberOfCalls(t, "DeleteByID", 1)
}

func TestListUsersDispatch(t *testing.T) {
	users := []*model.User{model.NewUser()}

	cases := []struct {
		name  string
		query dto.UserListQuery
		setup func(s *mocks.UserStore)
	}{
		{"all", dto.UserListQuery{}, func(s *mocks.UserStore) {
			s.On("FindAll", mock.Anything).Return(users, nil).Once()
		}},
		{"single role", dto.UserListQuery{Roles: []core.Role{core.RoleMentor}}, func(s *mocks.UserStore) {
			s.On("FindByRolesContaining", mock.Anything, core.RoleMentor).Return(users, nil).Once()
		}},
		{"many roles", dto.UserListQuery{Roles: []core.Role{core.RoleMentor, core.RoleAdmin}}, func(s *mocks.UserStore) {
			s.On("FindByRolesIn", mock.Anything, []core.Role{core.RoleMentor, core.RoleAdmin}).Return(users, nil).Once()
		}},
		{"group home", dto.UserListQuery{GroupHomeID: "gh"}, func(s *mocks.UserStore) {
			s.On("FindByGroupHomeID", mock.Anything, "gh").Return(users, nil).Once()
		}},
		{"group home and role", dto.UserListQuery{GroupHomeID: "gh", Roles: []core.Role{core.RoleStudent}}, func(s *mocks.UserStore) {
			s.On("FindByGroupHomeIDAndRolesContaining", mock.Anything, "gh", core.RoleStudent).Return(users, nil).Once()
		}},
		{"risk flags", dto.UserListQuery{RiskFlags: []string{"a", "b"}}, func(s *mocks.UserStore) {
			s.On("FindByRiskFlagsIn", mock.Anything, []string{"a", "b"}).Return(users, nil).Once()
		}},
		{"data processing consent", dto.UserListQuery{DataProcessingConsent: boolPtr(false)}, func(s *mocks.UserStore) {
			s.On("FindByDataProcessingConsent", mock.Anything, false).Return(users, nil).Once()
		}},
		{"communication consent", dto.UserListQuery{CommunicationConsent: boolPtr(true)}, func(s *mocks.UserStore) {
			s.On("FindByCommunicationConsent", mock.Anything, true).Return(users, nil).Once()
		}},
		{"language", dto.UserListQuery{Language: "fr"}, func(s *mocks.UserStore) {
			s.On("FindByPreferenceLanguage", mock.Anything, "fr").Return(users, nil).Once()
		}},
		{"email notifications", dto.UserListQuery{EmailNotifications: true}, func(s *mocks.UserStore) {
			s.On("FindUsersWithEmailNotificationsEnabled", mock.Anything).Return(users, nil).Once()
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			tc.setup(f.store)
			got, err := f.service.ListUsers(context.Background(), tc.query)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestListUsersRejectsCombinedFilters(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ListUsers(context.Background(), dto.UserListQuery{Language: "en", RiskFlags: []string{"x"}})
	requireAppError(t, err, http.StatusBadRequest)

	_, err = f.service.ListUsers(context.Background(), dto.UserListQuery{GroupHomeID: "gh", Roles: []core.Role{core.RoleStudent, core.RoleMentor}})
	requireAppError(t, err, http.StatusBadRequest)
}

func TestListUsersEmptyResultIsNotNil(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindByPreferenceLanguage", mock.Anything, "zz").Return([]*model.User{}, nil).Once()

	got, err := f.service.ListUsers(context.Background(), dto.UserListQuery{Language: "zz"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLookupUser(t *testing.T) {
	f := newFixture(t)
	user := model.NewLegacyUser("jdoe", "j@example.com", "", "")
	user.ID = primitive.NewObjectID()
	f.store.On("FindByEmail", mock.Anything, "j@example.com").Return(user, true, nil).Once()
	f.store.On("FindByUsername", mock.Anything, "ghost").Return(nil, false, nil).Once()

	got, err := f.service.LookupUser(context.Background(), "j@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", got.Username)

	_, err = f.service.LookupUser(context.Background(), "", "ghost")
	requireAppError(t, err, http.StatusNotFound)

	_, err = f.service.LookupUser(context.Background(), "", "")
	requireAppError(t, err, http.StatusBadRequest)
	_, err = f.service.LookupUser(context.Background(), "a@b.c", "x")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestGetStats(t *testing.T) {
	f := newFixture(t)
	f.store.On("Count", mock.Anything).Return(int64(7), nil).Once()
	for i, role := range core.Roles() {
		f.store.On("CountByRolesContaining", mock.Anything, role).Return(int64(i+1), nil).Once()
	}
	f.store.On("ExistsByGroupHomeID", mock.Anything, "gh-1").Return(true, nil).Once()
	f.store.On("CountByGroupHomeID", mock.Anything, "gh-1").Return(int64(3), nil).Once()

	stats, err := f.service.GetStats(context.Background(), "gh-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.Total)
	assert.Equal(t, map[string]int64{"student": 1, "mentor": 2, "counselor": 3, "admin": 4}, stats.ByRole)
	require.NotNil(t, stats.GroupHomeExists)
	assert.True(t, *stats.GroupHomeExists)
	assert.Equal(t, int64(3), *stats.GroupHomeCount)
}

func TestGetStatsUnknownGroupHome(t *testing.T) {
	f := newFixture(t)
	f.store.On("Count", mock.Anything).Return(int64(0), nil).Once()
	f.store.On("CountByRolesContaining", mock.Anything, mock.Anything).Return(int64(0), nil).Times(len(core.Roles()))
	f.store.On("ExistsByGroupHomeID", mock.Anything, "nowhere").Return(false, nil).Once()

	stats, err := f.service.GetStats(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.False(t, *stats.GroupHomeExists)
	assert.Equal(t, int64(0), *stats.GroupHomeCount)
	f.store.AssertNotCalled(t, "CountByGroupHomeID", mock.Anything, mock.Anything)
}

func TestCheckHealth(t *testing.T) {
	f := newFixture(t)
	f.store.On("Count", mock.Anything).Return(int64(2), nil).Once()
	n, err := f.service.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	f.store.On("Count", mock.Anything).Return(int64(0), errors.New("no reachable servers")).Once()
	_, err = f.service.CheckHealth(context.Background())
	requireAppError(t, err, http.StatusInternalServerError)
}

func TestHealthService(t *testing.T) {
	store := mocks.NewUserStore(t)
	health := NewHealthService(store)
	assert.True(t, health.IsLive())
	assert.False(t, health.IsReady(context.Background()))

	health.SetReady(true)
	store.On("Ping", mock.Anything).Return(nil).Once()
	assert.True(t, health.IsReady(context.Background()))

	store.On("Ping", mock.Anything).Return(errors.New("down")).Once()
	assert.False(t, health.IsReady(context.Background()))
}
