package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edulift/internal/core"
	"edulift/internal/dto"
	cErr "edulift/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method, target, body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestParseObjectID(t *testing.T) {
	c := newContext(http.MethodGet, "/api/users/x", "")
	c.Params = gin.Params{{Key: "id", Value: "not-a-hex-id"}}

	_, cause, responseErr := ParseObjectID(c, "id")
	require.Error(t, cause)
	var appErr *cErr.Error
	require.ErrorAs(t, responseErr, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.HttpCode())

	c.Params = gin.Params{{Key: "id", Value: "65f1c2a4b5d6e7f8a9b0c1d2"}}
	id, cause, responseErr := ParseObjectID(c, "id")
	assert.NoError(t, cause)
	assert.NoError(t, responseErr)
	assert.Equal(t, "65f1c2a4b5d6e7f8a9b0c1d2", id.Hex())
}

func TestBindAndValidate(t *testing.T) {
	t.Run("custom message", func(t *testing.T) {
		c := newContext(http.MethodPost, "/api/users", `{"roles":["student"],"email":"not-an-email"}`)
		var req dto.CreateUserDto
		cause, responseErr := BindAndValidate(c, &req)
		require.Error(t, cause)
		var appErr *cErr.Error
		require.ErrorAs(t, responseErr, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.HttpCode())
		assert.Equal(t, "email must be a valid email address", appErr.ErrorDesc())
	})

	t.Run("empty roles", func(t *testing.T) {
		c := newContext(http.MethodPost, "/api/users", `{"roles":[],"email":"a@b.co"}`)
		var req dto.CreateUserDto
		_, responseErr := BindAndValidate(c, &req)
		var appErr *cErr.Error
		require.ErrorAs(t, responseErr, &appErr)
		assert.Equal(t, "roles must contain at least one role", appErr.ErrorDesc())
	})

	t.Run("unknown role", func(t *testing.T) {
		c := newContext(http.MethodPost, "/api/users", `{"roles":["janitor"],"email":"a@b.co"}`)
		var req dto.CreateUserDto
		_, responseErr := BindAndValidate(c, &req)
		var appErr *cErr.Error
		require.ErrorAs(t, responseErr, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.HttpCode())
	})

	t.Run("valid", func(t *testing.T) {
		c := newContext(http.MethodPost, "/api/users", `{"roles":["student","mentor"],"email":"a@b.co","preferences":{"language":"es"}}`)
		var req dto.CreateUserDto
		cause, responseErr := BindAndValidate(c, &req)
		require.NoError(t, cause)
		require.NoError(t, responseErr)
		assert.Equal(t, []core.Role{core.RoleStudent, core.RoleMentor}, req.Roles)
		assert.Equal(t, "es", req.Preferences.Language)
		assert.True(t, req.Preferences.EmailNotifications)
	})
}

func TestQueryHelpers(t *testing.T) {
	c := newContext(http.MethodGet, "/api/users?role=student,mentor&role=admin&riskFlag=a&riskFlag=%20b%20,&consent=true&bad=maybe", "")

	roles, err := GetRolesQuery(c, "role")
	require.NoError(t, err)
	assert.Equal(t, []core.Role{core.RoleStudent, core.RoleMentor, core.RoleAdmin}, roles)

	assert.Equal(t, []string{"a", "b"}, GetStringsQuery(c, "riskFlag"))

	consent, err := GetBoolQuery(c, "consent")
	require.NoError(t, err)
	require.NotNil(t, consent)
	assert.True(t, *consent)

	missing, err := GetBoolQuery(c, "absent")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = GetBoolQuery(c, "bad")
	assert.Error(t, err)

	bad := newContext(http.MethodGet, "/api/users?role=janitor", "")
	_, err = GetRolesQuery(bad, "role")
	assert.Error(t, err)
}
