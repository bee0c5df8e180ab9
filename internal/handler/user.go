package handler

import (
	"net/http"

	"edulift/internal/dto"
	cErr "edulift/internal/pkg/error"
	"edulift/internal/pkg/response"
	"edulift/internal/service"
	"edulift/internal/telemetry"
	"edulift/utils/validate"

	"github.com/gin-gonic/gin"
)

const (
	healthyMessage   = "MongoDB connection is healthy"
	unhealthyMessage = "MongoDB connection failed"
)

type UserHandler struct {
	trace       *telemetry.Trace
	userService *service.UserService
}

func NewUserHandler(trace *telemetry.Trace, userService *service.UserService) *UserHandler {
	return &UserHandler{trace: trace, userService: userService}
}

// List 用戶列表
// @Summary 取得用戶列表
// @Description 一次只能使用一組篩選條件；groupHomeId 可搭配單一 role
// @Tags User
// @Produce json
// @Param role query []string false "角色（可重複）" collectionFormat(multi)
// @Param groupHomeId query string false "Group home"
// @Param riskFlag query []string false "風險標記（可重複）" collectionFormat(multi)
// @Param dataProcessingConsent query bool false "資料處理同意"
// @Param communicationConsent query bool false "通訊同意"
// @Param language query string false "偏好語言"
// @Param emailNotifications query bool false "只接受 true"
// @Success 200 {array} dto.UserResponseDto
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	query, respErr := parseListQuery(c)
	if respErr != nil {
		response.AbortWithError(c, respErr)
		return
	}

	users, err := h.userService.ListUsers(ctx, query)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, users)
}

// Get 取得用戶
// @Summary 取得單一用戶
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponseDto
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, _, respErr := validate.ParseObjectID(c, "id")
	if respErr != nil {
		response.AbortWithError(c, respErr)
		return
	}

	user, err := h.userService.GetUserByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, user)
}

// Lookup 依 email 或 username 查詢
// @Summary 依 email 或 username 查詢用戶
// @Tags User
// @Produce json
// @Param email query string false "Email"
// @Param username query string false "Username"
// @Success 200 {object} dto.UserResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/lookup [get]
func (h *UserHandler) Lookup(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	user, err := h.userService.LookupUser(ctx, c.Query("email"), c.Query("username"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, user)
}

// Create 新增用戶
// @Summary 新增用戶
// @Tags User
// @Accept json
// @Produce json
// @Param body body dto.CreateUserDto true "用戶資訊"
// @Success 201 {object} dto.UserResponseDto
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	var req dto.CreateUserDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.userService.CreateUser(ctx, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Update 更新用戶
// @Summary 更新用戶（username / email / firstName / lastName）
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body dto.UpdateUserDto true "用戶更新資訊"
// @Success 200 {object} dto.UserResponseDto
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, _, respErr := validate.ParseObjectID(c, "id")
	if respErr != nil {
		response.AbortWithError(c, respErr)
		return
	}

	var req dto.UpdateUserDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.userService.UpdateUser(ctx, id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Delete 刪除用戶
// @Summary 刪除用戶
// @Tags User
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, _, respErr := validate.ParseObjectID(c, "id")
	if respErr != nil {
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.userService.DeleteUser(ctx, id); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.NoContent(c)
}

// Stats 用戶統計
// @Summary 總數與各角色人數
// @Tags User
// @Produce json
// @Param groupHomeId query string false "Group home"
// @Success 200 {object} dto.UserStatsDto
// @Failure 500 {object} response.Response
// @Router /api/users/stats [get]
func (h *UserHandler) Stats(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	stats, err := h.userService.GetStats(ctx, c.Query("groupHomeId"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, stats)
}

// Health MongoDB 連線檢查（純文字）
// @Summary MongoDB 連線檢查
// @Tags User
// @Produce plain
// @Success 200 {string} string "MongoDB connection is healthy"
// @Failure 500 {string} string "MongoDB connection failed"
// @Router /api/users/health [get]
func (h *UserHandler) Health(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	if _, err := h.userService.CheckHealth(ctx); err != nil {
		end(err)
		response.Text(c, http.StatusInternalServerError, unhealthyMessage)
		return
	}
	response.Text(c, http.StatusOK, healthyMessage)
}

func parseListQuery(c *gin.Context) (dto.UserListQuery, error) {
	var query dto.UserListQuery
	roles, err := validate.GetRolesQuery(c, "role")
	if err != nil {
		return query, cErr.BadRequestParams(err.Error())
	}
	query.Roles = roles
	query.GroupHomeID = c.Query("groupHomeId")
	query.RiskFlags = validate.GetStringsQuery(c, "riskFlag")
	query.Language = c.Query("language")

	if query.DataProcessingConsent, err = validate.GetBoolQuery(c, "dataProcessingConsent"); err != nil {
		return query, cErr.BadRequestParams("dataProcessingConsent must be true or false")
	}
	if query.CommunicationConsent, err = validate.GetBoolQuery(c, "communicationConsent"); err != nil {
		return query, cErr.BadRequestParams("communicationConsent must be true or false")
	}
	emailNotifications, err := validate.GetBoolQuery(c, "emailNotifications")
	if err != nil || (emailNotifications != nil && !*emailNotifications) {
		return query, cErr.BadRequestParams("emailNotifications only supports true")
	}
	query.EmailNotifications = emailNotifications != nil
	return query, nil
}
