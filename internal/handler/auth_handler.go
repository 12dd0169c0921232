package handler

import (
	"net/http"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/internal/domain"
	"github.com/ewhamarket/backend/internal/middleware"
	"github.com/ewhamarket/backend/internal/service"
	"github.com/ewhamarket/backend/pkg/jwt"
	"github.com/ewhamarket/backend/pkg/storage"
	"github.com/ewhamarket/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup, login and profile endpoints
type AuthHandler struct {
	service  service.AuthService
	sessions *jwt.Manager
	images   storage.Storage
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService, sessions *jwt.Manager, images storage.Storage) *AuthHandler {
	return &AuthHandler{service: service, sessions: sessions, images: images}
}

// CheckID godoc
// @Summary 아이디 중복 확인
// @Tags auth
// @Param id query string true "아이디"
// @Success 200 {object} common.Response
// @Router /api/check_userid [get]
func (h *AuthHandler) CheckID(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "id is required", nil)
		return
	}
	common.Success(c, gin.H{"available": h.service.CheckID(c.Request.Context(), id)})
}

// Signup godoc
// @Summary 회원가입
// @Tags auth
// @Param body body domain.SignupForm true "가입 정보"
// @Success 201 {object} common.Response
// @Router /api/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req domain.SignupForm
	if !bindForm(c, &req) {
		return
	}

	if err := h.service.Signup(c.Request.Context(), &req); err != nil {
		handleServiceError(c, err, "Failed to sign up")
		return
	}

	logger.GetLogger().Info().Str("user_id", req.ID).Msg("user signed up")
	common.Created(c, gin.H{"id": req.ID})
}

// Login godoc
// @Summary 로그인
// @Tags auth
// @Param body body domain.LoginForm true "로그인 정보"
// @Success 200 {object} common.Response
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginForm
	if !bindForm(c, &req) {
		return
	}

	if err := h.service.Login(c.Request.Context(), &req); err != nil {
		handleServiceError(c, err, "Failed to log in")
		return
	}

	token, err := middleware.StartSession(c, h.sessions, req.ID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to start session", err)
		return
	}
	common.Success(c, gin.H{"id": req.ID, "token": token})
}

// Logout godoc
// @Summary 로그아웃
// @Tags auth
// @Success 200 {object} common.Response
// @Router /api/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSession(c)
	common.SuccessMessage(c, "logged out")
}

// GetMe godoc
// @Summary 내 정보
// @Tags auth
// @Success 200 {object} common.Response
// @Router /api/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	me, err := h.service.GetMe(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err, "Failed to load profile")
		return
	}
	common.Success(c, me)
}

// UpdateMe godoc
// @Summary 회원정보 수정
// @Tags auth
// @Param body body domain.UserInfoForm true "수정 정보"
// @Success 200 {object} common.Response
// @Router /api/me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req domain.UserInfoForm
	if !bindForm(c, &req) {
		return
	}

	if err := h.service.UpdateInfo(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		handleServiceError(c, err, "Failed to update profile")
		return
	}
	common.SuccessMessage(c, "profile updated")
}

// UploadProfileImage godoc
// @Summary 프로필 이미지 변경
// @Tags auth
// @Accept multipart/form-data
// @Param file formData file true "이미지"
// @Success 200 {object} common.Response
// @Router /api/me/profile_image [post]
func (h *AuthHandler) UploadProfileImage(c *gin.Context) {
	imgPath, err := saveUpload(c, h.images)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to save image", err)
		return
	}
	if imgPath == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required", nil)
		return
	}

	if err := h.service.UpdateProfileImage(c.Request.Context(), middleware.GetUserID(c), imgPath); err != nil {
		handleServiceError(c, err, "Failed to update profile image")
		return
	}
	common.Success(c, gin.H{"profile_img": imgPath})
}
