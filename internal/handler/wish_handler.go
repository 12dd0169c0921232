package handler

import (
	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/internal/middleware"
	"github.com/ewhamarket/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// WishHandler 찜하기 핸들러
type WishHandler struct {
	service service.WishService
}

// NewWishHandler 생성자
func NewWishHandler(service service.WishService) *WishHandler {
	return &WishHandler{service: service}
}

// SetWishRequest 찜 상태 지정 요청
type SetWishRequest struct {
	Liked *bool `json:"liked" form:"liked" validate:"required"`
}

// GetWishStatus godoc
// @Summary 찜 상태 조회
// @Tags wishes
// @Param title path string true "상품명"
// @Success 200 {object} common.Response
// @Router /api/items/{title}/like [get]
func (h *WishHandler) GetWishStatus(c *gin.Context) {
	common.Success(c, h.service.Status(c.Request.Context(), c.Param("title"), middleware.GetUserID(c)))
}

// ToggleWish godoc
// @Summary 찜하기 토글
// @Tags wishes
// @Param title path string true "상품명"
// @Success 200 {object} common.Response
// @Router /api/items/{title}/like [post]
func (h *WishHandler) ToggleWish(c *gin.Context) {
	status, err := h.service.Toggle(c.Request.Context(), c.Param("title"), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err, "Failed to toggle like")
		return
	}
	common.Success(c, status)
}

// SetWish godoc
// @Summary 찜 상태 지정
// @Tags wishes
// @Param title path string true "상품명"
// @Param body body SetWishRequest true "찜 여부"
// @Success 200 {object} common.Response
// @Router /api/items/{title}/like [put]
func (h *WishHandler) SetWish(c *gin.Context) {
	var req SetWishRequest
	if !bindForm(c, &req) {
		return
	}

	status, err := h.service.Set(c.Request.Context(), c.Param("title"), middleware.GetUserID(c), *req.Liked)
	if err != nil {
		handleServiceError(c, err, "Failed to update like")
		return
	}
	common.Success(c, status)
}

// MyWishes godoc
// @Summary 내 찜 목록
// @Tags mypage
// @Success 200 {object} common.Response
// @Router /api/my/likes [get]
func (h *WishHandler) MyWishes(c *gin.Context) {
	common.Success(c, h.service.ListLiked(c.Request.Context(), middleware.GetUserID(c)))
}
