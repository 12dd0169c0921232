package handler

import (
	"net/http"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/internal/domain"
	"github.com/ewhamarket/backend/internal/middleware"
	"github.com/ewhamarket/backend/internal/service"
	"github.com/ewhamarket/backend/pkg/ginutil"
	"github.com/ewhamarket/backend/pkg/storage"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	service service.ReviewService
	images  storage.Storage
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(service service.ReviewService, images storage.Storage) *ReviewHandler {
	return &ReviewHandler{service: service, images: images}
}

// ListReviews godoc
// @Summary 리뷰 목록
// @Tags reviews
// @Param page query int false "페이지" default(1)
// @Param per_page query int false "페이지당 항목" default(12)
// @Success 200 {object} common.Response
// @Router /api/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	page, perPage := ginutil.PageParams(c, service.DefaultPerPage)
	reviews, meta := h.service.List(c.Request.Context(), page, perPage)
	common.SuccessWithMeta(c, reviews, meta)
}

// GetReview godoc
// @Summary 리뷰 상세
// @Tags reviews
// @Param key path string true "리뷰 키 (<상품명>_<작성자>)"
// @Success 200 {object} common.Response
// @Router /api/reviews/{key} [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		handleServiceError(c, err, "Failed to load review")
		return
	}
	common.Success(c, review)
}

// ListItemReviews godoc
// @Summary 상품별 리뷰
// @Tags reviews
// @Param title path string true "상품명"
// @Success 200 {object} common.Response
// @Router /api/items/{title}/reviews [get]
func (h *ReviewHandler) ListItemReviews(c *gin.Context) {
	common.Success(c, h.service.ListByItem(c.Request.Context(), c.Param("title")))
}

// WriteReview godoc
// @Summary 리뷰 작성 (구매자만)
// @Tags reviews
// @Accept multipart/form-data
// @Param title path string true "상품명"
// @Param file formData file false "리뷰 이미지"
// @Success 201 {object} common.Response
// @Router /api/items/{title}/reviews [post]
func (h *ReviewHandler) WriteReview(c *gin.Context) {
	var req domain.ReviewForm
	if !bindForm(c, &req) {
		return
	}

	imgPath, err := saveUpload(c, h.images)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to save image", err)
		return
	}

	key, err := h.service.Write(c.Request.Context(), c.Param("title"), middleware.GetUserID(c), &req, imgPath)
	if err != nil {
		handleServiceError(c, err, "Failed to write review")
		return
	}
	common.Created(c, gin.H{"key": key})
}

// MyReviews godoc
// @Summary 내가 쓴 리뷰
// @Tags mypage
// @Success 200 {object} common.Response
// @Router /api/my/reviews [get]
func (h *ReviewHandler) MyReviews(c *gin.Context) {
	common.Success(c, h.service.ListByWriter(c.Request.Context(), middleware.GetUserID(c)))
}
