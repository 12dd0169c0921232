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

// ItemHandler handles item endpoints
type ItemHandler struct {
	service service.ItemService
	images  storage.Storage
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(service service.ItemService, images storage.Storage) *ItemHandler {
	return &ItemHandler{service: service, images: images}
}

// ListItems godoc
// @Summary 상품 목록
// @Tags items
// @Param page query int false "페이지" default(1)
// @Param per_page query int false "페이지당 항목" default(12)
// @Param category query string false "카테고리 필터"
// @Param keyword query string false "검색 키워드"
// @Success 200 {object} common.Response
// @Router /api/items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	page, perPage := ginutil.PageParams(c, service.DefaultPerPage)
	items, meta := h.service.List(c.Request.Context(), &domain.ItemListParams{
		Page:     page,
		PerPage:  perPage,
		Category: c.Query("category"),
		Keyword:  c.Query("keyword"),
	})
	common.SuccessWithMeta(c, items, meta)
}

// GetItem godoc
// @Summary 상품 상세
// @Tags items
// @Param title path string true "상품명"
// @Success 200 {object} common.Response
// @Router /api/items/{title} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("title"), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err, "Failed to load item")
		return
	}
	common.Success(c, gin.H{
		"item":       detail,
		"trade_text": domain.GetTradeText(detail.TradeMethod),
	})
}

// CreateItem godoc
// @Summary 상품 등록
// @Tags items
// @Accept multipart/form-data
// @Param file formData file false "상품 이미지"
// @Success 201 {object} common.Response
// @Router /api/items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req domain.ItemForm
	if !bindForm(c, &req) {
		return
	}

	imgPath, err := saveUpload(c, h.images)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to save image", err)
		return
	}

	key, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), &req, imgPath)
	if err != nil {
		handleServiceError(c, err, "Failed to create item")
		return
	}
	common.Created(c, gin.H{"key": key, "img_path": imgPath})
}

// UpdateItem godoc
// @Summary 상품 수정 (작성자만)
// @Tags items
// @Param title path string true "상품명"
// @Success 200 {object} common.Response
// @Router /api/items/{title} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	var req domain.ItemForm
	if !bindForm(c, &req) {
		return
	}

	imgPath, err := saveUpload(c, h.images)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to save image", err)
		return
	}

	key, err := h.service.Update(c.Request.Context(), c.Param("title"), middleware.GetUserID(c), &req, imgPath)
	if err != nil {
		handleServiceError(c, err, "Failed to update item")
		return
	}
	common.Success(c, gin.H{"key": key})
}

// DeleteItem godoc
// @Summary 상품 삭제 (작성자만)
// @Tags items
// @Param title path string true "상품명"
// @Success 200 {object} common.Response
// @Router /api/items/{title} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("title"), middleware.GetUserID(c)); err != nil {
		handleServiceError(c, err, "Failed to delete item")
		return
	}
	common.SuccessMessage(c, "item deleted")
}

// Purchase godoc
// @Summary 상품 구매
// @Tags items
// @Param title path string true "상품명"
// @Success 200 {object} common.Response
// @Router /api/items/{title}/purchase [post]
func (h *ItemHandler) Purchase(c *gin.Context) {
	if err := h.service.Purchase(c.Request.Context(), c.Param("title"), middleware.GetUserID(c)); err != nil {
		handleServiceError(c, err, "Failed to purchase item")
		return
	}
	common.SuccessMessage(c, "purchase complete")
}

// MyItems godoc
// @Summary 내가 등록한 상품
// @Tags mypage
// @Success 200 {object} common.Response
// @Router /api/my/items [get]
func (h *ItemHandler) MyItems(c *gin.Context) {
	common.Success(c, h.service.ListSelling(c.Request.Context(), middleware.GetUserID(c)))
}

// MyPurchases godoc
// @Summary 내가 구매한 상품
// @Tags mypage
// @Success 200 {object} common.Response
// @Router /api/my/purchases [get]
func (h *ItemHandler) MyPurchases(c *gin.Context) {
	common.Success(c, h.service.ListPurchased(c.Request.Context(), middleware.GetUserID(c)))
}
