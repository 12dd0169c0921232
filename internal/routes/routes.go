package routes

import (
	"github.com/ewhamarket/backend/internal/handler"
	"github.com/ewhamarket/backend/internal/middleware"
	"github.com/ewhamarket/backend/pkg/jwt"
	"github.com/ewhamarket/backend/pkg/storage"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	itemHandler *handler.ItemHandler,
	reviewHandler *handler.ReviewHandler,
	wishHandler *handler.WishHandler,
	healthHandler *handler.HealthHandler,
	sessions *jwt.Manager,
	uploadDir string,
) {
	router.GET("/health", healthHandler.Health)

	// 업로드 이미지 (저장 경로 static/images/<filename> 그대로 제공)
	router.Static("/"+storage.PathPrefix, uploadDir)

	// 세션 쿠키 인증 (optional)
	api := router.Group("/api", middleware.SessionAuth(sessions))
	login := middleware.RequireLogin()

	// 회원
	api.GET("/check_userid", authHandler.CheckID)
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", login, authHandler.GetMe)
	api.PUT("/me", login, authHandler.UpdateMe)
	api.POST("/me/profile_image", login, authHandler.UploadProfileImage)

	// 상품
	items := api.Group("/items")
	items.GET("", itemHandler.ListItems)
	items.GET("/:title", itemHandler.GetItem)
	items.POST("", login, itemHandler.CreateItem)
	items.PUT("/:title", login, itemHandler.UpdateItem)
	items.DELETE("/:title", login, itemHandler.DeleteItem)
	items.POST("/:title/purchase", login, itemHandler.Purchase)

	// 찜
	items.GET("/:title/like", wishHandler.GetWishStatus)
	items.POST("/:title/like", login, wishHandler.ToggleWish)
	items.PUT("/:title/like", login, wishHandler.SetWish)

	// 리뷰
	items.GET("/:title/reviews", reviewHandler.ListItemReviews)
	items.POST("/:title/reviews", login, reviewHandler.WriteReview)
	api.GET("/reviews", reviewHandler.ListReviews)
	api.GET("/reviews/:key", reviewHandler.GetReview)

	// 마이페이지
	my := api.Group("/my", login)
	my.GET("/items", itemHandler.MyItems)
	my.GET("/purchases", itemHandler.MyPurchases)
	my.GET("/likes", wishHandler.MyWishes)
	my.GET("/reviews", reviewHandler.MyReviews)
}
