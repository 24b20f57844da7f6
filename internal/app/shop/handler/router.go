package handler

import (
	"net/http"
	"time"

	"orderservice/internal/app/shop/util"
	"orderservice/pkg/logger"
	"orderservice/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers собирает все handler'ы сервиса для регистрации маршрутов
type Handlers struct {
	User    *UserHandler
	Catalog *CatalogHandler
	Basket  *BasketHandler
	Order   *OrderHandler
	Partner *PartnerHandler
}

// SetupRouter настраивает gin router со всеми маршрутами и middleware
func SetupRouter(h *Handlers, jwt *util.JWTManager) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные маршруты
	router.POST("/user/register", h.User.Register)
	router.POST("/user/register/confirm", h.User.ConfirmEmail)
	router.POST("/user/login", h.User.Login)

	router.GET("/categories", h.Catalog.GetCategories)
	router.GET("/shops", h.Catalog.GetShops)
	router.GET("/products", h.Catalog.SearchProducts)

	// Маршруты под авторизацией
	auth := router.Group("/", AuthMiddleware(jwt))
	{
		auth.GET("/user/details", h.User.GetDetails)
		auth.POST("/user/details", h.User.UpdateDetails)

		auth.GET("/user/contact", h.User.GetContacts)
		auth.POST("/user/contact", h.User.CreateContact)
		auth.PUT("/user/contact", h.User.UpdateContact)
		auth.DELETE("/user/contact", h.User.DeleteContacts)

		auth.GET("/basket", h.Basket.GetBasket)
		auth.POST("/basket", h.Basket.AddItems)
		auth.PUT("/basket", h.Basket.UpdateItems)
		auth.DELETE("/basket", h.Basket.DeleteItems)

		auth.GET("/order", h.Order.GetOrders)
		auth.GET("/order/:id", h.Order.GetOrder)
		auth.POST("/order", h.Order.ConfirmOrder)

		auth.GET("/shops/import_tasks/:task_id", h.Partner.GetImportTask)

		// Маршруты только для пользователей типа shop
		partner := auth.Group("/", RequireShop())
		{
			partner.POST("/partner/update", h.Partner.UpdatePriceList)
			partner.GET("/partner/state", h.Partner.GetState)
			partner.POST("/partner/state", h.Partner.SetState)
			partner.GET("/partner/orders", h.Partner.GetOrders)
			partner.PATCH("/partner/orders/:id", h.Partner.UpdateOrderState)
			partner.POST("/shops/:id/import_products", h.Partner.ImportProducts)
		}
	}

	return router
}
