package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/config"
	"github.com/solarhub/solarhub-api/controllers"
	"github.com/solarhub/solarhub-api/middleware"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
)

// collaborators are the external systems the API talks to
type collaborators struct {
	Payments services.PaymentGateway
	Mailer   services.Mailer
	OTPs     services.OTPStore
	Images   services.ObjectStore // nil disables image routes
	Hasher   services.PasswordHasher
}

// application holds the wired services
type application struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *zap.Logger

	tokens        *services.TokenService
	users         *services.UserService
	products      *services.ProductService
	catalog       *services.ServiceCatalog
	orders        *services.OrderService
	reviews       *services.ReviewService
	consultations *services.BookingService[models.Consultation, *models.Consultation]
	maintenance   *services.BookingService[models.Maintenance, *models.Maintenance]
	images        *services.ImageService
}

func newApplication(cfg *config.Config, db *gorm.DB, logger *zap.Logger, deps collaborators) (*application, error) {
	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	if deps.Hasher == nil {
		deps.Hasher = services.NewBcryptHasher(0)
	}
	if deps.OTPs == nil {
		deps.OTPs = services.NewGormOTPStore(db)
	}
	if deps.Mailer == nil {
		deps.Mailer = services.NewLogMailer(logger)
	}

	app := &application{
		cfg:           cfg,
		db:            db,
		logger:        logger,
		tokens:        tokens,
		users:         services.NewUserService(db, deps.Hasher, tokens, deps.OTPs, services.NewMailDispatcher(deps.Mailer, logger), cfg.OTPTTL, logger),
		products:      services.NewProductService(db, logger),
		catalog:       services.NewServiceCatalog(db, logger),
		orders:        services.NewOrderService(db, deps.Payments, cfg.PaymentCurrency, logger),
		reviews:       services.NewReviewService(db, logger),
		consultations: services.NewConsultationService(db, logger),
		maintenance:   services.NewMaintenanceService(db, logger),
	}
	if deps.Images != nil {
		app.images = services.NewImageService(deps.Images, logger)
	}
	return app, nil
}

// setupRouter registers every route under /api/v1
func setupRouter(app *application) (*gin.Engine, error) {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(app.logger),
		middleware.Recovery(app.logger),
		middleware.Metrics(),
		cors.New(corsConfig(app.cfg.CORSAllowedOrigins)),
	)

	auth, err := middleware.Authenticate(app.tokens, app.users, app.logger)
	if err != nil {
		return nil, err
	}
	admin := middleware.RequireAdmin()

	users := controllers.NewUserController(app.users)
	products := controllers.NewProductController(app.products, app.images)
	catalog := controllers.NewServiceController(app.catalog)
	orders := controllers.NewOrderController(app.orders)
	reviews := controllers.NewReviewController(app.reviews)
	consultations := controllers.NewConsultationController(app.consultations)
	maintenance := controllers.NewMaintenanceController(app.maintenance)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus(app.db))
		v1.GET("/metrics", gin.WrapH(promhttp.Handler()))

		u := v1.Group("/users")
		u.POST("/register", users.Register)
		u.POST("/confirm-otp", users.ConfirmOTP)
		u.POST("/login", users.Login)
		u.GET("/profile", auth, users.GetProfile)
		u.PUT("/profile", auth, users.UpdateProfile)
		u.POST("/configurations", auth, users.SaveConfiguration)
		u.GET("/all-user", auth, admin, users.ListUsers)
		u.GET("/:id", auth, admin, users.GetUser)
		u.PUT("/:id", auth, admin, users.UpdateUser)
		u.DELETE("/:id", auth, admin, users.DeleteUser)

		p := v1.Group("/products")
		p.GET("", products.ListProducts)
		p.GET("/categories", products.ListCategories)
		p.GET("/brands", products.ListBrands)
		p.GET("/:id", products.GetProduct)
		p.POST("", auth, admin, products.CreateProduct)
		p.PUT("/:id", auth, admin, products.UpdateProduct)
		p.DELETE("/:id", auth, admin, products.DeleteProduct)
		p.PUT("/:id/stock", auth, admin, products.UpdateStock)
		p.POST("/:id/images", auth, admin, products.UploadImage)

		s := v1.Group("/services")
		s.GET("", catalog.ListServices)
		s.GET("/types", catalog.ListTypes)
		s.GET("/packages", catalog.ListPackages)
		s.GET("/locations", catalog.ListLocations)
		s.GET("/:id", catalog.GetService)
		s.POST("", auth, admin, catalog.CreateService)
		s.PUT("/:id", auth, admin, catalog.UpdateService)
		s.DELETE("/:id", auth, admin, catalog.DeleteService)

		o := v1.Group("/orders", auth)
		o.POST("", orders.CreateOrder)
		o.GET("/myorders", orders.ListMyOrders)
		o.GET("/:id", orders.GetOrder)
		o.PUT("/:id/pay", orders.PayOrder)
		o.PUT("/:id/cancel", orders.CancelOrder)
		o.GET("", admin, orders.ListOrders)
		o.PUT("/:id/status", admin, orders.UpdateOrderStatus)
		o.PUT("/:id/service", admin, orders.UpdateServiceStatus)

		cs := v1.Group("/consultations", auth)
		cs.POST("", consultations.Create)
		cs.GET("/myconsultations", consultations.ListMine)
		cs.GET("/:id", consultations.Get)
		cs.PUT("/:id/feedback", consultations.Feedback)
		cs.PUT("/:id/cancel", consultations.Cancel)
		cs.GET("", admin, consultations.ListAll)
		cs.PUT("/:id/status", admin, consultations.UpdateStatus)

		m := v1.Group("/maintenance", auth)
		m.POST("", maintenance.Create)
		m.GET("/mymaintenance", maintenance.ListMine)
		m.GET("/:id", maintenance.Get)
		m.PUT("/:id/feedback", maintenance.Feedback)
		m.PUT("/:id/cancel", maintenance.Cancel)
		m.GET("", admin, maintenance.ListAll)
		m.PUT("/:id/status", admin, maintenance.UpdateStatus)

		r := v1.Group("/reviews")
		r.GET("/product/:id", reviews.ListProductReviews)
		r.GET("/service/:id", reviews.ListServiceReviews)
		r.POST("", auth, reviews.CreateReview)
		r.GET("/myreviews", auth, reviews.ListMyReviews)
		r.PUT("/:id", auth, reviews.UpdateReview)
		r.DELETE("/:id", auth, reviews.DeleteReview)
		r.GET("", auth, admin, reviews.ListReviews)
		r.PUT("/:id/approve", auth, admin, reviews.ApproveReview)

		if app.images != nil {
			images := controllers.NewImageController(app.images)
			v1.GET("/images/*key", images.GetImage)
		}
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "SolarHub API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to get database instance",
				"error":   gin.H{"code": "DATABASE_ERROR"},
			})
			return
		}

		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Database connection failed",
				"error":   gin.H{"code": "DATABASE_CONNECTION_ERROR"},
			})
			return
		}

		tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to query tables",
				"error":   gin.H{"code": "DATABASE_QUERY_ERROR"},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
