package main

import (
	"log"
	"os"
	"strings"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/imagestore"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/shipping"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Multi-Branch Retail API
// @version         1.0
// @description     Branch-scoped catalog, order and stock replenishment API.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// External collaborators
	var images imagestore.Client
	if key := os.Getenv("IMAGEKIT_PRIVATE_KEY"); key != "" {
		images = imagestore.NewImageKitClient(key)
	} else {
		log.Println("IMAGEKIT_PRIVATE_KEY not set; product image uploads disabled")
	}
	rates := shipping.NewRajaOngkirClient(os.Getenv("RAJAONGKIR_BASE_URL"), os.Getenv("RAJAONGKIR_API_KEY"))

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	branchRepo := repository.NewBranchRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	stockRequestRepo := repository.NewStockRequestRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	ledger := service.NewInventoryLedger(productRepo, movementRepo)

	branchService := service.NewBranchService(branchRepo, auditRepo, txManager)
	productService := service.NewProductService(branchRepo, productRepo, movementRepo, auditRepo, txManager, images)
	orderService := service.NewOrderService(branchRepo, productRepo, orderRepo, auditRepo, ledger, txManager, wsHub)
	stockRequestService := service.NewStockRequestService(branchRepo, productRepo, stockRequestRepo, auditRepo, ledger, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)

	auth := middleware.NewAuth([]byte(jwtSecret))

	// Initialize Handlers
	branchHandler := handler.NewBranchHandler(branchService, auth)
	productHandler := handler.NewProductHandler(productService, auth)
	orderHandler := handler.NewOrderHandler(orderService, auth)
	stockRequestHandler := handler.NewStockRequestHandler(stockRequestService, auth)
	shippingHandler := handler.NewShippingHandler(rates)
	auditHandler := handler.NewAuditHandler(auditService, auth)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for staff stock alerts
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, []byte(jwtSecret))
	})

	// Register API Routes
	branchHandler.RegisterRoutes(router.Group(""))
	productHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	stockRequestHandler.RegisterRoutes(router.Group(""))
	shippingHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func allowedOrigins() []string {
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		return strings.Split(raw, ",")
	}
	return []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"}
}
