package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-duka-pos/internal/config"
	"go-duka-pos/internal/handler"
	"go-duka-pos/internal/middleware"
	"go-duka-pos/internal/model"
	"go-duka-pos/internal/repository"
	"go-duka-pos/internal/service"
	"go-duka-pos/internal/ws"
	"go-duka-pos/pkg/database"
	"go-duka-pos/pkg/gemini"
	"go-duka-pos/pkg/jwt"
	"go-duka-pos/pkg/mpesa"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// 2. Setup Database
	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("Failed to connect to database. \n", err)
	}
	// Auto migrate (use a separate migration tool in production)
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.StockMovement{},
		&model.PaymentRequest{},
		&model.User{},
	); err != nil {
		log.Fatal("Failed to run migrations. \n", err)
	}

	// 3. Seed default admin user
	userRepo := repository.NewUserRepo(db)
	seedAdmin(userRepo, cfg)

	// 4. Setup WebSocket Hub (operator channel)
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	signer := jwt.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	mpesaClient := mpesa.NewClient(cfg.Mpesa)
	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	ledgerService := service.NewLedgerService(db, productRepo, saleRepo, movementRepo, wsHub)
	catalogService := service.NewCatalogService(db, productRepo, saleRepo, wsHub)
	reportService := service.NewReportService(productRepo, saleRepo, movementRepo)
	authService := service.NewAuthService(userRepo, signer)
	paymentService := service.NewPaymentService(saleRepo, paymentRepo, mpesaClient, wsHub)
	assistantService := service.NewAssistantService(productRepo, saleRepo, geminiClient)

	productHandler := handler.NewProductHandler(catalogService)
	saleHandler := handler.NewSaleHandler(ledgerService, saleRepo)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	assistantHandler := handler.NewAssistantHandler(assistantService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Duka POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Gateway callback must stay public; the gateway cannot authenticate.
	api.Post("/payments/callback", paymentHandler.Callback)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(signer, userRepo))

	// Product routes (mutations are admin-only)
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Post("/products", middleware.RequireRole(model.RoleAdmin), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequireRole(model.RoleAdmin), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequireRole(model.RoleAdmin), productHandler.DeleteProduct)
	protected.Post("/products/:id/restock", middleware.RequireRole(model.RoleAdmin), saleHandler.Restock)

	// Sale routes
	protected.Get("/sales", saleHandler.GetSales)
	protected.Get("/sales/:id", saleHandler.GetSale)
	protected.Post("/sales", saleHandler.CreateSale)
	protected.Delete("/sales/:id", middleware.RequireRole(model.RoleAdmin), saleHandler.DeleteSale)

	// Report routes
	protected.Get("/reports/stats", reportHandler.GetShopStats)
	protected.Get("/reports/stock-movement", reportHandler.GetStockMovement)
	protected.Get("/reports/sales-summary", reportHandler.GetSalesSummary)

	// Payment initiation
	protected.Post("/payments/stk-push", paymentHandler.InitiateSTKPush)

	// Assistant
	protected.Post("/assistant/chat", assistantHandler.Chat)

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin user if it doesn't exist
func seedAdmin(userRepo repository.UserRepository, cfg config.Config) {
	if _, err := userRepo.FindByEmail(cfg.AdminEmail); err == nil {
		return
	}

	admin := &model.User{
		Email:    cfg.AdminEmail,
		FullName: "Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return
	}
	log.Printf("Admin user created: %s (ADMIN)", cfg.AdminEmail)
}
