package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fasalbajar-api/internal/gateway"
	"fasalbajar-api/internal/handler"
	"fasalbajar-api/internal/middleware"
	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/internal/service"
	"fasalbajar-api/internal/ws"
	"fasalbajar-api/pkg/database"
	"fasalbajar-api/pkg/storage"
	"fasalbajar-api/pkg/token"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	token.MustSecret()

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentTransaction{},
		&model.Review{},
		&model.Message{},
		&model.SupplierLocation{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Object storage (optional in development)
	var store storage.ObjectStorage
	if s3Store, err := storage.NewS3StorageFromEnv(context.Background()); err != nil {
		log.Printf("Warning: object storage disabled: %v", err)
	} else {
		store = s3Store
	}

	// 6. Payment gateway
	gw := gateway.NewClient(gateway.ConfigFromEnv())

	// 7. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	locationRepo := repository.NewSupplierLocationRepo(db)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, store)
	productService := service.NewProductService(productRepo, store)
	orderService := service.NewOrderService(orderRepo, productRepo, db, wsHub)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, gw, db, wsHub)
	reviewService := service.NewReviewService(reviewRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, userRepo, wsHub)
	locationService := service.NewSupplierLocationService(locationRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	messageHandler := handler.NewMessageHandler(messageService)
	locationHandler := handler.NewSupplierLocationHandler(locationService)

	// 8. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Fasal Bajar API v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")

	// ============ PUBLIC ROUTES ============
	users := api.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/refresh", authHandler.Refresh)
	users.Post("/reset-password", authHandler.ResetPassword)

	product := api.Group("/product")
	product.Get("/", productHandler.List)
	product.Get("/:id", productHandler.Get)

	api.Get("/payment/callback", paymentHandler.Callback)

	location := api.Group("/supplier-location")
	location.Get("/", locationHandler.List)

	reviews := api.Group("/reviews")
	reviews.Get("/user/:id", reviewHandler.ListByTarget)

	// ============ PROTECTED ROUTES ============
	auth := middleware.RequireAuth(userRepo)

	users.Get("/me", auth, userHandler.GetProfile)
	users.Put("/me", auth, userHandler.UpdateProfile)
	users.Post("/me/avatar", auth, userHandler.UploadAvatar)
	users.Get("/", auth, middleware.RequireRole(model.RoleAdmin), userHandler.ListUsers)
	users.Put("/:id/blocked", auth, middleware.RequireRole(model.RoleAdmin), userHandler.SetBlocked)
	users.Delete("/:id", auth, middleware.RequireRole(model.RoleAdmin), userHandler.Delete)

	sellerOnly := middleware.RequireRole(model.RoleFarmer, model.RoleSupplier)
	product.Post("/", auth, sellerOnly, productHandler.Create)
	product.Put("/:id", auth, sellerOnly, productHandler.Update)
	product.Delete("/:id", auth, sellerOnly, productHandler.Delete)
	product.Post("/:id/image", auth, sellerOnly, productHandler.UploadImage)

	orders := api.Group("/orders", auth)
	orders.Post("/", middleware.RequireRole(model.RoleBuyer), orderHandler.Create)
	orders.Get("/", orderHandler.ListMine)
	orders.Get("/incoming", sellerOnly, orderHandler.ListIncoming)
	orders.Get("/:id", orderHandler.Get)
	orders.Put("/items/:id/status", sellerOnly, orderHandler.UpdateItemStatus)

	payment := api.Group("/payment")
	payment.Post("/initiate/:orderId", auth, middleware.RequireRole(model.RoleBuyer), paymentHandler.Initiate)
	payment.Get("/status/:orderId", auth, paymentHandler.CheckStatus)
	payment.Get("/order/:orderId", auth, paymentHandler.ListByOrder)
	payment.Post("/cod/:orderId/complete", auth, middleware.RequireRole(model.RoleAdmin), paymentHandler.CompleteCOD)
	payment.Post("/:id/refund", auth, middleware.RequireRole(model.RoleAdmin), paymentHandler.Refund)

	reviews.Post("/", auth, middleware.RequireRole(model.RoleBuyer), reviewHandler.Create)
	reviews.Put("/:id", auth, reviewHandler.Update)
	reviews.Delete("/:id", auth, reviewHandler.Delete)

	messages := api.Group("/messages", auth)
	messages.Post("/", messageHandler.Send)
	messages.Get("/conversations", messageHandler.Conversations)
	messages.Get("/conversation/:partnerId", messageHandler.Conversation)
	messages.Get("/unread-count", messageHandler.UnreadCount)
	messages.Put("/read/:partnerId", messageHandler.MarkRead)

	location.Post("/", auth, middleware.RequireRole(model.RoleSupplier), locationHandler.Create)
	location.Get("/mine", auth, middleware.RequireRole(model.RoleSupplier), locationHandler.ListMine)
	location.Put("/:id", auth, middleware.RequireRole(model.RoleSupplier), locationHandler.Update)
	location.Delete("/:id", auth, middleware.RequireRole(model.RoleSupplier), locationHandler.Delete)

	// WebSocket Route: clients authenticate with ?token= and join their
	// own room.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			claims, err := token.ValidateAccessToken(c.Query("token"))
			if err != nil {
				return c.SendStatus(fiber.StatusUnauthorized)
			}
			c.Locals("ws_user_id", claims.UserID.String())
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("ws_user_id").(string)
		client := &ws.Client{Conn: c, Room: userID}
		wsHub.Register <- client
		defer func() { wsHub.Unregister <- client }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin account if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@fasalbajar.com"
	}

	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &model.User{
		FullName: "Administrator",
		Email:    email,
		Role:     model.RoleAdmin,
	}
	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Printf("Admin user created: %s", email)
	}
}
