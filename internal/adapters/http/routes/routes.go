package routes

import (
	"plafondhub/internal/adapters/events"
	"plafondhub/internal/adapters/http/handlers"
	"plafondhub/internal/adapters/http/middleware"
	"plafondhub/internal/adapters/persistence/repositories"
	"plafondhub/internal/config"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/metrics"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries shared infrastructure into route setup
type Deps struct {
	DB        *gorm.DB
	Cache     *redis.Client
	Publisher *events.Publisher
	Metrics   *metrics.Collector
}

// Setup configures all routes for the application and returns the cron
// service so main can manage its lifecycle.
func Setup(app *fiber.App, cfg *config.Config, deps *Deps) *services.CronService {
	// Repositories
	userRepo := repositories.NewUserRepository(deps.DB)
	roleRepo := repositories.NewRoleRepository(deps.DB)
	resetTokenRepo := repositories.NewResetTokenRepository(deps.DB)
	plafondRepo := repositories.NewPlafondRepository(deps.DB)
	rateRepo := repositories.NewTenorRateRepository(deps.DB)
	appRepo := repositories.NewApplicationRepository(deps.DB)
	disbRepo := repositories.NewDisbursementRepository(deps.DB)
	historyRepo := repositories.NewHistoryRepository(deps.DB)

	// Services
	authService := services.NewAuthService(userRepo, resetTokenRepo, services.LogMailer{}, deps.Metrics, cfg)
	userService := services.NewUserService(userRepo, roleRepo)
	plafondService := services.NewPlafondService(plafondRepo, deps.Cache)
	rateService := services.NewTenorRateService(rateRepo, plafondRepo)
	appService := services.NewApplicationService(appRepo, plafondRepo, historyRepo, deps.Publisher, deps.Metrics)
	disbService := services.NewDisbursementService(disbRepo, appRepo, rateRepo, historyRepo, deps.Publisher, deps.Metrics)
	historyService := services.NewHistoryService(historyRepo)
	dashboardService := services.NewDashboardService(appRepo, disbRepo)
	cronService := services.NewCronService(resetTokenRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, userService)
	plafondHandler := handlers.NewPlafondHandler(plafondService)
	rateHandler := handlers.NewTenorRateHandler(rateService)
	appHandler := handlers.NewApplicationHandler(appService)
	reviewHandler := handlers.NewReviewHandler(appService)
	approvalHandler := handlers.NewApprovalHandler(appService)
	disbHandler := handlers.NewDisbursementHandler(disbService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	adminUserHandler := handlers.NewAdminUserHandler(userService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate limited)
	auth := apiV1.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/forgot-password", middleware.StrictRateLimiter(), authHandler.ForgotPassword)
	auth.Get("/validate-token", authHandler.ValidateResetToken)
	auth.Post("/reset-password", middleware.StrictRateLimiter(), authHandler.ResetPassword)
	auth.Get("/profile", middleware.AuthMiddleware(cfg), authHandler.Profile)
	auth.Post("/change-password", middleware.AuthMiddleware(cfg), authHandler.ChangePassword)

	// Public catalog
	apiV1.Get("/public/plafonds", plafondHandler.ListPublic)

	// Customer routes
	customer := apiV1.Group("/customer")
	customer.Use(middleware.AuthMiddleware(cfg))
	customer.Use(middleware.RequireRoles(domain.RoleCustomer))
	customer.Post("/plafond-applications", appHandler.Apply)
	customer.Get("/plafond-applications/my", appHandler.MyApplications)
	customer.Get("/plafond-applications/:id", appHandler.Get)
	customer.Post("/disbursements", disbHandler.Create)
	customer.Get("/disbursements/my", disbHandler.MyDisbursements)

	// Marketing review desk
	marketing := apiV1.Group("/marketing")
	marketing.Use(middleware.AuthMiddleware(cfg))
	marketing.Use(middleware.RequireRoles(domain.RoleMarketing, domain.RoleSuperAdmin))
	marketing.Get("/plafond-applications/pending", reviewHandler.Pending)
	marketing.Post("/plafond-applications/review", reviewHandler.Review)

	// Branch manager approval desk
	manager := apiV1.Group("/branch-manager")
	manager.Use(middleware.AuthMiddleware(cfg))
	manager.Use(middleware.RequireRoles(domain.RoleBranchManager, domain.RoleSuperAdmin))
	manager.Get("/plafond-applications/pending", approvalHandler.Pending)
	manager.Post("/plafond-applications/approve", approvalHandler.Approve)

	// Back office disbursement desk
	backOffice := apiV1.Group("/back-office")
	backOffice.Use(middleware.AuthMiddleware(cfg))
	backOffice.Use(middleware.RequireRoles(domain.RoleBackOffice, domain.RoleSuperAdmin))
	backOffice.Get("/disbursements/pending", disbHandler.Pending)
	backOffice.Post("/disbursements/:id/process", disbHandler.Process)
	backOffice.Post("/disbursements/:id/cancel", disbHandler.Cancel)

	// Shared authenticated reads
	apiV1.Get("/disbursements", middleware.AuthMiddleware(cfg), disbHandler.List)
	histories := apiV1.Group("/plafond-histories")
	histories.Use(middleware.AuthMiddleware(cfg))
	histories.Get("/", historyHandler.List)
	histories.Get("/applications/:id", historyHandler.ByApplication)
	histories.Get("/disbursements/:id", historyHandler.ByDisbursement)

	// Admin routes (SUPER_ADMIN only)
	admin := apiV1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.SuperAdminOnly())
	admin.Get("/users", adminUserHandler.List)
	admin.Post("/users", adminUserHandler.Create)
	admin.Get("/users/:id", adminUserHandler.Get)
	admin.Put("/users/:id", adminUserHandler.Update)
	admin.Delete("/users/:id", adminUserHandler.Delete)
	admin.Get("/roles", adminUserHandler.Roles)
	admin.Get("/plafonds", plafondHandler.List)
	admin.Post("/plafonds", plafondHandler.Create)
	admin.Get("/plafonds/:id", plafondHandler.Get)
	admin.Put("/plafonds/:id", plafondHandler.Update)
	admin.Delete("/plafonds/:id", plafondHandler.Delete)
	admin.Get("/tenor-rates", rateHandler.List)
	admin.Get("/tenor-rates/grouped", rateHandler.Grouped)
	admin.Get("/tenor-rates/plafond/:id", rateHandler.ByPlafond)
	admin.Post("/tenor-rates", rateHandler.Create)
	admin.Put("/tenor-rates/:id", rateHandler.Update)
	admin.Delete("/tenor-rates/:id", rateHandler.Delete)
	admin.Get("/plafond-applications", appHandler.ListAll)
	admin.Get("/customers/approved", appHandler.ApprovedCustomers)
	admin.Get("/dashboard/summary", dashboardHandler.Summary)

	return cronService
}
