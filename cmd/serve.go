package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"crmm/internal/config"
	"crmm/internal/downdetect"
	"crmm/internal/features/audit_logs"
	"crmm/internal/features/disk"
	"crmm/internal/features/files"
	"crmm/internal/features/notifications"
	organisations_controllers "crmm/internal/features/organisations/controllers"
	projects_controllers "crmm/internal/features/projects/controllers"
	"crmm/internal/features/search"
	system_healthcheck "crmm/internal/features/system/healthcheck"
	teams_controllers "crmm/internal/features/teams/controllers"
	users_controllers "crmm/internal/features/users/controllers"
	users_middleware "crmm/internal/features/users/middleware"
	users_services "crmm/internal/features/users/services"
	"crmm/internal/metrics"
	"crmm/internal/storage"
	cache_utils "crmm/internal/util/cache"
	env_utils "crmm/internal/util/env"
	"crmm/internal/util/logger"
	"crmm/internal/util/rate_limit"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and background workers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()
	config.StartListeningForShutdownSignal()
	setUpDependencies()

	cache_utils.TestCacheConnection()

	if err := testOpenSearchConnection(log); err != nil {
		return err
	}

	if err := runMigrate(storage.MigrationDirectionUp); err != nil {
		log.Error("Failed to run migrations", "error", err)
		return err
	}

	if err := users_services.GetUserService().CreateInitialAdmin(); err != nil {
		log.Error("Failed to create initial admin", "error", err)
		return err
	}

	go generateSwaggerDocs(log)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	ginApp.Use(gzip.Gzip(
		gzip.DefaultCompression,
		// Don't compress already compressed files
		gzip.WithExcludedExtensions(
			[]string{".png", ".gif", ".jpeg", ".jpg", ".ico", ".svg", ".webp", ".pdf"},
		),
	))
	ginApp.Use(metrics.RequestDurationMiddleware())

	enableCors(ginApp)
	setUpRoutes(ginApp)
	runBackgroundTasks(log)
	mountFrontend(ginApp)

	startServerWithGracefulShutdown(log, ginApp)
	return nil
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine) {
	host := ""
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// for dev we use localhost to avoid firewall
		// requests on each run for Windows
		host = "127.0.0.1"
	}

	srv := &http.Server{
		Addr:    host + ":" + config.GetEnv().HttpPort,
		Handler: app,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	search.GetSearchBackgroundService().Stop()

	log.Info("Server gracefully stopped")
}

func setUpRoutes(r *gin.Engine) {
	env := config.GetEnv()
	v1 := r.Group("/api/v1")

	v1.GET("/docs/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	userController := users_controllers.GetUserController()
	userController.RegisterRoutes(v1)
	search.GetSearchController().RegisterRoutes(v1)
	files.GetFileController().RegisterRoutes(v1)
	downdetect.GetDowndetectController().RegisterRoutes(v1)
	system_healthcheck.GetHealthcheckController().RegisterRoutes(v1)
	metrics.GetMetricsController().RegisterRoutes(v1)

	userService := users_services.GetUserService()
	invalidAttemptsCounter := rate_limit.NewInvalidAttemptsCounter(
		"crmm:invalid_attempts:",
		env.InvalidAuthAttemptsLimit,
		time.Duration(env.InvalidAuthAttemptsWindowSeconds)*time.Second,
	)
	modifyLimiter := rate_limit.NewRateLimiter("crmm:modify_rate_limit:")

	// Protected routes
	protected := v1.Group("")
	protected.Use(users_middleware.AuthMiddleware(userService))
	protected.Use(users_middleware.InvalidAttemptsGuard(invalidAttemptsCounter))
	protected.Use(users_middleware.ModifyRequestLimiter(
		modifyLimiter,
		env.ModifyRequestsPerSecond,
		env.ModifyRequestsBurst,
	))

	disk.GetDiskController().RegisterRoutes(protected)
	audit_logs.GetAuditLogController().RegisterRoutes(protected)
	userController.RegisterProtectedRoutes(protected)
	users_controllers.GetSettingsController().RegisterRoutes(protected)
	users_controllers.GetManagementController().RegisterRoutes(protected)
	projects_controllers.GetProjectController().RegisterRoutes(protected)
	organisations_controllers.GetOrganisationController().RegisterRoutes(protected)
	teams_controllers.GetTeamController().RegisterRoutes(protected)
	notifications.GetNotificationController().RegisterRoutes(protected)
}

func setUpDependencies() {
	audit_logs.SetupDependencies()
	search.SetupDependencies()
}

func runBackgroundTasks(log *slog.Logger) {
	log.Info("Preparing to run background tasks...")

	search.GetSearchBackgroundService().StartWorkers()

	log.Info("Background tasks started successfully")
}

// Keep in mind: docs appear after second launch, because Swagger
// is generated into Go files. So if we changed files, we generate
// new docs, but still need to restart the server to see them.
func generateSwaggerDocs(log *slog.Logger) {
	if config.GetEnv().EnvMode == env_utils.EnvModeProduction {
		return
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error("Failed to get current directory", "error", err)
		return
	}

	cmd := exec.Command("swag", "init", "-d", currentDir, "-g", "cmd/main.go", "-o", "swagger")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to generate Swagger docs", "error", err, "output", string(output))
		return
	}

	log.Info("Swagger documentation generated successfully")
}

func testOpenSearchConnection(log *slog.Logger) error {
	log.Info("Testing OpenSearch connection...")

	repository := search.GetSearchRepository()
	if err := repository.TestOpenSearchConnection(); err != nil {
		log.Error("Failed to connect to OpenSearch", "error", err)
		return err
	}

	if err := repository.EnsureIndex(); err != nil {
		log.Error("Failed to prepare projects index", "error", err)
		return err
	}

	log.Info("OpenSearch connection test successful")
	return nil
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Authorization",
				"Accept",
				"Accept-Language",
				"Accept-Encoding",
				"Access-Control-Request-Method",
				"Access-Control-Request-Headers",
			},
			AllowCredentials: true,
		}))
	}
}

func mountFrontend(ginApp *gin.Engine) {
	staticDir := "./ui/build"
	ginApp.NoRoute(func(c *gin.Context) {
		path := filepath.Join(staticDir, c.Request.URL.Path)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}

		c.File(filepath.Join(staticDir, "index.html"))
	})
}
