package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/saasbase/app/controllers"
	"github.com/ManuelReschke/saasbase/app/repository"
	"github.com/ManuelReschke/saasbase/internal/pkg/billing"
	"github.com/ManuelReschke/saasbase/internal/pkg/cache"
	"github.com/ManuelReschke/saasbase/internal/pkg/catalog"
	"github.com/ManuelReschke/saasbase/internal/pkg/database"
	"github.com/ManuelReschke/saasbase/internal/pkg/env"
	"github.com/ManuelReschke/saasbase/internal/pkg/oauth"
	"github.com/ManuelReschke/saasbase/internal/pkg/provisioning"
	"github.com/ManuelReschke/saasbase/internal/pkg/redirect"
	"github.com/ManuelReschke/saasbase/internal/pkg/router"
	"github.com/ManuelReschke/saasbase/internal/pkg/session"
)

func main() {
	app := NewApplication()

	go func() {
		addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
		if err := app.Listen(addr); err != nil {
			log.Printf("[Server] Listen stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("[Server] Shutdown: %v", err)
	}
	if err := database.Close(); err != nil {
		log.Printf("[Database] Close: %v", err)
	}
	if err := cache.Close(); err != nil {
		log.Printf("[Cache] Close: %v", err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	db := database.SetupDatabase()
	rdb := cache.SetupCache()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/saasbase to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	app := fiber.New(fiber.Config{
		Views: html.New(basePath+"views", ".html"),
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	sessions := session.NewSessionStore(rdb)
	providers := oauth.Setup(rdb)
	if len(providers) == 0 {
		log.Println("[OAuth] No identity provider configured, login is unavailable")
	}

	repos := repository.NewRepositories(db)
	stripeClient := billing.NewStripeClientFromEnv()

	metricsUsers := map[string]string{}
	if pw := env.GetEnv("METRICS_PASSWORD", ""); pw != "" {
		metricsUsers[env.GetEnv("METRICS_USER", "admin")] = pw
	}

	router.InstallRouter(app, router.Dependencies{
		Sessions: sessions,
		Auth: controllers.NewAuthController(controllers.AuthConfig{
			Exchanger:   oauth.Exchanger{},
			Provisioner: provisioning.NewProvisioner(repos.User, stripeClient),
			Users:       repos.User,
			Sessions:    sessions,
			Policy:      redirect.PolicyFromEnv(),
			Providers:   providers,
			BeginAuth:   gothfiber.BeginAuthHandler,
		}),
		Landing:      controllers.NewLandingController(catalog.NewServiceFromEnv(stripeClient, rdb)),
		Dashboard:    controllers.NewDashboardController(repos.User, sessions),
		Billing:      controllers.NewBillingController(billing.NewServiceFromDB(db), env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		MetricsUsers: metricsUsers,
	})

	return app
}
