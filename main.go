package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Ham-irza/resell-hub/controllers/users"
	"github.com/Ham-irza/resell-hub/database"
	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/routes"
	"github.com/Ham-irza/resell-hub/simulation"
	"github.com/Ham-irza/resell-hub/utils"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present (do not overwrite already-set environment variables).
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	requiredEnvVars := []string{"DB_HOST", "DB_USER", "DB_PASS", "DB_NAME", "JWT_SECRET"}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto-migrate only in development to avoid accidental production schema changes.
	if strings.ToLower(os.Getenv("ENV")) == "development" {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("auto-migration failed: %v", err)
		}
	}

	engine := simulation.New(
		simulation.NewGormStore(db),
		simulation.WithMaxCatchUpDays(envInt("SIM_MAX_CATCHUP_DAYS", 90)),
		simulation.WithNotifier(payoutNotifier),
	)
	users.SetEngine(engine)

	scheduler := simulation.NewScheduler(engine, sweepInterval())
	if os.Getenv("SIM_SCHEDULER_DISABLED") != "true" {
		scheduler.Start()
	}

	handler := routes.InitRouter(scheduler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[server] listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[server] shutting down")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[server] forced shutdown: %v", err)
	}
	log.Println("[server] stopped")
}

// payoutNotifier emails the owner after a cycle payout commits. The wallet
// credit is already durable and the engine may be running on a request path,
// so the lookup and send happen in the background and failures are only
// logged.
func payoutNotifier(p simulation.Payout) {
	go func() {
		var user models.User
		if err := database.DB.First(&user, p.UserID).Error; err != nil {
			log.Printf("[simulation] load user %d for payout email failed: %v", p.UserID, err)
			return
		}
		utils.SendPayoutEmail(user.Email, user.Name, p.ItemName, p.Amount)
	}()
}

func sweepInterval() time.Duration {
	if s := os.Getenv("SIM_SWEEP_INTERVAL_MINUTES"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return time.Duration(v) * time.Minute
		}
	}
	return 24 * time.Hour
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}
