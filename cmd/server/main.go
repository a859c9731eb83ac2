package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/huuhung7301/hubo-event/internal/availability"
	"github.com/huuhung7301/hubo-event/internal/booking"
	"github.com/huuhung7301/hubo-event/internal/config"
	"github.com/huuhung7301/hubo-event/internal/database"
	"github.com/huuhung7301/hubo-event/internal/handler"
	"github.com/huuhung7301/hubo-event/internal/middleware"
	"github.com/huuhung7301/hubo-event/internal/pricing"
	"github.com/huuhung7301/hubo-event/internal/queue"
	"github.com/huuhung7301/hubo-event/internal/repository"
	"github.com/huuhung7301/hubo-event/internal/router"
	"github.com/huuhung7301/hubo-event/internal/service"
	"github.com/huuhung7301/hubo-event/internal/wizard"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: sessions in memory, rate limiting off")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	items := repository.NewItemRepo(db)
	works := repository.NewWorkRepo(db)
	postcodes := repository.NewPostcodeRepo(db)
	reservations := repository.NewReservationRepo(db)

	warehouse := pricing.Location{Latitude: cfg.WarehouseLat, Longitude: cfg.WarehouseLng}
	sessions := wizard.NewSessionStore(rdb, time.Duration(cfg.SessionTTLMin)*time.Minute)
	aggregator := availability.NewAggregator(reservations)

	var publisher booking.EventPublisher
	if cfg.AMQPURL != "" {
		publisher = service.NewQueuePublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartReservationConsumer(cfg.AMQPURL); err != nil {
				log.Printf("reservation consumer stopped: %v", err)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL unset: event publishing off")
	}
	orchestrator := booking.NewOrchestrator(reservations, publisher)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewCatalogHandler(items, works),
		handler.NewAvailabilityHandler(aggregator),
		handler.NewDeliveryHandler(warehouse, postcodes))
	router.RegisterWizard(e,
		handler.NewWizardHandler(sessions, items, orchestrator, warehouse, postcodes),
		cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewAdminHandler(items, works, reservations),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
