package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/seedlink/platform/internal/booking"
	"github.com/seedlink/platform/internal/config"
	"github.com/seedlink/platform/internal/database"
	"github.com/seedlink/platform/internal/handler"
	"github.com/seedlink/platform/internal/queue"
	"github.com/seedlink/platform/internal/repository"
	"github.com/seedlink/platform/internal/router"
	queuepublisher "github.com/seedlink/platform/internal/service"
	"github.com/seedlink/platform/internal/ussd"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: when it is down the limiter and the response
	// cache turn into pass-throughs and everything else keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	// Background notification consumer. It owns its own reconnect loop.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	inventory := repository.NewInventoryRepo(db)
	stations := repository.NewStationRepo(db)
	events := repository.NewEventRepo(db)
	sessions := repository.NewSessionRepo(db)

	notifier := queuepublisher.Notifier{}
	policy := booking.Policy{
		PickupMinLead:    time.Duration(cfg.PickupMinHours) * time.Hour,
		PickupMaxHorizon: time.Duration(cfg.PickupMaxDays) * 24 * time.Hour,
		IndividualQuota:  cfg.IndividualQuota,
		InstitutionQuota: cfg.InstitutionQuota,
	}
	engine := booking.NewEngine(db, users, bookings, inventory, notifier, policy)
	reconciler := booking.NewReconciler(db, users, bookings, inventory, notifier, cfg.GraceHours, cfg.CooldownDays)
	reminders := booking.NewReminderSweep(bookings, notifier, 24*time.Hour)

	dispatcher := &ussd.Dispatcher{
		Sessions:     sessions,
		Users:        users,
		Login:        &ussd.LoginFlow{},
		Registration: &ussd.RegistrationFlow{Users: users},
		Booking: &ussd.BookingFlow{
			Users:         users,
			Stations:      stations,
			Engine:        engine,
			MaxQuantity:   cfg.MaxUssdQuantity,
			PickupMinLead: policy.PickupMinLead,
			PickupHorizon: policy.PickupMaxHorizon,
		},
		Events:             &ussd.EventsFlow{Users: users, Events: events},
		MaxInvalidAttempts: cfg.MaxInvalidAttempts,
		SessionIdleMinutes: cfg.SessionIdleMinutes,
	}

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterUssd(e, handler.NewUssdHandler(dispatcher), config.LoadRateLimitConfig(), rdb)
	router.RegisterPublic(e, handler.NewStationHandler(stations), config.LoadCacheConfig(), rdb)
	router.RegisterBooking(e, handler.NewBookingHandler(engine, bookings, stations), cfg.JWTSecret)
	router.RegisterProfile(e, handler.NewProfileHandler(users), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(inventory, stations), cfg.JWTSecret)
	router.RegisterCron(e, handler.NewCronHandler(reconciler, reminders, cfg.CronSecret))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
