package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"equiherds/internal/config"
	"equiherds/internal/database"
	"equiherds/internal/middleware"
	"equiherds/internal/modules/booking"
	"equiherds/internal/modules/catalog"
	"equiherds/internal/modules/payment"
	"equiherds/internal/modules/quota"
	"equiherds/internal/modules/subscription"
	jwtsvc "equiherds/internal/pkg/jwt"
	"equiherds/internal/repository"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if cfg.AppEnv == "dev" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	listingRepo := repository.NewListingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	subscriptionRepo := subscription.NewRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	subscriptionService := subscription.NewService(subscriptionRepo, listingRepo, log)
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	quotaService := quota.NewService(subscriptionService, listingRepo)

	catalogService := catalog.NewService(listingRepo, quotaService, log)
	catalogHandler := catalog.NewHandler(catalogService)

	paymentService, err := payment.NewService(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.Currency, cfg.ChargeTimeout, log)
	if err != nil {
		log.WithError(err).Fatal("payment adapter init failed")
	}
	paymentHandler := payment.NewHandler(paymentService)

	bookingService := booking.NewService(bookingRepo, catalogService, paymentService, log)
	bookingHandler := booking.NewHandler(bookingService, cfg.DefaultPageLimit, cfg.MaxPageLimit)

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		catalogHandler.RegisterPublicRoutes(v1)
		subscriptionHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			catalogHandler.RegisterProtectedRoutes(protected)
			subscriptionHandler.RegisterProtectedRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
		}
	}

	log.WithField("addr", cfg.ListenAddr).Info("starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
