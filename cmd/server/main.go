package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/elescandalo/teatro-tickets/internal/config"
	"github.com/elescandalo/teatro-tickets/internal/database"
	"github.com/elescandalo/teatro-tickets/internal/email"
	"github.com/elescandalo/teatro-tickets/internal/handler"
	"github.com/elescandalo/teatro-tickets/internal/middleware"
	"github.com/elescandalo/teatro-tickets/internal/queue"
	"github.com/elescandalo/teatro-tickets/internal/repository"
	"github.com/elescandalo/teatro-tickets/internal/router"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database open failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		logrus.WithError(err).Fatal("schema migration failed")
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable; rate limiting, response cache and shared QR cache disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	obras := repository.NewObraRepo(db)
	funciones := repository.NewFuncionRepo(db)
	colaboradores := repository.NewColaboradorRepo(db)
	invitados := repository.NewInvitadoRepo(db)
	tickets := repository.NewTicketRepo(db)

	// Domain services.
	registrar := service.NewRegistrar(invitados)
	qr := service.NewQREncoder(tickets, rdb, cfg.QRCacheMaxEntries, cfg.QRCacheTTL)
	validator := service.NewValidator(tickets, qr)

	// Background consumers: invitation delivery and the redemption log.
	mailer := email.NewMailer(invitados, tickets, qr, email.NewClient(cfg.ResendAPIKey, cfg.MailFrom), cfg.PublicBaseURL)
	go queue.StartInviteConsumer(mailer)
	go queue.StartRedemptionConsumer()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	api := &router.API{
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Obras:         handler.NewObraHandler(obras),
		Funciones:     handler.NewFuncionHandler(funciones, tickets),
		Colaboradores: handler.NewColaboradorHandler(colaboradores),
		Invitados:     handler.NewInvitadoHandler(registrar, invitados, tickets),
		Tickets:       handler.NewTicketHandler(tickets, qr),
		Validate:      handler.NewValidateHandler(validator),
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, api.Auth, cfg.JWTSecret)
	router.RegisterAPI(e, api, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
