package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donationhub/internal/db"
	"donationhub/internal/notify"
	"donationhub/internal/server"
	"donationhub/internal/service"
	"donationhub/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if config.Environment == "development" {
		logger.SetLevel(logrus.DebugLevel)
	}

	location, err := time.LoadLocation(config.PickupTimezone)
	if err != nil {
		return fmt.Errorf("invalid PICKUP_TIMEZONE: %w", err)
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	ngoRepo := store.NewNGORepository(pool)
	donationRepo := store.NewDonationRepository(pool)

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if config.PostmarkServerToken != "" {
		notifier = notify.NewPostmarkNotifier(config.PostmarkServerToken, config.EmailSender, config.AdminNotifyEmail)
	} else {
		logger.Warn("POSTMARK_SERVER_TOKEN not set, notifications will only be logged")
	}

	dispatcher := notify.NewDispatcher(logger, time.Duration(config.NotifyTimeoutSec)*time.Second)

	submissions := service.NewSubmissionService(logger, donationRepo, ngoRepo, userRepo, notifier, dispatcher, location)
	reviews := service.NewReviewService(logger, donationRepo, ngoRepo, userRepo, notifier, dispatcher)
	directory := service.NewDirectoryService(logger, ngoRepo)
	users := service.NewUserService(userRepo)

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(ctx, jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwks with cache: %w", err)
	}

	cookie := server.NewSecureCookie(config)
	identity := server.NewCognitoIdentity(config, cookie, jwkCache, jwksURL, userRepo)

	srv := server.New(
		config,
		logger,
		cognitoClient,
		cookie,
		identity,
		userRepo,
		pool,
		submissions,
		reviews,
		directory,
		users,
	)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}

	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.WithError(err).Warn("notifications still pending at shutdown")
	}

	return nil
}
