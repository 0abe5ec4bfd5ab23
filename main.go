package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"zapshift-backend/config"
	"zapshift-backend/database"
	authapi "zapshift-backend/internal/api/auth"
	routes "zapshift-backend/internal/app/http"
	"zapshift-backend/internal/infra/identity"
	"zapshift-backend/internal/infra/stripe"
	"zapshift-backend/internal/logger"
	billingsvc "zapshift-backend/internal/service/billing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadEnv()

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}

	tokens := identity.NewHMACVerifier(cfg.JWTSecret)
	chain := identity.Chain{tokens}
	if cfg.FirebaseProjectID != "" {
		chain = append(chain, identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID))
	}

	var google authapi.GoogleFlow
	if cfg.GoogleSignInEnabled() {
		g, err := identity.NewGoogleSignIn(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			zlog.Warn("google sign-in disabled", zap.Error(err))
		} else {
			google = g
		}
	}

	provider := stripe.NewProvider(cfg.StripeKey, stripe.WithLogger(zlog))
	initiator := billingsvc.NewInitiator(store, provider, billingsvc.CheckoutConfig{
		Currency:   cfg.PaymentCurrency,
		SuccessURL: cfg.SuccessURL(),
		CancelURL:  cfg.CancelURL(),
	}, zlog)

	engine := routes.NewEngine(routes.Deps{
		Config:    cfg,
		Store:     store,
		Verifier:  identity.EnrichRole(chain, store.Users()),
		Tokens:    tokens,
		Google:    google,
		Initiator: initiator,
		Finalizer: billingsvc.NewFinalizer(store, provider, zlog),
		Log:       zlog,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		zlog.Error("store close", zap.Error(err))
	}
}
