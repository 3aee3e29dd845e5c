package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	osignal "os/signal"
	"syscall"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/config"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Server represents the HTTP server
type Server struct {
	cfg      *config.Config
	http     *http.Server
	mongo    *mongo.Client
	services *Services
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	mongoClient, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	repos := InitRepositories(cfg, db)
	services, err := InitServices(cfg, repos)
	if err != nil {
		return nil, err
	}
	handlers := InitHandlers(cfg, services)

	router := setupRouter(cfg, handlers, services)

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "x-auth-token"},
		AllowCredentials: true,
	})

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.Server.Address(),
			Handler:           corsWrapper.Handler(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
		mongo:    mongoClient,
		services: services,
	}, nil
}

func Connect(cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Close disconnects MongoDB client
func (s *Server) Close() error {
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.mongo.Disconnect(ctx)
	}
	return nil
}

// Run starts the server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests before returning.
func (s *Server) Run() error {
	ctx, stop := osignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.startSettlementLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", s.cfg.Server.Address()).Info("server listening")
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// startSettlementLoop periodically completes due internal transactions and
// prunes expired refresh tokens.
func (s *Server) startSettlementLoop(ctx context.Context) {
	intervalSec := s.cfg.Payment.SettleIntervalSec
	if intervalSec <= 0 {
		intervalSec = config.DefaultSettleInterval
	}
	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.services.Payments.SettleDue(ctx); err != nil {
					logrus.WithError(err).Error("settlement pass failed")
				}
				if err := s.services.Tokens.PurgeExpired(ctx); err != nil {
					logrus.WithError(err).Error("token purge failed")
				}
			}
		}
	}()
}
