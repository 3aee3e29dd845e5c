package main

import (
	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/logger"
	"github.com/nazirsaif/nexus-sub000/internal/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	logger.Setup()
	cfg := config.New()

	srv, err := server.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize server")
	}
	defer srv.Close()

	if err := srv.Run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
