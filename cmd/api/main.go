package main

import (
	"context"
	"flag"
	"os"

	"github.com/yigit/educareway/internal/bootstrap"
	"github.com/yigit/educareway/internal/pkg/logger"
	"github.com/yigit/educareway/internal/server"
)

// @title EduCareWay API
// @version 1.0
// @description API for the EduCareWay educational resource portal

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Firebase ID token, prefixed with Bearer

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML configuration file")
	flag.Parse()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
