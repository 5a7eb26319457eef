package main

import (
	"context"
	"fmt"
	"os"

	"bitwise74/formdrop-api/api"
	"bitwise74/formdrop-api/config"
	"bitwise74/formdrop-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Setup(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a, err := api.NewRouter(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	defer a.Close()

	service.OrphanCleanup(cfg.Cleanup.Interval, cfg.Cleanup.Grace, a.DB, a.Blobs)

	zap.L().Info("Server starting", zap.Int("port", cfg.Host.Port))

	err = a.Router.Run(fmt.Sprintf(":%d", cfg.Host.Port))
	if err != nil {
		panic(err)
	}
}
