package main

import (
	"github.com/readleaf/readleaf_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using system environment")
	}

	ctx, err := context.NewCtx(
		&services.JWTService{},
		&services.RedisService{},
		&services.PostgresService{},
		&services.MonitoringService{},
		&services.RateLimitService{},
		&services.AuthService{},
		&services.BookService{},
		&services.CheckpointService{},
		&services.ProgressService{},
		&services.BadgeService{},
		&services.CompletionService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
