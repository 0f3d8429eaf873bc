package app

import (
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
	"github.com/loopyhq/loopy-backend/internal/utils"
)

type Config struct {
	Port         string
	JWTSecretKey string
	TxAttempts   int
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8000", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	txAttempts := utils.GetEnvAsInt("PLANT_TX_ATTEMPTS", 5, log)
	return Config{
		Port:         port,
		JWTSecretKey: jwtSecretKey,
		TxAttempts:   txAttempts,
	}
}
