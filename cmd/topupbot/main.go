package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/m3rciful/topupbot/core/cmd"
	"github.com/m3rciful/topupbot/internal/app"
)

func main() {
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			return app.Bootstrap(carrier.(*app.Config))
		},
	})
	if err != nil {
		log.Fatalf("topupbot: %v", err)
	}
}
