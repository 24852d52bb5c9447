package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/museflow/calldesk/pkg"
	"github.com/museflow/calldesk/pkg/internal/http"
	"github.com/museflow/calldesk/pkg/internal/services"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	viper.SetDefault("bind", ":3000")
	viper.SetDefault("calling.max_participants", 3)
	viper.SetDefault("calling.empty_timeout_duration", 300)
	viper.SetDefault("calling.join_window", 180)
	viper.SetDefault("calling.default_duration", 30)
	viper.SetDefault("calling.cleanup_floor", 2)

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}
	for _, key := range []string{
		"calling.endpoint",
		"calling.api_key",
		"calling.api_secret",
		"security.manager_password",
	} {
		if len(viper.GetString(key)) == 0 {
			log.Fatal().Str("key", key).Msg("A required setting is missing or blank.")
		}
	}

	// Connect the conferencing provider
	provider := services.NewLiveKitProvider()
	registry := services.NewCallRegistry(provider)

	// Server
	http.NewServer(registry)
	go http.Listen()

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 1m", registry.Sweep)
	quartz.Start()

	color.New(color.FgCyan, color.Bold).Println("Calldesk configuration")
	color.Cyan("  provider endpoint : %s", viper.GetString("calling.endpoint"))
	color.Cyan("  listen address    : %s", viper.GetString("bind"))
	color.Cyan("  join window       : %d minutes", viper.GetInt("calling.join_window"))

	// Messages
	log.Info().Msgf("Calldesk v%s is started...", pkg.AppVersion)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msgf("Calldesk v%s is quitting...", pkg.AppVersion)

	quartz.Stop()
}
