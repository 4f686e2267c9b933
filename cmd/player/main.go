package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Nixie-Tech-LLC/loopboard/internal/client"
	"github.com/Nixie-Tech-LLC/loopboard/internal/playback"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	server = configVar[string]{
		envKey:       "PLAYER_SERVER",
		flagKey:      "server",
		defaultValue: "http://localhost:8080",
	}
	username = configVar[string]{
		envKey:       "PLAYER_USERNAME",
		flagKey:      "username",
		defaultValue: "",
	}
	password = configVar[string]{
		envKey:       "PLAYER_PASSWORD",
		flagKey:      "password",
		defaultValue: "",
	}
	pollInterval = configVar[time.Duration]{
		envKey:       "PLAYER_POLL_INTERVAL",
		flagKey:      "poll-interval",
		defaultValue: playback.DefaultPollInterval,
	}
	dwell = configVar[time.Duration]{
		envKey:       "PLAYER_DWELL",
		flagKey:      "dwell",
		defaultValue: playback.DefaultDwell,
	}
	videoLength = configVar[time.Duration]{
		envKey:       "PLAYER_VIDEO_SECONDS",
		flagKey:      "video-seconds",
		defaultValue: 30 * time.Second,
	}
	logLevel = configVar[string]{
		envKey:       "PLAYER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "info",
	}
)

type playerConfig struct {
	Server       string
	Username     string
	Password     string
	PollInterval time.Duration
	Dwell        time.Duration
	VideoLength  time.Duration
	LogLevel     string
}

func loadPlayerConfig() *playerConfig {
	pflag.String(server.flagKey, server.defaultValue, "Server base URL")
	pflag.String(username.flagKey, username.defaultValue, "Display account username")
	pflag.String(password.flagKey, password.defaultValue, "Display account password")
	pflag.Duration(pollInterval.flagKey, pollInterval.defaultValue, "How often to re-read the account")
	pflag.Duration(dwell.flagKey, dwell.defaultValue, "How long each image is shown")
	pflag.Duration(videoLength.flagKey, videoLength.defaultValue, "Simulated video length")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(server.flagKey, server.envKey)
	viper.BindEnv(username.flagKey, username.envKey)
	viper.BindEnv(password.flagKey, password.envKey)
	viper.BindEnv(pollInterval.flagKey, pollInterval.envKey)
	viper.BindEnv(dwell.flagKey, dwell.envKey)
	viper.BindEnv(videoLength.flagKey, videoLength.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)

	viper.SetDefault(server.flagKey, server.defaultValue)
	viper.SetDefault(pollInterval.flagKey, pollInterval.defaultValue)
	viper.SetDefault(dwell.flagKey, dwell.defaultValue)
	viper.SetDefault(videoLength.flagKey, videoLength.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)

	return &playerConfig{
		Server:       viper.GetString(server.flagKey),
		Username:     viper.GetString(username.flagKey),
		Password:     viper.GetString(password.flagKey),
		PollInterval: viper.GetDuration(pollInterval.flagKey),
		Dwell:        viper.GetDuration(dwell.flagKey),
		VideoLength:  viper.GetDuration(videoLength.flagKey),
		LogLevel:     viper.GetString(logLevel.flagKey),
	}
}

func main() {
	cfg := loadPlayerConfig()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.Username == "" || cfg.Password == "" {
		log.Fatal().Msg("--username and --password are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(cfg.Server)
	identity, err := c.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		log.Fatal().Err(err).Str("server", cfg.Server).Msg("[player] login failed")
	}
	log.Info().Str("username", identity.Username).Msg("[player] logged in")

	renderer := &LogRenderer{videoLength: cfg.VideoLength}
	player := playback.NewPlayer(playback.FetchFunc(c.Fetch), renderer,
		playback.WithPollInterval(cfg.PollInterval),
		playback.WithDwell(cfg.Dwell),
	)
	renderer.player = player

	// SIGUSR1 skips the current item, which is the only way past a YouTube embed
	skip := make(chan os.Signal, 1)
	signal.Notify(skip, syscall.SIGUSR1)
	go func() {
		for range skip {
			player.Next()
		}
	}()

	if err := player.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("[player] stopped")
	}
	renderer.stop()

	// the run context is gone; give logout its own short deadline
	logoutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Logout(logoutCtx); err != nil {
		log.Warn().Err(err).Msg("[player] logout failed")
	}
	log.Info().Msg("[player] bye")
}
