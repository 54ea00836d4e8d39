package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/ExplosionScreener/internal/config"
	"github.com/Alias1177/ExplosionScreener/internal/database"
	"github.com/Alias1177/ExplosionScreener/internal/notifier"
	httpClient "github.com/Alias1177/ExplosionScreener/internal/platform/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("Authorized on Telegram")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Subscriptions are optional; without a database only TELEGRAM_CHAT_ID is notified
	var (
		db         *database.DB
		recipients notifier.Recipients
	)
	if cfg.DBHost != "" {
		db, err = database.New(ctx, database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		recipients = db
	} else {
		log.Warn().Msg("DB_HOST not set, subscriptions disabled")
	}

	if cfg.TelegramChatID == 0 && db == nil {
		log.Fatal().Msg("Nobody to notify: set TELEGRAM_CHAT_ID or configure the database")
	}

	client := httpClient.NewClient(httpClient.ClientOptions{
		// The screener may run a cold pipeline on the first poll
		Timeout:    2 * time.Minute,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Component:  "screener_client",
	})

	n := notifier.New(client, notifier.NewTelegramSender(bot), recipients, notifier.Options{
		ScreenerURL:  cfg.ScreenerURL,
		ChatID:       cfg.TelegramChatID,
		MinScore:     cfg.NotifyMinScore,
		Cooldown:     cfg.NotifyCooldown,
		SendInterval: 50 * time.Millisecond,
	})

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.NotifySchedule, func() {
		if _, err := n.Poll(ctx); err != nil {
			log.Error().Err(err).Msg("Poll failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.NotifySchedule).Msg("Invalid NOTIFY_SCHEDULE")
	}
	c.Start()
	log.Info().
		Str("schedule", cfg.NotifySchedule).
		Str("screener", cfg.ScreenerURL).
		Int("min_score", cfg.NotifyMinScore).
		Msg("Notifier started")

	if db != nil {
		go handleCommands(ctx, bot, db)
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	bot.StopReceivingUpdates()
	<-c.Stop().Done()
}

func handleCommands(ctx context.Context, bot *tgbotapi.BotAPI, subs notifier.Subscriptions) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := bot.GetUpdatesChan(updateConfig)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			reply := notifier.HandleCommand(ctx, subs, update.Message)
			if reply == "" {
				continue
			}
			if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, reply)); err != nil {
				log.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("Failed to send reply")
			}
		}
	}
}
