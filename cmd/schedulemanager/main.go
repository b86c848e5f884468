package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"schedule-manager/internal/config"
	"schedule-manager/internal/notify"
	"schedule-manager/internal/repository"
	"schedule-manager/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	setupLogger(cfg.LogLevel)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	scheduleRepo := repository.NewScheduleRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	reminderSvc := service.NewReminderService(scheduleRepo, taskRepo)

	sinks := []notify.Sink{notify.NewLogSink()}
	if cfg.DesktopNotify {
		sinks = append(sinks, notify.NewDesktopSink("Schedule Manager"))
	}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramSink(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram sink")
		}
		sinks = append(sinks, tg)
	}
	dispatcher := notify.NewDispatcher(sinks...)

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.TickInterval, func() {
		tickCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		dispatcher.Dispatch(tickCtx, reminderSvc.Evaluate(tickCtx, time.Now()))
	}); err != nil {
		log.Fatal().Err(err).Msg("schedule reminder tick")
	}

	if cfg.DailyAgendaAt != "" {
		if _, err := scheduler.ScheduleDaily(cfg.DailyAgendaAt, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			now := time.Now()
			agenda, err := reminderSvc.DailyAgenda(jobCtx, now)
			if err != nil {
				log.Error().Err(err).Msg("daily agenda")
				return
			}
			dispatcher.Dispatch(jobCtx, []notify.Event{{
				Title:    "Today's agenda",
				StartsAt: now,
				Kind:     notify.KindDailyAgenda,
				Message:  agenda,
			}})
		}); err != nil {
			log.Fatal().Err(err).Msg("schedule daily agenda")
		}
	}

	scheduler.Start()
	log.Info().
		Str("db", cfg.DatabaseURL).
		Dur("tick", cfg.TickInterval).
		Int("sinks", len(sinks)).
		Msg("schedule manager started")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	// Stop waits for an in-flight tick; the deferred Close runs after.
	scheduler.Stop()
}

func setupLogger(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
