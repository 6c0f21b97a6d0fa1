package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/coder/quartz"
	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"tablepoker-server/internal/config"
	"tablepoker-server/internal/discord"
	"tablepoker-server/internal/jwt"
	"tablepoker-server/internal/mux"
	"tablepoker-server/pkg/db"
	"tablepoker-server/pkg/history"
	"tablepoker-server/pkg/ledger"
	"tablepoker-server/pkg/room"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 30

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()

	// fail fast
	jwt.LoadKeys()

	l, recorder := setupStorage(cfg)

	var messenger room.Messenger = room.LogMessenger{}
	var session *discordgo.Session
	var discordMessenger *discord.Messenger
	if cfg.Discord.Token != "" {
		var err error
		session, err = discordgo.New("Bot " + cfg.Discord.Token)
		if err != nil {
			logrus.WithError(err).Fatal("could not create discord session")
		}

		discordMessenger = discord.NewMessenger(session)
		messenger = discordMessenger
	} else {
		logrus.Warn("no discord token configured; table output goes to the log")
	}

	feed := mux.NewFeed(messenger)
	pitBoss := room.NewPitBoss(cfg.Table, l, feed, quartz.NewReal())
	pitBoss.SetRecorder(recorder)

	if session != nil {
		bot := discord.NewBot(discordMessenger, pitBoss)
		session.AddHandler(bot.HandleInteraction)
		if err := session.Open(); err != nil {
			logrus.WithError(err).Fatal("could not connect to discord")
		}
		defer session.Close()

		if err := bot.RegisterCommands(cfg.Discord.AppID, cfg.Discord.GuildID); err != nil {
			logrus.WithError(err).Fatal("could not register commands")
		}
	}

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handlers.CombinedLoggingHandler(os.Stdout, c.Handler(mux.NewMux(Version, pitBoss, feed))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("could not listen")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("could not shut down http server")
	}

	// refund hands in progress and settle every table before exiting
	pitBoss.Shutdown(shutdownCtx)
}

// setupStorage opens the configured ledger and the matching hand history
func setupStorage(cfg config.Config) (ledger.Ledger, history.Recorder) {
	switch cfg.Ledger.Backend {
	case config.LedgerMemory:
		logrus.Warn("using the in-memory ledger; balances are lost on restart")
		return ledger.NewMemory(cfg.Ledger.StarterBalance), history.NewMemory()
	case config.LedgerRedis:
		return ledger.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), history.NewMemory()
	case config.LedgerPostgres:
		if err := db.Migrate(db.Instance(), cfg.MigrationsPath); err != nil {
			logrus.WithError(err).Fatal("could not run migrations")
		}

		return ledger.NewPostgres(db.Instance()), history.NewPostgres(db.Instance())
	default:
		logrus.WithField("backend", cfg.Ledger.Backend).Fatal("unknown ledger backend")
		return nil, nil
	}
}

func setupLogger() {
	cfg := config.Instance().Log
	if lvl := cfg.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" || strings.ToLower(cfg.Format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
