package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/janbeck/rpsduel/internal/config"
	"github.com/janbeck/rpsduel/internal/game"
	"github.com/janbeck/rpsduel/internal/leaderboard"
	"github.com/janbeck/rpsduel/internal/ws"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`rpsduel - real-time rock/paper/scissors match server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT              Port to listen on (default: 8080)
  CORS_ORIGIN       Allowed origin for the socket transport (default: *)
  LEADERBOARD_DB    Path to the leaderboard SQLite file (default: ./leaderboard.sqlite)
  LEADERBOARD_SIZE  Entries pushed per leaderboard update (default: 10)
  COUNTDOWN         Reveal countdown duration (default: 4s)

The leaderboard is optional: if the database cannot be opened the server
runs without it.
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("rpsduel %s\n", version)
		return
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	cfg, err := config.Load()
	if err != nil {
		zerologlog.Fatal().Err(err).Msg("load config")
	}
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Leaderboard store is optional; a nil store no-ops every call.
	lb, err := leaderboard.Open(cfg.LeaderboardDB)
	if err != nil {
		zerologlog.Warn().Err(err).Msg("leaderboard unavailable, continuing without it")
		lb = nil
	}
	defer lb.Close()

	rm := game.NewRoomManager()
	sock := ws.New(rm, lb, cfg)
	io := sock.Mount(r)
	defer io.Close()

	r.GET("/api/leaderboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"topPlayers": lb.Top(cfg.LeaderboardSize)})
	})

	zerologlog.Info().Str("port", cfg.Port).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		zerologlog.Fatal().Err(err).Msg("server exited")
	}
}
