package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokenbridge/internal/api"
	"github.com/samcharles93/tokenbridge/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the tokenizer over HTTP",
		Flags: append(append(commonVocabFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, LoadConfig(), &addr)
			log := newLog()

			enc, table, err := loadEncoder()
			if err != nil {
				return err
			}

			server := api.NewServer(enc, api.InfoFromTable(table))
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server",
				"address", addr,
				"vocab_size", table.Size(),
			)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

// newLog builds a logger from the logging flags.
func newLog() logger.Logger {
	level := logger.ParseLevel(logLevel)
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.Text(os.Stderr, level)
	default:
		return logger.Pretty(os.Stderr, level)
	}
}
