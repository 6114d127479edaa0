package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lobodInI/API-Social-Media/crud"
	"github.com/lobodInI/API-Social-Media/http"
	"github.com/lobodInI/API-Social-Media/logging"
	"github.com/lobodInI/API-Social-Media/storage"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use the default dev setup.
	// In production the .config.json file is required and the app exits if no file is found.
	config, err := LoadConfig(".", *productionBool)
	if err != nil {
		l := logging.L()
		l.Fatal().Err(err).Msg("load config")
	}
	logging.Init(config.Log)
	log := logging.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open a database connection.
	db, err := OpenDB(config.Database, config.IsProd())
	must(err)
	defer CloseDB(db)

	// Uploaded images go to the local disk or to an s3 bucket.
	store, err := storage.New(ctx, config.Storage)
	must(err)

	// Revoked tokens are kept in redis if it is configured, in the database otherwise.
	var blacklist crud.Blacklist
	if config.Redis.Address != "" {
		rb, err := crud.NewRedisBlacklist(ctx, config.Redis)
		must(err)
		defer rb.Close()
		blacklist = rb
	}

	// Start the crud services and execute migrations.
	services, err := crud.NewServices(
		db,
		crud.WithUser(config.Pepper),
		crud.WithFollow(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithLike(),
		crud.WithImage(store, config.Images.MaxDimension),
		crud.WithToken(config.JWT, blacklist),
	)
	must(err)
	must(services.AutoMigrate())

	// Set up a webserver and serve the app until we're told to stop.
	server := http.NewServer(services, store, config.Pagination)
	log.Info().Str("env", config.Env).Str("database", config.Database.Driver).Str("storage", config.Storage.Driver).Msg("starting")
	must(server.Run(ctx, config.Port))
	log.Info().Msg("server stopped")
}

// must is a little helper for shortening the error checks during startup.
func must(err error) {
	if err != nil {
		l := logging.L()
		l.Fatal().Err(err).Msg("startup failed")
	}
}
