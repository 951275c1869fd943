package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v3"

	"blogGraph/crud"
	"blogGraph/database"
	"blogGraph/http"
)

// main is the app's entry point.
func main() {
	root := &cli.Command{
		Name:  "blogGraph",
		Usage: "Blogging backend: users, posts, comments, follows and likes over http",
		Flags: []cli.Flag{
			// Provide this flag in production to ensure that a config file is provided before the application starts.
			&cli.BoolFlag{Name: "prod", Usage: "require a config file and run in production mode"},
			&cli.StringFlag{Name: "config", Value: ".config.json", Usage: "path of the json config file"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, initLogger(c.String("log-level"))
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			resetCommand(),
			promoteCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.Run(ctx, os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Migrate the database and serve the http api",
		Action: func(ctx context.Context, c *cli.Command) error {
			config, db, err := setup(c)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return err
			}

			// Start the crud services.
			services, err := crud.NewServices(
				db.Gorm,
				crud.WithUser(config.Pepper, config.HMACKey),
				crud.WithPost(),
				crud.WithComment(),
				crud.WithFollow(),
				crud.WithLike(),
			)
			if err != nil {
				return err
			}

			// Set up a webserver and serve the app.
			server := http.NewServer(services)
			return server.Run(ctx, ":"+strconv.Itoa(config.Port))
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update all tables",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, db, err := setup(c)
			if err != nil {
				return err
			}
			defer database.Close(db)
			return database.AutoMigrate(db)
		},
	}
}

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Drop all tables and create them anew. All data is lost",
		Action: func(ctx context.Context, c *cli.Command) error {
			config, db, err := setup(c)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if config.IsProd() {
				return fmt.Errorf("refusing to reset the production database")
			}
			return database.DestructiveReset(db)
		},
	}
}

func promoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "promote",
		Usage: "Grant the admin role to a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			config, db, err := setup(c)
			if err != nil {
				return err
			}
			defer database.Close(db)

			us := crud.NewUserService(db.Gorm, config.Pepper, config.HMACKey)
			user, err := us.Promote(ctx, c.String("username"))
			if err != nil {
				return err
			}
			slog.Info("promoted user", "username", user.Username, "id", user.ID, "roles", user.Roles)
			return nil
		},
	}
}

// setup loads the configuration and opens a database connection.
// The caller closes the connection.
func setup(c *cli.Command) (Config, *database.DB, error) {
	// If --prod is set, the config file is required and missing it is an error.
	config, err := LoadConfig(c.String("config"), c.Bool("prod"))
	if err != nil {
		return config, nil, err
	}

	dbConfig := config.Database
	db := database.NewDB(dbConfig.Dialect, dbConfig.ConnectionInfo())
	if err := database.Open(db, config.IsProd()); err != nil {
		return config, nil, err
	}
	return config, db, nil
}
