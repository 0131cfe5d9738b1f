package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"ordersapi/src/database"
	"ordersapi/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Ordenes CMD"
	app.Usage = "The ordenes command line interface"

	app.Commands = []cli.Command{
		serveCMD,
		migrateCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the orders API server",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the HTTP API server`,
	}
	migrateCMD = cli.Command{
		Name:        "migrate",
		Usage:       "run database migrations and exit",
		Action:      migrateAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the schema migrations against the configured database`,
	}
)

func serveAction(_ *cli.Context) error {
	_ = godotenv.Load()

	logrus.Info("Starting orders API server")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	server.StartServer(server.GetConfig())
	return nil
}

func migrateAction(_ *cli.Context) error {
	_ = godotenv.Load()

	logrus.Info("Running database migrations")

	// InitMainDB runs AutoMigrate as part of its startup.
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Migration failed")
		return err
	}

	logrus.Info("Migrations completed")
	return nil
}
