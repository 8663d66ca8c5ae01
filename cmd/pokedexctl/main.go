package main

import (
	"fmt"
	"log"
	"os"

	"pokedex-backend/internal/config"
	"pokedex-backend/internal/di"
	"pokedex-backend/internal/repository/ddb"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	cliApp := &cli.App{
		Name:  "pokedexctl",
		Usage: "operate the pokedex table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory holding base.yaml and <env>.yaml",
				Value:   "config",
				EnvVars: []string{"CONFIG_DIR"},
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "deployment environment",
				Value:   string(config.Development),
				EnvVars: []string{"ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:  "table",
				Usage: "override the configured table name",
			},
		},
		Commands: []*cli.Command{
			createTableCommand(),
			seedCommand(),
			listCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withContainer loads configuration from the global flags, builds the
// container, runs fn and closes the container.
func withContainer(c *cli.Context, fn func(*di.Container) error) error {
	cfg, err := config.NewLoader(c.String("config-dir"), config.Environment(c.String("env"))).Load()
	if err != nil {
		return err
	}
	if table := c.String("table"); table != "" {
		cfg.Database.TableName = table
	}

	container, err := di.InitializeContainer(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	return fn(container)
}

func createTableCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-table",
		Usage: "create the table if it does not exist",
		Action: func(c *cli.Context) error {
			return withContainer(c, func(container *di.Container) error {
				table := container.Config.Database.TableName
				created, err := ddb.EnsureTable(c.Context, container.DynamoDB, table, container.Logger)
				if err != nil {
					return err
				}
				if created {
					fmt.Printf("Created table %s\n", table)
				} else {
					fmt.Printf("Table %s already exists\n", table)
				}
				return nil
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "replace the table contents with the upstream reference page",
		Action: func(c *cli.Context) error {
			return withContainer(c, func(container *di.Container) error {
				message, err := container.SeedService.Execute(c.Context)
				if err != nil {
					container.Logger.Error("seed failed", zap.Error(err))
					return err
				}
				fmt.Println(message)
				return nil
			})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "print a page of records",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 10},
			&cli.IntFlag{Name: "offset", Value: 0},
		},
		Action: func(c *cli.Context) error {
			return withContainer(c, func(container *di.Container) error {
				items, err := container.PokemonService.List(c.Context, c.Int("limit"), c.Int("offset"))
				if err != nil {
					return err
				}
				for _, p := range items {
					fmt.Printf("%4d  %-20s  %s\n", p.No, p.Name, p.ID)
				}
				return nil
			})
		},
	}
}
