package main

import (
	"fmt"
	"os"

	"github.com/borderlesshq/apollograph/generator"
	"github.com/gookit/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var generateCmd = &cli.Command{
	Name:  "generate",
	Usage: "generate Swift schema types and operation models from a GraphQL schema",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Value:   generator.DefaultConfigPath,
			Usage:   "path to the codegen configuration file",
		},
		&cli.StringFlag{
			Name:    "string",
			Aliases: []string{"s"},
			Usage:   "inline JSON configuration; takes precedence over --path",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "show debug logs",
		},
		&cli.BoolFlag{
			Name:  "fetch-schema",
			Usage: "download the schema before generating",
		},
		&cli.BoolFlag{
			Name:  "ignore-version-mismatch",
			Usage: "skip the pinned library version check",
		},
	},
	Action: runGenerate,
}

func runGenerate(ctx *cli.Context) error {
	if ctx.Bool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	cfg, err := loadConfiguration(ctx)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if !ctx.Bool("ignore-version-mismatch") {
		if err := generator.CheckVersionMatch("."); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	if ctx.Bool("fetch-schema") {
		color.Yellow.Println("⚡️ Fetching schema...")
		if err := generator.FetchSchema(ctx.Context, cfg, nil); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	if err := generator.New(cfg).Generate(ctx.Context); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	color.Green.Println("✔ Code generation complete")
	return nil
}

func loadConfiguration(ctx *cli.Context) (*generator.Config, error) {
	if inline := ctx.String("string"); inline != "" {
		return generator.ParseConfig(inline)
	}
	return generator.LoadConfig(ctx.String("path"))
}

func main() {
	app := cli.NewApp()
	app.Name = "apollograph"
	app.Usage = "GraphQL client tooling: schema-driven Swift code generation"
	app.Version = generator.Version
	app.Commands = []*cli.Command{generateCmd}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
