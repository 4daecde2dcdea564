package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/quietwren/gemjournal/internal"
	"github.com/quietwren/gemjournal/internal/cryptstore"
	pkgconfig "github.com/quietwren/gemjournal/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func cliLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Run(ctx, internal.WithConfig(cfg))
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := internal.BuildService(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := svc.GetEntries(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d valid entries\n", len(entries))
	return nil
}

func toggleAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := internal.BuildService(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	path, id := cmd.Args().Get(0), cmd.Args().Get(1)
	updated, err := svc.TogglePublish(ctx, path, id)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("entry not found: %s", id)
	}
	fmt.Printf("toggled publish flag of entry %s in %s\n", id, path)
	return nil
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := internal.BuildService(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	outDir := cmd.String("out")
	if outDir == "" {
		outDir = cfg.Journal.ExportDir
	}
	written, err := svc.Export(ctx, cmd.Args().First(), outDir)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Println(p)
	}
	if len(written) == 0 {
		fmt.Println("no entries marked for publication")
	}
	return nil
}

func reindexAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := internal.BuildService(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := svc.Reindex(ctx); err != nil {
		return err
	}
	if dir := cmd.String("artifacts"); dir != "" {
		if err := svc.WriteCollectionArtifacts(ctx, dir); err != nil {
			return err
		}
	}
	fmt.Println("index synchronized")
	return nil
}

func keygenAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := cryptstore.Generate()
	if err != nil {
		return err
	}
	if err := store.ExportKey(cfg.Crypto.KeyFile); err != nil {
		return err
	}
	fmt.Printf("key written to %s\n", cfg.Crypto.KeyFile)
	return nil
}

func encryptAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := cryptstore.FromKeyFile(cfg.Crypto.KeyFile)
	if err != nil {
		return err
	}
	migrated, err := store.MigrateDir(cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}
	for _, p := range migrated {
		fmt.Println(p)
	}
	fmt.Printf("encrypted %d journal files\n", len(migrated))
	return nil
}

func decryptAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := cryptstore.FromKeyFile(cfg.Crypto.KeyFile)
	if err != nil {
		return err
	}
	encPath, jsonPath := cmd.Args().Get(0), cmd.Args().Get(1)
	if err := store.ExportToJSON(encPath, jsonPath); err != nil {
		return err
	}
	fmt.Printf("decrypted %s to %s\n", encPath, jsonPath)
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "gemjournal",
		Usage: "Validating persistence pipeline for gem journal files with publish marking, redacted export, and encrypted archives",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API server with file watching and SSE",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the journal tools over stdio for MCP clients",
				Action: mcpAction,
			},
			{
				Name:      "validate",
				Usage:     "Parse and validate a journal file",
				ArgsUsage: "<path>",
				Action:    validateAction,
			},
			{
				Name:      "toggle",
				Usage:     "Flip the publish flag of an entry",
				ArgsUsage: "<path> <entry-id>",
				Action:    toggleAction,
			},
			{
				Name:      "export",
				Usage:     "Export published entries to redacted Markdown",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output directory (defaults to journal.export_dir)",
					},
				},
				Action: exportAction,
			},
			{
				Name:  "reindex",
				Usage: "Synchronize the SQLite index with the journal roots",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "artifacts",
						Usage: "Also write journal_index.json and journal_manifest.json into this directory",
					},
				},
				Action: reindexAction,
			},
			{
				Name:   "keygen",
				Usage:  "Generate an encryption key and write it to crypto.key_file",
				Action: keygenAction,
			},
			{
				Name:      "encrypt",
				Usage:     "Encrypt every journal file in a directory into .enc archives",
				ArgsUsage: "<json-dir> <enc-dir>",
				Action:    encryptAction,
			},
			{
				Name:      "decrypt",
				Usage:     "Decrypt an .enc archive back to a journal file",
				ArgsUsage: "<enc-path> <json-path>",
				Action:    decryptAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
