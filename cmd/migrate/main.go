package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/ewhamarket/backend/internal/config"
	"github.com/ewhamarket/backend/internal/migration"
	"github.com/ewhamarket/backend/pkg/kvtree"
	pkglogger "github.com/ewhamarket/backend/pkg/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "database config file (default: $MARKET_DB_CONFIG or "+config.DefaultDBConfigPath+")")
	importPath := flag.String("import", "", "Realtime Database JSON export to import")
	dryRun := flag.Bool("dry-run", false, "show what would be imported without writing")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	flag.Parse()

	config.LoadDotEnv()
	pkglogger.InitStructured(os.Getenv("APP_ENV"))
	log := pkglogger.Component("migrate")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dbCfg, err := config.LoadDBConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load database config")
	}

	// SQL backends create tree_leaves on open
	tree, err := kvtree.Open(ctx, kvtree.Options{
		Driver:    dbCfg.Driver,
		URL:       dbCfg.DatabaseURL,
		Namespace: dbCfg.Namespace,
		PoolSize:  dbCfg.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", dbCfg.Driver).Msg("failed to connect")
	}
	defer tree.Close()
	log.Info().Str("driver", dbCfg.Driver).Msg("schema ready")

	if *importPath == "" {
		return
	}

	f, err := os.Open(*importPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open export")
	}
	defer f.Close()

	report, err := migration.NewImporter(tree, log, *dryRun).Import(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	for _, s := range report.Skipped {
		log.Warn().Str("record", s).Msg("skipped")
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	os.Stdout.Write(append(out, '\n'))
}
