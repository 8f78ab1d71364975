// Command migrate manages the storefront schema with goose.
//
//	migrate [-dir path | -embedded] up|down|status|validate
//	migrate [-dir path | -embedded] to <YYYYMMDDHHMMSS>
//	migrate [-dir path] create <name>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

func main() {
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory on disk")
	embedded := flag.Bool("embedded", false, "use the migrations compiled into the binary")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [flags] up|down|status|validate|to <version>|create <name>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, arg := flag.Arg(0), flag.Arg(1)

	source := *dir
	if *embedded {
		source = ""
	}

	// create and validate only touch files.
	switch cmd {
	case "create":
		if arg == "" {
			fail("create needs a migration name")
		}
		path, err := migrate.CreateSQLMigration(*dir, arg)
		if err != nil {
			fail("create: %v", err)
		}
		fmt.Println("created", path)
		return
	case "validate":
		if err := validateSource(source); err != nil {
			fail("validate: %v", err)
		}
		fmt.Println("migrations ok")
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.With(context.Background(), "env", cfg.App.Env, "cmd", cmd)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	pool, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "database pool unavailable", err)
		os.Exit(1)
	}
	provider, err := migrate.NewProvider(pool, source)
	if err != nil {
		logg.Error(ctx, "could not load migrations", err)
		os.Exit(1)
	}

	switch cmd {
	case "up":
		results, err := provider.Up(ctx)
		report(results, err)
	case "down":
		res, err := provider.Down(ctx)
		var results []*goose.MigrationResult
		if res != nil {
			results = append(results, res)
		}
		report(results, err)
	case "to":
		target, err := migrate.ParseVersion(arg)
		if err != nil {
			fail("to: %v", err)
		}
		results, err := migrate.To(ctx, provider, target)
		report(results, err)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			fail("status: %v", err)
		}
		printStatus(statuses)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func validateSource(source string) error {
	if source == "" {
		return migrate.ValidateFS(migrate.Embedded, migrate.EmbeddedDir)
	}
	return migrate.ValidateDir(source)
}

func report(results []*goose.MigrationResult, err error) {
	for _, res := range results {
		fmt.Printf("%-6s %d %s (%s)\n", res.Direction, res.Source.Version, res.Source.Path, res.Duration.Round(time.Millisecond))
	}
	if err != nil {
		fail("%v", err)
	}
	if len(results) == 0 {
		fmt.Println("nothing to do")
	}
}

func printStatus(statuses []*goose.MigrationStatus) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, st := range statuses {
		applied := "-"
		if !st.AppliedAt.IsZero() {
			applied = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
	}
	_ = w.Flush()
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "migrate: "+format+"\n", args...)
	os.Exit(1)
}
