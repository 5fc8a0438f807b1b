// Command bankctl operates the ledger from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

var (
	configDir = flag.String("config", "./configs", "directory holding app.env")
	verbose   = flag.Bool("v", false, "log every operation")
)

func newCommander(fs *flag.FlagSet, name string) *subcommands.Commander {
	commander := subcommands.NewCommander(fs, name)

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&migrateCmd{}, "admin")

	commander.Register(&createCmd{}, "accounts")
	commander.Register(newDepositCmd(), "accounts")
	commander.Register(newWithdrawCmd(), "accounts")

	commander.Register(&balanceCmd{}, "reports")
	commander.Register(&historyCmd{}, "reports")
	commander.Register(&accountsCmd{}, "reports")
	commander.Register(&reconcileCmd{}, "reports")

	return commander
}

func main() {
	commander := newCommander(flag.CommandLine, path.Base(os.Args[0]))

	flag.Parse()

	config, err := configpkg.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	logger := middleware.CreateLogger(config)
	if !*verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	ctx := logger.WithContext(context.Background())

	e := &env{config: config, out: os.Stdout}

	status := commander.Execute(ctx, e)

	e.close()

	os.Exit(int(status))
}
