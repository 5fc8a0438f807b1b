package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountnumber"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
)

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

func usage(f *flag.FlagSet, msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	f.Usage()

	return subcommands.ExitUsageError
}

// envFrom extracts the env passed to Commander.Execute.
func envFrom(args []interface{}) (*env, error) {
	if len(args) == 0 {
		return nil, errors.New("no environment")
	}

	e, ok := args[0].(*env)
	if !ok {
		return nil, fmt.Errorf("unexpected environment %T", args[0])
	}

	return e, nil
}

// connect extracts the env and opens its services.
func connect(args []interface{}) (*env, error) {
	e, err := envFrom(args)
	if err != nil {
		return nil, err
	}

	if err := e.open(); err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	return e, nil
}

func accountArg(f *flag.FlagSet, pos int) (string, bool) {
	if f.NArg() <= pos {
		return "", false
	}

	number := strings.TrimSpace(f.Arg(pos))

	return number, accountnumber.Valid(number)
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply database migrations" }
func (*migrateCmd) Usage() string {
	return `migrate:
	Apply all pending up migrations from MIGRATION_URL.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, err := envFrom(args)
	if err != nil {
		return fail(err)
	}

	applied, err := dbpkg.Migrate(e.config.DBDriver, e.config.DBSource, e.config.MigrationURL)
	if err != nil {
		return fail(err)
	}

	zerolog.Ctx(ctx).Info().Bool("applied", applied).Msg("database schema is up to date")

	if applied {
		fmt.Fprintln(e.out, "Migrations applied.")
	} else {
		fmt.Fprintln(e.out, "Schema is up to date.")
	}

	return subcommands.ExitSuccess
}

type createCmd struct {
	holder  string
	email   string
	phone   string
	address string
	deposit string
}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "open a new account" }
func (*createCmd) Usage() string {
	return `create -holder <name> [-email <email>] [-phone <phone>] [-address <address>] [-deposit <amount>]:
	Open an account and print it.
`
}

func (c *createCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.holder, "holder", "", "account holder name")
	f.StringVar(&c.email, "email", "", "holder email")
	f.StringVar(&c.phone, "phone", "", "holder phone")
	f.StringVar(&c.address, "address", "", "holder address")
	f.StringVar(&c.deposit, "deposit", "0", "initial deposit")
}

func (c *createCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.holder) == "" {
		return usage(f, "holder name is required")
	}

	deposit, err := moneypkg.Parse(c.deposit)
	if err != nil {
		return usage(f, "invalid initial deposit: "+err.Error())
	}

	e, err := connect(args)
	if err != nil {
		return fail(err)
	}

	account, err := e.accounts.CreateAccount(ctx, domain.CreateAccountParams{
		HolderName:     c.holder,
		Email:          c.email,
		Phone:          c.phone,
		Address:        c.address,
		InitialDeposit: deposit,
	})
	if err != nil {
		return fail(err)
	}

	fmt.Fprintln(e.out, "Account created.")

	if err := renderAccount(e.out, account); err != nil {
		return fail(err)
	}

	return subcommands.ExitSuccess
}

// balanceChangeCmd implements both deposit and withdraw.
type balanceChangeCmd struct {
	name        string
	synopsis    string
	typ         domain.TransactionType
	description string
}

func newDepositCmd() *balanceChangeCmd {
	return &balanceChangeCmd{name: "deposit", synopsis: "deposit money into an account", typ: domain.TypeDeposit}
}

func newWithdrawCmd() *balanceChangeCmd {
	return &balanceChangeCmd{name: "withdraw", synopsis: "withdraw money from an account", typ: domain.TypeWithdrawal}
}

func (c *balanceChangeCmd) Name() string     { return c.name }
func (c *balanceChangeCmd) Synopsis() string { return c.synopsis }

func (c *balanceChangeCmd) Usage() string {
	return fmt.Sprintf(`%s [-d <description>] <account_number> <amount>:
	Record a %s and print the new balance.
`, c.name, c.typ)
}

func (c *balanceChangeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "d", "", "transaction description")
}

func (c *balanceChangeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return usage(f, "account number and amount are required")
	}

	number, ok := accountArg(f, 0)
	if !ok {
		return usage(f, "invalid account number: "+f.Arg(0))
	}

	amount, err := moneypkg.Parse(f.Arg(1))
	if err != nil {
		return usage(f, "invalid amount: "+err.Error())
	}

	e, err := connect(args)
	if err != nil {
		return fail(err)
	}

	change := e.accounts.Deposit
	if c.typ == domain.TypeWithdrawal {
		change = e.accounts.Withdraw
	}

	balance, err := change(ctx, number, amount, c.description)
	if err != nil {
		return fail(err)
	}

	fmt.Fprintf(e.out, "New balance of %s: %s\n", number, moneypkg.Format(balance))

	return subcommands.ExitSuccess
}

type balanceCmd struct{}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show the balance of an account" }
func (*balanceCmd) Usage() string {
	return `balance <account_number>:
	Print the current balance of an account.
`
}
func (*balanceCmd) SetFlags(*flag.FlagSet) {}

func (*balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	number, ok := accountArg(f, 0)
	if !ok {
		return usage(f, "a valid account number is required")
	}

	e, err := connect(args)
	if err != nil {
		return fail(err)
	}

	view, err := e.reports.GetBalance(ctx, number)
	if err != nil {
		return fail(err)
	}

	if err := renderBalance(e.out, view); err != nil {
		return fail(err)
	}

	return subcommands.ExitSuccess
}

type historyCmd struct {
	limit int
	all   bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the transaction history of an account" }
func (*historyCmd) Usage() string {
	return `history [-limit <n> | -all] <account_number>:
	Print the most recent transactions of an account, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 10, "number of transactions to show")
	f.BoolVar(&c.all, "all", false, "show all transactions")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	number, ok := accountArg(f, 0)
	if !ok {
		return usage(f, "a valid account number is required")
	}

	limit := int32(c.limit)
	if c.all {
		limit = 0
	}

	e, err := connect(args)
	if err != nil {
		return fail(err)
	}

	history, err := e.reports.GetHistory(ctx, number, limit)
	if err != nil {
		return fail(err)
	}

	if err := renderHistory(e.out, history); err != nil {
		return fail(err)
	}

	return subcommands.ExitSuccess
}

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list all accounts" }
func (*accountsCmd) Usage() string {
	return `accounts:
	Print all accounts, newest first, with the total balance.
`
}
func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, err := connect(args)
	if err != nil {
		return fail(err)
	}

	list, err := e.reports.ListAccounts(ctx)
	if err != nil {
		return fail(err)
	}

	if err := renderAccounts(e.out, list); err != nil {
		return fail(err)
	}

	return subcommands.ExitSuccess
}

type reconcileCmd struct{}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "compare an account balance with its ledger" }
func (*reconcileCmd) Usage() string {
	return `reconcile <account_number>:
	Replay the ledger of an account and compare it with the stored balance.
	Exits with a failure status on mismatch.
`
}
func (*reconcileCmd) SetFlags(*flag.FlagSet) {}

func (*reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	number, ok := accountArg(f, 0)
	if !ok {
		return usage(f, "a valid account number is required")
	}

	e, err := connect(args)
	if err != nil {
		return fail(err)
	}

	r, err := e.reports.Reconcile(ctx, number)
	if err != nil {
		return fail(err)
	}

	if err := renderReconciliation(e.out, r); err != nil {
		return fail(err)
	}

	if !r.Consistent {
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
