// Package cli implements the budget command-line client. Each subcommand
// maps onto one API call; session state persists between invocations via
// the session store.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/shaunstone0/stone-budget/internal/client/api"
	"github.com/shaunstone0/stone-budget/internal/client/guard"
	"github.com/shaunstone0/stone-budget/internal/client/session"
)

// App wires the API client, session store, and guards behind subcommands.
type App struct {
	client   *api.Client
	sessions *session.Store
	out      io.Writer
}

// NewApp builds the app against the given server URL. The session file
// lives under the user config directory.
func NewApp(serverURL string, logger *slog.Logger) (*App, error) {
	path, err := session.DefaultPath()
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(path, logger)
	return &App{
		client:   api.New(serverURL, sessions, logger),
		sessions: sessions,
		out:      os.Stdout,
	}, nil
}

const usage = `Usage: budget <command> [flags]

Commands:
  register    Create an account and log in
  login       Log in with email and password
  logout      Log out and clear the stored session
  whoami      Show the current session
  profile     Fetch the profile from the server
  categories  List expense categories
  banks       List bank accounts
  add-bank    Add a bank account
  bills       List bills (supports -month, -status, -page, -limit)
  add-bill    Add a bill
  balances    List monthly balances for a month
  add-balance Record a monthly opening balance
`

// Run dispatches args (without the program name) to a subcommand. It
// returns an exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]

	// A persisted token may have expired since the last run. Reconcile with
	// the server before any guard trusts the stored session; failure clears
	// it, so stale state never passes a guard or reaches a subcommand.
	if a.sessions.IsAuthenticated() {
		a.client.ValidateStoredToken(ctx)
		if view := a.sessions.ConsumePendingRedirect(); view != "" {
			fmt.Fprintln(a.out, "Session expired. Run `budget login` again.")
		}
	}

	// Commands below the auth set need a live session; check up front so
	// the user gets a redirect-style hint instead of a raw 401.
	switch cmd {
	case "profile", "categories", "banks", "add-bank", "bills", "add-bill", "balances", "add-balance":
		if res := guard.NewAuthGuard(a.sessions).Check(cmd); !res.Allowed {
			fmt.Fprintln(a.out, "Not logged in. Run `budget login` first.")
			return 1
		}
	case "login", "register":
		if res := guard.NewGuestGuard(a.sessions).Check(cmd); !res.Allowed {
			fmt.Fprintln(a.out, "Already logged in. Run `budget logout` first.")
			return 1
		}
	}

	var err error
	switch cmd {
	case "register":
		err = a.register(ctx, rest)
	case "login":
		err = a.login(ctx, rest)
	case "logout":
		err = a.logout(ctx)
	case "whoami":
		err = a.whoami()
	case "profile":
		err = a.profile(ctx)
	case "categories":
		err = a.categories(ctx)
	case "banks":
		err = a.banks(ctx)
	case "add-bank":
		err = a.addBank(ctx, rest)
	case "bills":
		err = a.bills(ctx, rest)
	case "add-bill":
		err = a.addBill(ctx, rest)
	case "balances":
		err = a.balances(ctx, rest)
	case "add-balance":
		err = a.addBalance(ctx, rest)
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.IsAuthFailure() {
			fmt.Fprintln(a.out, "Session expired. Run `budget login` again.")
			return 1
		}
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.client.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s <%s>\n", data.User.Name, data.User.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", data.User.Name, data.User.Email)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if !a.sessions.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err := a.client.Logout(ctx); err != nil {
		// The local session is gone either way.
		fmt.Fprintf(a.out, "Logged out locally (server said: %v)\n", err)
		return nil
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) whoami() error {
	snap := a.sessions.Snapshot()
	if !snap.Authenticated {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", snap.User.Name, snap.User.Email)
	return nil
}

func (a *App) profile(ctx context.Context) error {
	user, err := a.client.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\nMember since %s\n", user.Name, user.Email, user.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *App) categories(ctx context.Context) error {
	categories, err := a.client.ListCategories(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	return tw.Flush()
}

func (a *App) banks(ctx context.Context) error {
	banks, err := a.client.ListBanks(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE")
	for _, b := range banks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.Name, b.AccountType)
	}
	return tw.Flush()
}

func (a *App) addBank(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-bank", flag.ContinueOnError)
	name := fs.String("name", "", "bank name")
	accountType := fs.String("type", "checking", "account type: checking, savings, credit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bank, err := a.client.CreateBank(ctx, *name, *accountType)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added bank %s (%s)\n", bank.Name, bank.ID)
	return nil
}

func (a *App) bills(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bills", flag.ContinueOnError)
	month := fs.String("month", "", "filter by month (YYYY-MM)")
	status := fs.String("status", "", "filter by status: paid, unpaid, skipped")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bills, pagination, err := a.client.ListBills(ctx, api.BillFilter{Month: *month, Status: *status}, *page, *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tSTATUS\tDUE")
	for _, b := range bills {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", b.ID, b.Name, b.Amount, b.Status, b.DueDate.Format("2006-01-02"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if pagination != nil {
		fmt.Fprintf(a.out, "Page %d of %d (%d total)\n", pagination.Page, pagination.Pages, pagination.Total)
	}
	return nil
}

func (a *App) addBill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-bill", flag.ContinueOnError)
	name := fs.String("name", "", "bill name")
	amount := fs.Float64("amount", 0, "amount due")
	paymentType := fs.String("payment", "manual", "payment type: auto, manual, online, check")
	categoryID := fs.String("category", "", "category id")
	bankID := fs.String("bank", "", "bank id")
	dueDate := fs.String("due", "", "due date (YYYY-MM-DD)")
	month := fs.String("month", "", "billing month (YYYY-MM)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bill, err := a.client.CreateBill(ctx, api.CreateBillRequest{
		Name:        *name,
		Amount:      *amount,
		PaymentType: *paymentType,
		CategoryID:  *categoryID,
		BankID:      *bankID,
		DueDate:     *dueDate,
		Month:       *month,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added bill %s (%s)\n", bill.Name, bill.ID)
	return nil
}

func (a *App) balances(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("balances", flag.ContinueOnError)
	month := fs.String("month", "", "month (YYYY-MM), required")
	if err := fs.Parse(args); err != nil {
		return err
	}

	balances, err := a.client.ListBalances(ctx, *month)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPERSON\tBANK\tOPENING")
	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", b.ID, b.PersonName, b.BankID, b.OpeningBalance)
	}
	return tw.Flush()
}

func (a *App) addBalance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-balance", flag.ContinueOnError)
	person := fs.String("person", "", "person name")
	bankID := fs.String("bank", "", "bank id")
	month := fs.String("month", "", "month (YYYY-MM)")
	opening := fs.Float64("opening", 0, "opening balance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	balance, err := a.client.CreateBalance(ctx, api.CreateBalanceRequest{
		PersonName:     *person,
		BankID:         *bankID,
		Month:          *month,
		OpeningBalance: *opening,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recorded balance for %s (%s)\n", balance.PersonName, balance.ID)
	return nil
}
