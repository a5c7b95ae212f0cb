// Package dealerpanel implements the panel CLI: sign-in, cart
// manipulation, catalog browsing, favorites, orders, and the account
// statement, all against one backend and one local cart database.
package dealerpanel

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/panelkit/dealerpanel/internal/api"
	"github.com/panelkit/dealerpanel/internal/auth"
	"github.com/panelkit/dealerpanel/internal/cart"
	"github.com/panelkit/dealerpanel/internal/cart/engine"
	"github.com/panelkit/dealerpanel/internal/cart/storage/sqlite"
	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
	otelplatform "github.com/panelkit/dealerpanel/internal/platform/otel"
	"github.com/panelkit/dealerpanel/internal/platform/timeouts"
)

// Config holds dealerpanel command configuration.
type Config struct {
	APIURL   string
	DataDir  string
	Locale   string
	Token    string
	Username string
	Args     []string
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config. Environment values provide
// defaults; flags override them.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		APIURL:   envOrDefault(lookup, []string{"DEALER_PANEL_API_URL"}, ""),
		DataDir:  envOrDefault(lookup, []string{"DEALER_PANEL_DATA_DIR"}, "."),
		Locale:   envOrDefault(lookup, []string{"DEALER_PANEL_LOCALE"}, "tr-TR"),
		Token:    envOrDefault(lookup, []string{"DEALER_PANEL_TOKEN"}, ""),
		Username: envOrDefault(lookup, []string{"DEALER_PANEL_USER"}, ""),
	}

	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "The panel backend base URL")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the local cart database")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for user-facing messages")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// Run executes one panel command and flushes background cart writes
// before returning.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		return apperrors.New(apperrors.CodeConfigInvalid, "api url is required (-api-url or DEALER_PANEL_API_URL)")
	}

	shutdownTracing, err := otelplatform.Setup(ctx, "dealerpanel")
	if err != nil {
		fmt.Fprintf(errOut, "tracing disabled: %v\n", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	store, err := sqlite.Open(filepath.Join(cfg.DataDir, "cart.db"))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeCartStorageFailed, "open cart database", err)
	}
	defer store.Close()

	session := auth.NewSession()
	if cfg.Token != "" {
		session.SetCredentials(auth.User{Username: cfg.Username}, cfg.Token)
		if session.TokenExpired(time.Now()) {
			expired := apperrors.New(apperrors.CodeAuthSessionExpired, "session token expired")
			fmt.Fprintln(errOut, apperrors.Localize(expired, cfg.Locale))
		}
	}

	client, err := api.New(cfg.APIURL, session)
	if err != nil {
		return err
	}

	eng := engine.New(store, client.Cart(), session)
	if err := eng.LoadLocal(ctx); err != nil {
		fmt.Fprintf(errOut, "local cart unavailable: %v\n", err)
	}

	app := &app{
		cfg:     cfg,
		out:     out,
		errOut:  errOut,
		session: session,
		client:  client,
		engine:  eng,
	}

	runErr := app.dispatch(ctx, cfg.Args)
	app.flush(errOut)

	if runErr != nil {
		fmt.Fprintln(errOut, apperrors.Localize(runErr, cfg.Locale))
	}
	return runErr
}

type app struct {
	cfg     Config
	out     io.Writer
	errOut  io.Writer
	session *auth.Session
	client  *api.Client
	engine  *engine.Engine
}

// flush waits for in-flight background cart writes, bounded so a dead
// backend cannot hang the CLI on exit.
func (a *app) flush(errOut io.Writer) {
	done := make(chan struct{})
	go func() {
		a.engine.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeouts.RemoteFlush):
		fmt.Fprintln(errOut, "timed out waiting for background cart writes")
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}
	verb, rest := args[0], args[1:]
	switch verb {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "cart":
		return a.cart(ctx, rest)
	case "products":
		return a.products(ctx, rest)
	case "favorites":
		return a.favorites(ctx, rest)
	case "orders":
		return a.orders(ctx, rest)
	case "contact":
		return a.contact(ctx, rest)
	case "statement":
		return a.statement(ctx, rest)
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", verb)
	}
}

func (a *app) usage() {
	fmt.Fprintln(a.out, "Usage: dealerpanel <command> [args]")
	fmt.Fprintln(a.out, "")
	fmt.Fprintln(a.out, "Commands:")
	fmt.Fprintln(a.out, "  login <username> <password>     sign in and sync the cart")
	fmt.Fprintln(a.out, "  logout                          sign out")
	fmt.Fprintln(a.out, "  cart show                       print the cart")
	fmt.Fprintln(a.out, "  cart add <stkno> [qty]          add a catalog product")
	fmt.Fprintln(a.out, "  cart set <stkno> <qty>          change a line's quantity")
	fmt.Fprintln(a.out, "  cart remove <stkno>             drop a line")
	fmt.Fprintln(a.out, "  cart clear                      empty the cart")
	fmt.Fprintln(a.out, "  cart sync                       reconcile with the backend")
	fmt.Fprintln(a.out, "  products search <term>          search the catalog")
	fmt.Fprintln(a.out, "  products groups                 list product groups")
	fmt.Fprintln(a.out, "  products show <stkno>           show one product")
	fmt.Fprintln(a.out, "  favorites list|add|remove       manage favorites")
	fmt.Fprintln(a.out, "  orders list|create|stats        orders and dashboard")
	fmt.Fprintln(a.out, "  contact rep|send                reach your representative")
	fmt.Fprintln(a.out, "  statement show|export           account statement")
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <username> <password>")
	}
	user, token, err := a.client.Auth().Login(ctx, api.Credentials{
		Username: args[0],
		Password: args[1],
	})
	if err != nil {
		return err
	}
	a.session.SetCredentials(user, token)

	fmt.Fprintf(a.out, "Signed in as %s\n", user.Username)
	if expiresAt, ok := a.session.TokenExpiresAt(); ok {
		fmt.Fprintf(a.out, "Token valid until %s\n", expiresAt.Format(time.RFC3339))
	}
	fmt.Fprintf(a.out, "Export for later commands:\n  DEALER_PANEL_TOKEN=%s DEALER_PANEL_USER=%s\n", token, user.Username)

	if err := a.engine.SyncWithServer(ctx); err != nil {
		fmt.Fprintf(a.errOut, "cart sync after login: %s\n", apperrors.Localize(err, a.cfg.Locale))
	}
	return a.printCart()
}

func (a *app) logout(ctx context.Context) error {
	a.client.Auth().Logout(ctx)
	a.session.Clear()
	if err := a.engine.HandleLogout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out. Your cart is saved and will be restored at the next sign-in.")
	return nil
}

func (a *app) cart(ctx context.Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "show":
		return a.printCart()
	case "add":
		if len(args) < 1 {
			return fmt.Errorf("usage: cart add <stkno> [qty]")
		}
		quantity := 1
		if len(args) > 1 {
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			quantity = q
		}
		product, err := a.client.Products().Get(ctx, args[0])
		if err != nil {
			return err
		}
		if err := a.engine.AddItem(ctx, product.CartItem(quantity)); err != nil {
			return err
		}
		return a.printCart()
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart set <stkno> <qty>")
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity %q is not a number", args[1])
		}
		if err := a.engine.UpdateQuantity(ctx, args[0], quantity); err != nil {
			return err
		}
		return a.printCart()
	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: cart remove <stkno>")
		}
		if err := a.engine.RemoveItem(ctx, args[0]); err != nil {
			return err
		}
		return a.printCart()
	case "clear":
		if err := a.engine.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Cart cleared.")
		return nil
	case "sync":
		if err := a.engine.SyncWithServer(ctx); err != nil {
			return err
		}
		return a.printCart()
	default:
		return fmt.Errorf("unknown cart command %q", sub)
	}
}

func (a *app) printCart() error {
	snap := a.engine.Snapshot()
	if snap.ItemCount == 0 {
		fmt.Fprintln(a.out, "Cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STOCK NO\tNAME\tQTY\tUNIT PRICE\tLINE TOTAL")
	for _, it := range snap.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f %s\t%.2f %s\n",
			it.StockNo, it.Name, it.Quantity,
			it.Price, currencyOf(it), it.LineTotal(), currencyOf(it))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Total: %d item(s), %.2f %s\n", snap.TotalQuantity, snap.TotalPrice, cart.DefaultCurrency)
	if snap.LastSyncedAt != nil {
		fmt.Fprintf(a.out, "Last synced: %s\n", snap.LastSyncedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintln(a.out, "Not yet synced with the backend.")
	}
	return nil
}

func currencyOf(it cart.Item) string {
	if it.Currency != "" {
		return it.Currency
	}
	return cart.DefaultCurrency
}

func (a *app) products(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: products search|groups|show")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "search":
		if len(rest) == 0 {
			return fmt.Errorf("usage: products search <term>")
		}
		page, err := a.client.Products().Search(ctx, strings.Join(rest, " "), api.ListFilters{})
		if err != nil {
			return err
		}
		return a.printProducts(ctx, page.Products)
	case "groups":
		groups, err := a.client.Products().Groups(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Fprintf(a.out, "%s\t%s\n", g.ID, g.Name)
		}
		return nil
	case "show":
		if len(rest) != 1 {
			return fmt.Errorf("usage: products show <stkno>")
		}
		product, err := a.client.Products().Get(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s  %s\n", product.StockNo, product.Name)
		fmt.Fprintf(a.out, "Price: %.2f %s / %s\n", product.Price, cart.DefaultCurrency, product.Unit)
		if product.GroupName != "" {
			fmt.Fprintf(a.out, "Group: %s\n", product.GroupName)
		}
		if product.Stock != 0 {
			fmt.Fprintf(a.out, "Stock: %.0f\n", product.Stock)
		}
		return nil
	default:
		return fmt.Errorf("unknown products command %q", sub)
	}
}

// printProducts renders a product table, badging favorites when the
// dealer is signed in.
func (a *app) printProducts(ctx context.Context, products []api.Product) error {
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products found.")
		return nil
	}

	var marks map[string]bool
	if a.session.IsAuthenticated() {
		stockNos := make([]string, len(products))
		for i, p := range products {
			stockNos[i] = p.StockNo
		}
		var err error
		marks, err = a.client.Favorites().Check(ctx, stockNos)
		if err != nil {
			marks = nil
		}
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STOCK NO\tNAME\tPRICE\tUNIT\tFAV")
	for _, p := range products {
		fav := ""
		if marks[p.StockNo] {
			fav = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", p.StockNo, p.Name, p.Price, p.Unit, fav)
	}
	return w.Flush()
}

func (a *app) favorites(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		products, err := a.client.Favorites().List(ctx)
		if err != nil {
			return err
		}
		return a.printProducts(ctx, products)
	case "add":
		if len(rest) != 1 {
			return fmt.Errorf("usage: favorites add <stkno>")
		}
		product, err := a.client.Products().Get(ctx, rest[0])
		if err != nil {
			return err
		}
		if err := a.client.Favorites().Add(ctx, product); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Added %s to favorites.\n", product.StockNo)
		return nil
	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("usage: favorites remove <stkno>")
		}
		if err := a.client.Favorites().Remove(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Removed %s from favorites.\n", rest[0])
		return nil
	default:
		return fmt.Errorf("unknown favorites command %q", sub)
	}
}

func (a *app) orders(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		orders, err := a.client.Orders().List(ctx)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			fmt.Fprintln(a.out, "No orders yet.")
			return nil
		}
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER NO\tSTATUS\tTOTAL\tCREATED")
		for _, o := range orders {
			created := ""
			if o.CreatedAt != nil {
				created = o.CreatedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", o.OrderNo, o.Status, o.Total, created)
		}
		return w.Flush()
	case "create":
		snap := a.engine.Snapshot()
		order, err := a.client.Orders().Create(ctx, snap.Items)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Order %s placed (%d items).\n", order.OrderNo, len(snap.Items))
		// The backend empties the cart after a successful order.
		if err := a.engine.SyncWithServer(ctx); err != nil {
			fmt.Fprintf(a.errOut, "cart sync after order: %s\n", apperrors.Localize(err, a.cfg.Locale))
		}
		return nil
	case "stats":
		stats, err := a.client.Orders().DashboardStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Orders: %d (%d pending)\n", stats.OrderCount, stats.PendingOrders)
		fmt.Fprintf(a.out, "Favorites: %d\n", stats.FavoriteCount)
		fmt.Fprintf(a.out, "Cart total: %.2f %s\n", stats.CartTotal, cart.DefaultCurrency)
		return nil
	default:
		return fmt.Errorf("unknown orders command %q", args[0])
	}
}

func (a *app) contact(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"rep"}
	}
	switch args[0] {
	case "rep":
		rep, err := a.client.Contact().Representative(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (%s)\n", rep.Name, rep.Region)
		fmt.Fprintf(a.out, "Phone: %s\n", rep.Phone)
		fmt.Fprintf(a.out, "Email: %s\n", rep.Email)
		return nil
	case "send":
		if len(args) < 3 {
			return fmt.Errorf("usage: contact send <subject> <message>")
		}
		msg := api.Message{Subject: args[1], Body: strings.Join(args[2:], " ")}
		if err := a.client.Contact().Send(ctx, msg); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Message sent.")
		return nil
	default:
		return fmt.Errorf("unknown contact command %q", args[0])
	}
}

func (a *app) statement(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	sub, rest := args[0], args[1:]

	query, rest, err := statementQuery(rest)
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		statement, err := a.client.Extract().Statement(ctx, query)
		if err != nil {
			return err
		}
		if len(statement.Entries) == 0 {
			fmt.Fprintln(a.out, "No statement entries for the period.")
			return nil
		}
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tDOC NO\tDESCRIPTION\tDEBIT\tCREDIT\tBALANCE")
		for _, e := range statement.Entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.2f\n",
				e.Date, e.DocumentNo, e.Description, e.Debit, e.Credit, e.Balance)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Totals: debit %.2f, credit %.2f, balance %.2f\n",
			statement.TotalDebit, statement.TotalCredit, statement.Balance)
		return nil
	case "export":
		if len(rest) != 1 {
			return fmt.Errorf("usage: statement export [start end] <file.xlsx>")
		}
		f, err := os.Create(rest[0])
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		if err := a.client.Extract().ExportExcel(ctx, query, f); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Statement exported to %s\n", rest[0])
		return nil
	default:
		return fmt.Errorf("unknown statement command %q", sub)
	}
}

// statementQuery peels an optional "start end" date pair (YYYY-MM-DD)
// off the front of args.
func statementQuery(args []string) (api.StatementQuery, []string, error) {
	var query api.StatementQuery
	if len(args) < 2 {
		return query, args, nil
	}
	start, err := time.Parse("2006-01-02", args[0])
	if err != nil {
		return query, args, nil
	}
	end, err := time.Parse("2006-01-02", args[1])
	if err != nil {
		return api.StatementQuery{}, nil, fmt.Errorf("end date %q is not YYYY-MM-DD", args[1])
	}
	query.Start = start
	query.End = end
	return query, args[2:], nil
}

func envOrDefault(lookup EnvLookup, keys []string, fallback string) string {
	for _, key := range keys {
		if lookup == nil {
			break
		}
		value, ok := lookup(key)
		if ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}
