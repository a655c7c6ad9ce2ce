package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dukerupert/adorn/internal"
	"github.com/dukerupert/adorn/internal/domain"
	"github.com/spf13/pflag"
)

const usage = `Usage: adorn [flags] <command> [args]

Commands:
  serve                          run the session API
  products [--category slug]     list products
  product <id>                   show one product
  categories                     list categories
  cart [add <id>|qty <id> <n>|rm <id>|clear]
  wishlist [add <id>|rm <id>]
  quote <region>                 price the cart for a delivery region
  regions                        list delivery regions and fees
  checkout --region ... --email ... --payment-method pm_...
  login <email>                  password from ADORN_PASSWORD or stdin
  logout
  whoami
  orders [--status s] [--page n]
  order-status <id> <status> [--note text]
  theme [dark|light|toggle]

Back office (after login):
  admin-products [add <name>|edit <id>|rm <id>]
                 [--price 1500.50] [--stock n] [--category-id id] [--image file]...
  admin-categories [add <slug> <name>|rm <id>] [--description text] [--image file]
  slides [add <title>|rm <id>] [--subtitle s] [--cta text] [--link url] [--order n]
  content [add <page> <section>|rm <id>] [--type json] [--data '{...}']
  users [stats] [--search s] [--role r] [--page n]
  upload <file> [--path folder]

Flags:
`

// command runs one subcommand. args excludes the command name.
type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"serve":        cmdServe,
	"products":     cmdProducts,
	"product":      cmdProduct,
	"categories":   cmdCategories,
	"cart":         cmdCart,
	"wishlist":     cmdWishlist,
	"quote":        cmdQuote,
	"regions":      cmdRegions,
	"checkout":     cmdCheckout,
	"login":        cmdLogin,
	"logout":       cmdLogout,
	"whoami":       cmdWhoami,
	"orders":       cmdOrders,
	"order-status": cmdOrderStatus,
	"theme":        cmdTheme,

	"admin-products":   cmdAdminProducts,
	"admin-categories": cmdAdminCategories,
	"slides":           cmdSlides,
	"content":          cmdContent,
	"users":            cmdUsers,
	"upload":           cmdUpload,
}

// cliFlags holds the per-command flags. They are declared on one FlagSet so
// they may appear before or after the command name.
type cliFlags struct {
	ephemeral bool

	category string

	region        string
	email         string
	mobile        string
	fullName      string
	address       string
	city          string
	paymentMethod string

	status string
	page   int
	note   string

	price       string
	description string
	categoryID  string
	stock       int
	images      []string
	inactive    bool
	subtitle    string
	ctaText     string
	link        string
	order       int
	contentType string
	data        string
	search      string
	role        string
	path        string

	// changed reports whether a flag was given on the command line.
	changed func(name string) bool
}

func newFlagSet(f *cliFlags, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("adorn", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	// Bound to config keys in internal.NewConfig.
	fs.String("env", "", "environment (dev|prod)")
	fs.String("log-level", "", "log level (debug|info|warn|error)")
	fs.String("api-url", "", "storefront backend base URL")
	fs.String("state", "", "state backend (local|memory|redis|postgres|r2|s3)")
	fs.String("state-dir", "", "directory for local state")
	fs.String("listen", "", "session API listen address")

	fs.BoolVar(&f.ephemeral, "ephemeral", false, "keep state in memory only")
	fs.StringVar(&f.category, "category", "", "category slug filter")

	fs.StringVar(&f.region, "region", "", "delivery state")
	fs.StringVar(&f.email, "email", "", "customer email")
	fs.StringVar(&f.mobile, "mobile", "", "customer phone number")
	fs.StringVar(&f.fullName, "name", "", "customer full name")
	fs.StringVar(&f.address, "address", "", "delivery address")
	fs.StringVar(&f.city, "city", "", "delivery city")
	fs.StringVar(&f.paymentMethod, "payment-method", "", "tokenised card (pm_...)")

	fs.StringVar(&f.status, "status", "", "order status filter")
	fs.IntVar(&f.page, "page", 1, "page number")
	fs.StringVar(&f.note, "note", "", "note recorded with a status change")

	fs.StringVar(&f.price, "price", "", "product price in major units")
	fs.StringVar(&f.description, "description", "", "product or category description")
	fs.StringVar(&f.categoryID, "category-id", "", "product category ID")
	fs.IntVar(&f.stock, "stock", 0, "units in stock")
	fs.StringArrayVar(&f.images, "image", nil, "image file to upload (repeatable)")
	fs.BoolVar(&f.inactive, "inactive", false, "hide the product, slide or content block")
	fs.StringVar(&f.subtitle, "subtitle", "", "slide subtitle")
	fs.StringVar(&f.ctaText, "cta", "", "slide button text")
	fs.StringVar(&f.link, "link", "", "slide button link")
	fs.IntVar(&f.order, "order", 0, "slide position")
	fs.StringVar(&f.contentType, "type", "json", "content type")
	fs.StringVar(&f.data, "data", "", "content data as JSON")
	fs.StringVar(&f.search, "search", "", "user search text")
	fs.StringVar(&f.role, "role", "", "user role filter (admin|manager|user)")
	fs.StringVar(&f.path, "path", "", "upload folder, e.g. products")

	f.changed = fs.Changed
	return fs
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var flags cliFlags
	fs := newFlagSet(&flags, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("no command given")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}

	cfg, err := internal.NewConfig(fs)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if flags.ephemeral {
		cfg.State.Provider = "memory"
	}

	logger := internal.NewLogger(stderr, cfg.Env, cfg.LogLevel)

	a, err := newApp(ctx, cfg, logger, &flags, stdin, stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	return cmd(ctx, a, rest[1:])
}

// printError writes err the way a user should see it: field errors one per
// line, internal details hidden.
func printError(w io.Writer, err error) {
	if fields := domain.GetValidationFields(err); len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "error: please correct the following:")
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
		}
		return
	}

	var de *domain.Error
	if errors.As(err, &de) {
		fmt.Fprintf(w, "error: %s\n", domain.ErrorMessage(err))
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
