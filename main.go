package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/marketfront/internal/api"
	"github.com/isdelr/marketfront/internal/catalog"
	"github.com/isdelr/marketfront/internal/config"
	"github.com/isdelr/marketfront/internal/listing"
	"github.com/isdelr/marketfront/internal/localstore"
	"github.com/isdelr/marketfront/internal/logger"
	"github.com/isdelr/marketfront/internal/models"
	"github.com/isdelr/marketfront/internal/session"
	"github.com/isdelr/marketfront/internal/view"
	"github.com/isdelr/marketfront/internal/watch"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up the local state store
	db, err := localstore.New(cfg.StatePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open local state store")
	}
	defer db.Close()
	if err := localstore.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate local state store")
	}

	// Set up the API client and the storefront state
	client := api.New(cfg.APIBaseURL)
	sessions := session.NewStore(db, client)
	sessions.Restore()

	loader := catalog.NewLoader(client)
	home := view.NewHome(catalog.DefaultCriteria(cfg.PriceMax))
	overlay := &view.Overlay{}
	workflow := listing.New(client, sessions, cfg.SuccessDisplay)

	// Initial catalog fetch; failure means an empty catalog, not a crash.
	if products, err := loader.LoadAll(context.Background()); err == nil {
		home.SetCatalog(products)
	}

	// Optional background catalog refresh
	var refresher *catalog.Refresher
	if cfg.RefreshCron != "" {
		refresher, err = catalog.NewRefresher(cfg.RefreshCron, loader, home.SetCatalog)
		if err != nil {
			log.Fatal().Err(err).Str("cron", cfg.RefreshCron).Msg("Invalid refresh schedule")
		}
		go refresher.Run()
	}

	// Optional live product events
	var watcher *watch.Watcher
	if cfg.WatchURL != "" {
		watcher = watch.New(cfg.WatchURL, func(watch.Event) {
			if products, err := loader.LoadAll(context.Background()); err == nil && products != nil {
				home.SetCatalog(products)
			}
		})
		go func() {
			if err := watcher.Run(); err != nil {
				log.Warn().Err(err).Msg("Product event stream ended")
			}
		}()
	}

	front := &storefront{
		cfg:      cfg,
		loader:   loader,
		home:     home,
		overlay:  overlay,
		sessions: sessions,
		workflow: workflow,
	}

	done := make(chan struct{})
	go func() {
		front.run(bufio.NewScanner(os.Stdin))
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-done:
	}

	log.Info().Msg("Shutting down")
	if refresher != nil {
		refresher.Stop()
	}
	if watcher != nil {
		watcher.Stop()
	}
}

// storefront is the interactive terminal frontend over the browsing and
// listing state.
type storefront struct {
	cfg      *config.Config
	loader   *catalog.Loader
	home     *view.Home
	overlay  *view.Overlay
	sessions *session.Store
	workflow *listing.Workflow
}

func (f *storefront) run(in *bufio.Scanner) {
	fmt.Println("marketfront - type 'help' for commands")
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		f.dispatch(in, fields[0], fields[1:])
	}
}

func (f *storefront) dispatch(in *bufio.Scanner, cmd string, args []string) {
	ctx := context.Background()
	switch cmd {
	case "help":
		fmt.Print(`  list                      show the catalog with current filters
  search <text>             filter by name (empty to clear)
  sort <newest|price-low|price-high>
  price <min> <max>         inclusive price bounds
  reset                     reset filters
  open <n>                  show details for the nth listed product
  close                     dismiss the detail view
  refresh                   refetch the catalog
  login <email> <password>  sign in
  signup                    create an account
  logout                    sign out
  sell                      list a product for sale
  mine                      show your own listings
  delete <id>               delete one of your listings
  quit
`)
	case "list":
		f.printCatalog()
	case "search":
		f.home.SetSearch(strings.Join(args, " "))
		f.printCatalog()
	case "sort":
		if len(args) != 1 {
			fmt.Println("usage: sort <newest|price-low|price-high>")
			return
		}
		switch key := catalog.SortKey(args[0]); key {
		case catalog.SortNewest, catalog.SortPriceAsc, catalog.SortPriceDesc:
			f.home.SetSort(key)
			f.printCatalog()
		default:
			fmt.Println("unknown sort key:", args[0])
		}
	case "price":
		if len(args) != 2 {
			fmt.Println("usage: price <min> <max>")
			return
		}
		min, err1 := strconv.ParseFloat(args[0], 64)
		max, err2 := strconv.ParseFloat(args[1], 64)
		if err1 != nil || err2 != nil {
			fmt.Println("price bounds must be numbers")
			return
		}
		f.home.SetPriceRange(min, max)
		f.printCatalog()
	case "reset":
		f.home.ResetFilters(f.cfg.PriceMax)
		f.printCatalog()
	case "open":
		f.openDetail(args)
	case "close":
		f.overlay.Close()
		fmt.Println("detail view closed")
	case "refresh":
		if products, err := f.loader.LoadAll(ctx); err != nil {
			fmt.Println("could not refresh:", err)
		} else if products != nil {
			f.home.SetCatalog(products)
			f.printCatalog()
		}
	case "login":
		if len(args) != 2 {
			fmt.Println("usage: login <email> <password>")
			return
		}
		sess, err := f.sessions.Login(ctx, args[0], args[1])
		if err != nil {
			fmt.Println("login failed:", err)
			return
		}
		fmt.Printf("welcome back, %s\n", sess.User.Name)
	case "signup":
		f.signup(ctx, in)
	case "logout":
		f.sessions.Logout()
		fmt.Println("signed out")
	case "sell":
		f.sell(ctx, in)
	case "mine":
		if err := f.workflow.RefreshMine(ctx); err != nil {
			fmt.Println("could not load your listings:", err)
			return
		}
		for _, p := range f.workflow.Mine() {
			fmt.Printf("  %s  %-24s $%.2f\n", p.ID, p.Name, p.Price)
		}
	case "delete":
		f.deleteListing(ctx, in, args)
	default:
		fmt.Println("unknown command:", cmd)
	}
}

func (f *storefront) printCatalog() {
	if f.loader.Loading() {
		fmt.Println("loading products...")
		return
	}
	visible := f.home.Visible()
	if len(visible) == 0 {
		c := f.home.Criteria()
		if c.Search != "" {
			fmt.Printf("no products matching %q\n", c.Search)
		} else {
			fmt.Println("no products available at the moment")
		}
		return
	}
	for i, p := range visible {
		fmt.Printf("  %2d. %-24s $%8.2f  by %s\n", i+1, p.Name, p.Price, p.SellerName)
	}
	fmt.Printf("showing %d products\n", len(visible))
}

func (f *storefront) openDetail(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: open <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	visible := f.home.Visible()
	if err != nil || n < 1 || n > len(visible) {
		fmt.Println("no such product")
		return
	}
	p := visible[n-1]
	f.overlay.Open(p)
	fmt.Printf("%s - $%.2f\n", p.Name, p.Price)
	if p.Description != "" {
		fmt.Println(p.Description)
	}
	fmt.Printf("seller: %s", p.SellerName)
	if p.SellerPhone != "" {
		fmt.Printf(" (%s)", p.SellerPhone)
	}
	fmt.Println()
}

func (f *storefront) signup(ctx context.Context, in *bufio.Scanner) {
	name := prompt(in, "name: ")
	email := prompt(in, "email: ")
	phone := prompt(in, "phone (optional): ")
	password := prompt(in, "password: ")

	sess, err := f.sessions.Signup(ctx, name, email, phone, password)
	if err != nil {
		fmt.Println("signup failed:", err)
		return
	}
	if sess != nil {
		fmt.Printf("welcome, %s\n", sess.User.Name)
		return
	}
	fmt.Println("account created; use 'login' to sign in")
}

func (f *storefront) sell(ctx context.Context, in *bufio.Scanner) {
	if !f.workflow.Available() {
		fmt.Println("login required: please login to list your products for sale")
		return
	}

	f.workflow.SetField("name", prompt(in, "product name: "))
	f.workflow.SetField("price", prompt(in, "price: "))
	f.workflow.SetField("image", prompt(in, "image url: "))

	err := f.workflow.Submit(ctx)
	switch {
	case err == nil:
		fmt.Println("success! your product has been listed")
	case err == listing.ErrValidation:
		for field, msg := range f.workflow.FieldErrors() {
			fmt.Printf("  %s: %s\n", field, msg)
		}
	default:
		fmt.Println(f.workflow.SubmitError())
	}
}

func (f *storefront) deleteListing(ctx context.Context, in *bufio.Scanner, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: delete <id>")
		return
	}
	err := f.workflow.DeleteProduct(ctx, args[0], func(p models.Product) bool {
		answer := prompt(in, fmt.Sprintf("delete %q? [y/N] ", p.Name))
		return strings.EqualFold(answer, "y")
	})
	switch {
	case err == nil:
		fmt.Println("listing deleted")
	case err == listing.ErrDeleteCancelled:
		fmt.Println("kept it")
	default:
		fmt.Println("delete failed:", err)
	}
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
