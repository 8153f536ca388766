package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"laonlink/storefront/internal/config"
	"laonlink/storefront/internal/container"
	"laonlink/storefront/internal/domain"
	"laonlink/storefront/internal/navigation"
	"laonlink/storefront/internal/service"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const usage = `Usage: storefront <command> [flags]

Commands:
  generate       write product pages, category landing pages and sitemap.xml
  sitemap        write sitemap.xml only
  images         mirror product images into the output directory
  import         copy the catalog into postgres
  query          browse the catalog from the command line
  categories     list the main categories with product counts
  product <id>   show one product
  serve          serve the catalog API and the generated site

Flags:
`

type queryFlags struct {
	search        string
	category      string
	sub           string
	subsub        string
	minPrice      float64
	maxPrice      float64
	manufacturers []string
	conditions    []string
	sort          string
	page          int
	lang          string
}

func main() {
	flags := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	configFile := flags.String("config", "", "path to config file (default ./config.yaml)")
	flags.String("output", ".", "site output directory")
	flags.String("template", "index.html", "storefront page template")
	flags.String("base-url", "https://laon2link.com", "public site URL")
	flags.String("sitemap", "paths", "sitemap style: paths or query")
	flags.String("source", "file", "catalog source: file, http or postgres")
	flags.String("catalog", "js/products-data.js", "catalog file path")
	flags.String("catalog-url", "", "catalog URL for the http source")
	flags.Bool("repair-specs", false, "repair shifted specification pairs while loading")
	flags.Bool("translate-specs", false, "translate Korean specification terms while loading")
	flags.Int("page-size", navigation.DefaultPageSize, "products per page")
	flags.String("session", "memory", "session backend: memory or redis")
	flags.Int("port", 8080, "serve port")
	flags.String("log-level", "info", "log level")

	var q queryFlags
	flags.StringVarP(&q.search, "search", "q", "", "search term")
	flags.StringVar(&q.category, "category", "", "main category")
	flags.StringVar(&q.sub, "sub", "", "sub category")
	flags.StringVar(&q.subsub, "subsub", "", "sub-sub category")
	flags.Float64Var(&q.minPrice, "min-price", 0, "minimum price in EUR")
	flags.Float64Var(&q.maxPrice, "max-price", 0, "maximum price in EUR")
	flags.StringSliceVar(&q.manufacturers, "manufacturer", nil, "manufacturers to include")
	flags.StringSliceVar(&q.conditions, "condition", nil, "conditions to include: used, new, refurbished")
	flags.StringVar(&q.sort, "sort", "", "sort key: name-asc, name-desc, price-asc, price-desc, newest")
	flags.IntVar(&q.page, "page", 1, "page number")
	flags.StringVar(&q.lang, "lang", "en", "display language: en or kr")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(config.Options{ConfigFile: *configFile, Flags: flags})
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, _ := log.ParseLevel(cfg.Log.Level)
	log.SetLevel(level)
	log.Debug("Configuration loaded successfully")

	if args[0] == "import" {
		cfg.Database.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	err = run(ctx, app, args, q, flags)
	if closeErr := app.Close(); closeErr != nil {
		log.Warnf("⚠️ Failed to close resources: %v", closeErr)
	}
	if err != nil {
		log.Fatalf("Command %s failed: %v", args[0], err)
	}
}

func run(ctx context.Context, app *container.Container, args []string, q queryFlags, flags *pflag.FlagSet) error {
	svc := app.Service

	switch args[0] {
	case "generate":
		return svc.Generate(ctx)
	case "sitemap":
		_, err := svc.Sitemap(ctx)
		return err
	case "images":
		result, err := svc.SyncImages(ctx)
		if err != nil {
			return err
		}
		log.Infof("✅ Images: %d total, %d downloaded, %d skipped, %d failed",
			result.Total, result.Downloaded, result.Skipped, result.Failed)
		return nil
	case "import":
		_, err := svc.Import(ctx)
		return err
	case "query":
		if err := svc.LoadCatalog(ctx); err != nil {
			return err
		}
		result, err := svc.Browse(browseRequest(q, flags))
		if err != nil {
			return err
		}
		return printJSON(result)
	case "categories":
		if err := svc.LoadCatalog(ctx); err != nil {
			return err
		}
		cards, err := svc.Categories(domain.Language(q.lang))
		if err != nil {
			return err
		}
		for _, card := range cards {
			fmt.Printf("%s (%d)\n", card.DisplayName, card.Count)
			for _, sub := range card.Subcategories {
				fmt.Printf("  %s\n", sub.DisplayName)
			}
		}
		return nil
	case "product":
		if len(args) < 2 {
			return fmt.Errorf("product id is required")
		}
		if err := svc.LoadCatalog(ctx); err != nil {
			return err
		}
		view, err := svc.ViewProduct(ctx, "cli", args[1], domain.Language(q.lang))
		if err != nil {
			return err
		}
		return printJSON(view)
	case "serve":
		return app.Serve(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func browseRequest(q queryFlags, flags *pflag.FlagSet) service.BrowseRequest {
	req := service.BrowseRequest{
		Search:   strings.TrimSpace(q.search),
		Sort:     domain.SortKey(q.sort),
		Page:     q.page,
		Language: domain.Language(q.lang),
	}

	for _, name := range []string{q.category, q.sub, q.subsub} {
		if name == "" {
			break
		}
		req.Category = append(req.Category, name)
	}

	changed := flags.Changed
	if !changed("min-price") && !changed("max-price") && !changed("manufacturer") && !changed("condition") {
		return req
	}

	filters := navigation.Filters{Manufacturers: q.manufacturers}
	if changed("min-price") {
		filters.MinPrice = &q.minPrice
	}
	if changed("max-price") {
		filters.MaxPrice = &q.maxPrice
	}
	filters.Conditions = []domain.Condition{domain.DefaultCondition}
	if changed("condition") {
		filters.Conditions = make([]domain.Condition, 0, len(q.conditions))
		for _, c := range q.conditions {
			filters.Conditions = append(filters.Conditions, domain.Condition(strings.ToLower(c)))
		}
	}
	req.Filters = &filters

	return req
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
