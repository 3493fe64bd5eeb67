package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/api"
	"github.com/voltpath/stationfinder/internal/cache"
	"github.com/voltpath/stationfinder/internal/config"
	"github.com/voltpath/stationfinder/internal/geo"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/internal/overpass"
	"github.com/voltpath/stationfinder/internal/present"
	"github.com/voltpath/stationfinder/internal/station"
	"github.com/voltpath/stationfinder/pkg/http/client"
)

type options struct {
	vehicleType string
	radius      int
	lat         string
	lon         string
	ipLocate    bool
	jsonOutput  bool
	verbose     bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("nearby", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.vehicleType, "type", "", "vehicle energy type: ev, petrol, hybrid, cng")
	fs.IntVar(&opts.radius, "radius", 0, "search radius in meters (default from DEFAULT_RADIUS_METERS)")
	fs.StringVar(&opts.lat, "lat", "", "latitude of the search origin")
	fs.StringVar(&opts.lon, "lon", "", "longitude of the search origin")
	fs.BoolVar(&opts.ipLocate, "iplocate", false, "approximate the origin from this machine's public IP")
	fs.BoolVar(&opts.jsonOutput, "json", false, "print the search response as JSON")
	fs.BoolVar(&opts.verbose, "v", false, "describe map updates")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.radius < 0 {
		return options{}, fmt.Errorf("radius must not be negative")
	}
	return opts, nil
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute owns every deferred cleanup so main can exit with its code
func execute(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpClient := client.New(client.Options{
		Timeout: cfg.OverpassHTTPTimeout,
	})
	source, err := cache.NewSource(ctx, overpass.NewClient(httpClient, cfg.OverpassURL), config.GetCacheConfig())
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize element cache")
		return 1
	}

	return run(ctx, args, stdout, stderr, cfg, source)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, cfg *config.Config, source overpass.ElementSource) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	device, err := deviceFor(opts, cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	finder := station.NewFinderFactory(cfg, source)(device)
	result, err := finder.Search(ctx, geo.NewSession(), station.SearchRequest{
		VehicleType:        models.ParseVehicleEnergyType(opts.vehicleType),
		RadiusMeters:       opts.radius,
		UseCurrentLocation: true,
	})

	renderer := present.NewTextRenderer(stdout)
	renderer.Verbose = opts.verbose
	presenter := present.NewPresenter(renderer, renderer)

	if err != nil {
		log.Debug().Err(err).Msg("Search failed")
		if opts.jsonOutput {
			writeJSON(stdout, api.NewErrorResponse(present.FailureNotice))
		} else {
			presenter.ShowFailure()
		}
		return 1
	}

	if opts.jsonOutput {
		writeJSON(stdout, api.NewSearchResponse(result))
		return 0
	}

	if result.Origin.Warning != nil {
		fmt.Fprintf(stderr, "warning: %v\n", result.Origin.Warning)
	}
	fmt.Fprintf(stdout, "Stations within %d m of %s (%s)\n\n", result.Query.RadiusMeters, result.Origin.Coordinate, result.Origin.Source)
	presenter.Show(result.Stations)
	return 0
}

func deviceFor(opts options, cfg *config.Config) (geo.Device, error) {
	coord, ok, err := api.ParseCoordinates(map[string]string{"lat": opts.lat, "lon": opts.lon})
	if err != nil {
		return nil, fmt.Errorf("invalid -lat/-lon: %w", err)
	}
	switch {
	case ok:
		return geo.FixedDevice{Coordinate: coord}, nil
	case opts.lat != "" || opts.lon != "":
		return nil, fmt.Errorf("-lat and -lon must be given together")
	case opts.ipLocate:
		lookupClient := client.New(client.Options{Timeout: cfg.HTTPTimeout})
		return geo.NewIPDevice(lookupClient, cfg.IPLocatorURL), nil
	default:
		return geo.NoDevice{}, nil
	}
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode output")
	}
}
