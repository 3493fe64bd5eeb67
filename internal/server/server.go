package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/api"
	"github.com/voltpath/stationfinder/internal/config"
	"github.com/voltpath/stationfinder/internal/geo"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/internal/present"
	"github.com/voltpath/stationfinder/internal/station"
)

// Server is the long-running HTTP surface. Unlike the Lambda handler it keeps
// one session for the whole process, so "use my location" and overlapping
// searches behave like a single dashboard tab.
type Server struct {
	app           *fiber.App
	newFinder     station.FinderFactory
	session       *geo.Session
	defaultCenter models.Coordinate
	started       time.Time
	cache         CacheControl
}

// CacheControl is the element cache as seen by operators
type CacheControl interface {
	Stats() map[string]uint64
	Clear()
}

type Option func(*Server)

// WithCache exposes cache counters on /api/health and /api/cache
func WithCache(c CacheControl) Option {
	return func(s *Server) {
		s.cache = c
	}
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type healthResponse struct {
	Status    string             `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	Uptime    string             `json:"uptime"`
	Location  *models.Coordinate `json:"location,omitempty"`
	Cache     map[string]uint64  `json:"cache,omitempty"`
}

func New(cfg *config.Config, newFinder station.FinderFactory, opts ...Option) *Server {
	s := &Server{
		newFinder:     newFinder,
		session:       geo.NewSession(),
		defaultCenter: cfg.DefaultCenter,
		started:       time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "stationfinder",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTPTimeout,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New())
	s.app.Use(requestLogger)

	s.routes()
	return s
}

func (s *Server) routes() {
	apiGroup := s.app.Group("/api")
	apiGroup.Get("/health", s.health)
	apiGroup.Get("/stations/nearby", s.nearbyStations)
	apiGroup.Post("/location", s.useMyLocation)
	apiGroup.Delete("/location", s.resetLocation)
	apiGroup.Get("/cache/stats", s.cacheStats)
	apiGroup.Delete("/cache", s.clearCache)
}

// App exposes the router, mainly for app.Test in tests
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) nearbyStations(c *fiber.Ctx) error {
	params := c.Queries()

	coord, hasFix, err := api.ParseCoordinates(params)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(api.NewErrorResponse(err.Error()))
	}
	req, err := api.ParseSearchRequest(params)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(api.NewErrorResponse(err.Error()))
	}

	var device geo.Device = geo.NoDevice{}
	if hasFix {
		device = geo.FixedDevice{Coordinate: coord}
	}

	result, err := s.newFinder(device).Search(c.UserContext(), s.session, req)
	if err != nil {
		log.Error().Err(err).Msg("Station search failed")
		return c.Status(http.StatusBadGateway).JSON(api.NewErrorResponse(present.FailureNotice))
	}
	if result.Superseded {
		return c.Status(http.StatusConflict).JSON(api.NewErrorResponse("Search superseded by a newer request"))
	}

	return c.JSON(api.NewSearchResponse(result))
}

// useMyLocation takes a fresh fix from the client and makes it the session's
// cached location for later searches.
func (s *Server) useMyLocation(c *fiber.Ctx) error {
	var body locationRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(api.NewErrorResponse("Invalid request body"))
	}
	if body.Lat == nil || body.Lon == nil {
		return c.Status(http.StatusBadRequest).JSON(api.NewErrorResponse("lat and lon are required"))
	}

	device := geo.FixedDevice{Coordinate: models.Coordinate{Lat: *body.Lat, Lng: *body.Lon}}
	res, err := s.newFinder(device).Locate(c.UserContext(), s.session)
	if err != nil {
		var unavailable *geo.PositionUnavailableError
		if errors.As(err, &unavailable) {
			return c.Status(http.StatusBadRequest).JSON(api.NewErrorResponse(api.InvalidCoordinatesError{}.Error()))
		}
		return c.Status(http.StatusServiceUnavailable).JSON(api.NewErrorResponse(err.Error()))
	}

	return c.JSON(api.NewLocationResponse(res.Coordinate, string(res.Source)))
}

func (s *Server) resetLocation(c *fiber.Ctx) error {
	s.session.Reset()
	return c.JSON(api.NewResetResponse(s.defaultCenter))
}

func (s *Server) health(c *fiber.Ctx) error {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}
	if last, ok := s.session.LastKnown(); ok {
		resp.Location = &last
	}
	if s.cache != nil {
		resp.Cache = s.cache.Stats()
	}
	return c.JSON(resp)
}

func (s *Server) cacheStats(c *fiber.Ctx) error {
	if s.cache == nil {
		return c.JSON(fiber.Map{"status": "disabled"})
	}
	return c.JSON(fiber.Map{"status": "ok", "stats": s.cache.Stats()})
}

func (s *Server) clearCache(c *fiber.Ctx) error {
	if s.cache == nil {
		return c.JSON(fiber.Map{"status": "disabled"})
	}
	s.cache.Clear()
	log.Info().Msg("Element cache cleared")
	return c.JSON(fiber.Map{"status": "cleared"})
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request handled")
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled request error")
	}
	return c.Status(code).JSON(api.NewErrorResponse(http.StatusText(code)))
}
