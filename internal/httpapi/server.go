// Package httpapi serves the project services over a JSON REST API.
package httpapi

import (
	"context"

	"github.com/alexanderramin/wbsctl/internal/metrics"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options wires a Server.
type Options struct {
	Services *service.Services
	Auth     AuthConfig
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Health reports store reachability; nil always reports healthy.
	Health func(ctx context.Context) error
}

type Server struct {
	app    *fiber.App
	svc    *service.Services
	health func(ctx context.Context) error
}

func NewServer(opts Options) *Server {
	s := &Server{svc: opts.Services, health: opts.Health}

	s.app = fiber.New(fiber.Config{
		AppName:               "wbsctl",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		BodyLimit:             32 << 20,
		UnescapePath:          true,
	})
	s.app.Use(RequestLogger(opts.Logger.With().Str("component", "http").Logger(), opts.Metrics))
	s.app.Use(Recovery(opts.Logger))

	s.app.Get("/health", s.healthCheck)
	if opts.Gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.app.Group("/api/v1", Auth(opts.Auth))
	s.registerRoutes(v1)
	return s
}

func (s *Server) registerRoutes(v1 fiber.Router) {
	projects := v1.Group("/projects")
	projects.Get("", s.listProjects)
	projects.Post("", s.createProject)
	projects.Post("/import", s.importDocument)
	projects.Get("/:pid", s.getProject)
	projects.Patch("/:pid", s.updateDetails)
	projects.Put("/:pid/charter", s.updateCharter)
	projects.Delete("/:pid", s.deleteProject)
	projects.Get("/:pid/summary", s.summary)
	projects.Get("/:pid/export", s.export)
	projects.Post("/:pid/import", s.importTable)

	tasks := projects.Group("/:pid/tasks")
	tasks.Get("", s.listTasks)
	tasks.Post("", s.addTask)
	tasks.Patch("/:tid", s.updateTask)
	tasks.Delete("/:tid", s.deleteTask)
	tasks.Post("/:tid/move", s.moveTask)
	tasks.Post("/:tid/toggle", s.toggleTask)
	tasks.Post("/:tid/deliverables", s.addDeliverable)
	tasks.Post("/:tid/deliverables/:did/versions", s.addDeliverableVersion)
	tasks.Delete("/:tid/deliverables/:did", s.removeDeliverable)

	depts := projects.Group("/:pid/departments")
	depts.Get("", s.listDepartments)
	depts.Post("", s.addDepartment)
	depts.Patch("/:name", s.updateDepartment)
	depts.Delete("/:name", s.removeDepartment)

	team := projects.Group("/:pid/team")
	team.Post("", s.addMember)
	team.Patch("/:mid", s.updateMember)
	team.Delete("/:mid", s.removeMember)
	team.Post("/:mid/move", s.moveMember)
}

func (s *Server) healthCheck(c *fiber.Ctx) error {
	status, store := "healthy", "ok"
	if s.health != nil {
		if err := s.health(c.UserContext()); err != nil {
			status, store = "unhealthy", "error"
		}
	}
	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "services": fiber.Map{"store": store}})
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) ShutdownWithContext(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
