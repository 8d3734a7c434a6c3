package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/config"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/jwt"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Shift   ShiftHandler
	Audit   AuditHandler
	Publish PublishHandler
	Grid    GridHandler
	Event   EventHandler
}

func NewRouter(app config.AppConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "shiftops"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)

	allowedOrigins := app.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// token travels in the query string
		r.Get("/events", h.Event.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Post("/events/token", h.Event.IssueStreamToken)

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/", h.Shift.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionShiftManage))
					r.Post("/", h.Shift.Create)
					r.Post("/recurring", h.Shift.CreateRecurring)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Shift.Get)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionShiftExecute))
						r.Post("/start", h.Shift.Start)
						r.Post("/complete", h.Shift.Complete)
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionShiftManage))
						r.Put("/", h.Shift.Update)
						r.Delete("/", h.Shift.Delete)
					})

					r.Route("/audit", func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAuditDecide))
						r.Post("/approve", h.Audit.Approve)
						r.Post("/reject", h.Audit.Reject)
						r.Post("/report-fix", h.Audit.ReportAndFix)
						r.Post("/escalate", h.Audit.Escalate)
					})
				})
			})

			r.Route("/service-types", func(r chi.Router) {
				r.Get("/", h.Shift.ListServiceTypes)
				r.With(middleware.RequirePermission(user.PermissionServiceTypeManage)).Post("/", h.Shift.RegisterServiceType)
			})

			r.Route("/publish", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionSchedulePublish))
				r.Post("/", h.Publish.Publish)
				r.Get("/pending", h.Publish.Pending)
			})

			r.Route("/grid", func(r chi.Router) {
				r.Get("/", h.Grid.Week)
				r.With(middleware.RequirePermission(user.PermissionScheduleExport)).Get("/export", h.Grid.ExportWeek)
			})

			r.With(middleware.RequirePermission(user.PermissionCalendarViewOwn)).Get("/staff/{id}/calendar.ics", h.Grid.StaffCalendar)
		})
	})
	return r
}
