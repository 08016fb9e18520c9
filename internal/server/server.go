package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/familist/internal/auth"
	"github.com/dukerupert/familist/internal/backup"
	"github.com/dukerupert/familist/internal/config"
	"github.com/dukerupert/familist/internal/email"
	"github.com/dukerupert/familist/internal/handler"
	"github.com/dukerupert/familist/internal/middleware"
	"github.com/dukerupert/familist/internal/push"
	"github.com/dukerupert/familist/internal/reminder"
	"github.com/dukerupert/familist/internal/store"
	ws "github.com/dukerupert/familist/internal/websocket"
)

// Login and register attempts allowed per client IP per minute.
const authRateLimit = 10

type Server struct {
	hub    *ws.Hub
	issuer *auth.TokenIssuer
	users  *store.UserStore

	authH        *handler.AuthHandler
	familyH      *handler.FamilyHandler
	memberH      *handler.MemberHandler
	taskH        *handler.TaskHandler
	reportH      *handler.ReportHandler
	careEventH   *handler.CareEventHandler
	familyEventH *handler.FamilyEventHandler
	calendarH    *handler.CalendarHandler
	chatH        *handler.ChatHandler
	pushH        *handler.PushHandler
	backupH      *handler.BackupHandler

	rateLimiter       *middleware.RateLimiter
	backupManager     *backup.Manager
	reminderScheduler *reminder.Scheduler

	debug       bool
	corsOrigins []string
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, mailer email.Sender, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	userStore := store.NewUserStore(db)
	familyStore := store.NewFamilyStore(db)
	taskStore := store.NewTaskStore(db)
	careEventStore := store.NewCareEventStore(db)
	familyEventStore := store.NewFamilyEventStore(db)
	chatStore := store.NewChatStore(db)
	reportStore := store.NewReportStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)
	notificationStore := store.NewNotificationLogStore(db)

	var pushSvc *push.Service
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber)
	}

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.S3Endpoint,
			Bucket:    cfg.Backup.S3Bucket,
			Region:    cfg.Backup.S3Region,
			AccessKey: cfg.Backup.S3AccessKey,
			SecretKey: cfg.Backup.S3SecretKey,
			Prefix:    cfg.Backup.S3Prefix,
		},
		Passphrase:    cfg.Backup.Passphrase,
		Hour:          cfg.Backup.Hour,
		RetentionDays: cfg.Backup.RetentionDays,
	}, db, backupStore, logger.With("component", "backup"))

	scheduler := reminder.NewScheduler(reminder.Stores{
		Families:      familyStore,
		Users:         userStore,
		Tasks:         taskStore,
		Notifications: notificationStore,
		Push:          pushStore,
	}, mailer, pushSvc, cfg.ReminderHour, cfg.ReminderLocation, logger.With("component", "reminder"))

	var pushH *handler.PushHandler
	if pushSvc.Configured() {
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push"))
	}

	return &Server{
		hub:    hub,
		issuer: issuer,
		users:  userStore,

		authH:        handler.NewAuthHandler(userStore, issuer, logger.With("component", "auth")),
		familyH:      handler.NewFamilyHandler(familyStore, userStore, issuer, hub, logger.With("component", "family")),
		memberH:      handler.NewMemberHandler(userStore, familyStore, mailer, hub, logger.With("component", "member")),
		taskH:        handler.NewTaskHandler(taskStore, userStore, mailer, hub, logger.With("component", "task")),
		reportH:      handler.NewReportHandler(reportStore, taskStore, userStore, logger.With("component", "report")),
		careEventH:   handler.NewCareEventHandler(careEventStore, hub, logger.With("component", "care_event")),
		familyEventH: handler.NewFamilyEventHandler(familyEventStore, hub, logger.With("component", "family_event")),
		calendarH:    handler.NewCalendarHandler(taskStore, familyEventStore, logger.With("component", "calendar")),
		chatH:        handler.NewChatHandler(chatStore, hub, logger.With("component", "chat")),
		pushH:        pushH,
		backupH:      handler.NewBackupHandler(backupStore, backupMgr, logger.With("component", "backup")),

		rateLimiter:       middleware.NewRateLimiter(authRateLimit, time.Minute),
		backupManager:     backupMgr,
		reminderScheduler: scheduler,

		debug:       cfg.Debug,
		corsOrigins: cfg.CORSOrigins,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// ReminderScheduler returns the daily reminder scheduler.
func (s *Server) ReminderScheduler() *reminder.Scheduler {
	return s.reminderScheduler
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(s.logger.With("component", "http")))
	r.Use(middleware.CORS(s.corsOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.Health)
		if s.debug {
			r.Get("/debug/health", handler.DebugHealth)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.rateLimiter))
			r.Post("/auth/register", s.authH.Register)
			r.Post("/auth/login", s.authH.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.issuer, s.users))
			s.registerAccountRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireFamily)
				s.registerFamilyRoutes(r)
			})
		})
	})

	return r
}

// registerAccountRoutes mounts routes open to any signed-in user, including
// those who have not joined a family yet.
func (s *Server) registerAccountRoutes(r chi.Router) {
	r.Get("/auth/me", s.authH.Me)

	r.Get("/family", s.familyH.Get)
	r.Get("/family/list", s.familyH.List)
	r.Post("/family/create", s.familyH.Create)
	r.Post("/family/join/{id}", s.familyH.Join)
}

func (s *Server) registerFamilyRoutes(r chi.Router) {
	r.Get("/members", s.memberH.List)
	r.With(middleware.RequireAdmin).Post("/members", s.memberH.Add)
	r.With(middleware.RequireAdmin).Patch("/members/{id}/role", s.memberH.UpdateRole)

	r.Get("/tasks", s.taskH.List)
	r.Post("/tasks", s.taskH.Create)
	r.Patch("/tasks/{id}", s.taskH.Update)
	r.Get("/tasks/{id}/history", s.taskH.History)
	r.Post("/tasks/{id}/volunteer", s.taskH.Volunteer)
	r.Post("/tasks/{id}/unvolunteer", s.taskH.Unvolunteer)
	r.Post("/tasks/{id}/complete", s.taskH.Complete)
	r.Post("/tasks/{id}/reassign", s.taskH.Reassign)

	r.Get("/reports/fairness", s.reportH.Fairness)
	r.Get("/reports/open", s.reportH.Open)

	// Care records
	r.Get("/events", s.careEventH.List)
	r.Post("/events", s.careEventH.Create)

	r.Get("/family-events", s.familyEventH.List)
	r.Post("/family-events", s.familyEventH.Create)
	r.Put("/family-events/{id}", s.familyEventH.Update)
	r.Delete("/family-events/{id}", s.familyEventH.Delete)

	r.Get("/calendar", s.calendarH.Get)

	r.Get("/chat/threads", s.chatH.ListThreads)
	r.Post("/chat/threads", s.chatH.CreateThread)
	r.Get("/chat/threads/{id}", s.chatH.GetThread)
	r.Post("/chat/threads/{id}/messages", s.chatH.SendMessage)

	if s.pushH != nil {
		r.Get("/push/vapid-key", s.pushH.VAPIDKey)
		r.Post("/push/subscribe", s.pushH.Subscribe)
		r.Get("/push/subscriptions", s.pushH.List)
		r.Delete("/push/subscriptions/{id}", s.pushH.Unsubscribe)
	}

	r.Route("/admin/backups", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/", s.backupH.List)
		r.Post("/", s.backupH.Run)
	})

	r.Get("/ws", ws.HandleWebSocket(s.hub, originHosts(s.corsOrigins), s.logger.With("component", "websocket")))
}

// originHosts converts CORS origins such as http://localhost:5173 into the
// host patterns the WebSocket handshake checks against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		} else {
			hosts = append(hosts, o)
		}
	}
	return hosts
}
