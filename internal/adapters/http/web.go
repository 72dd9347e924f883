package web

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sgc/internal/adapters/http/middleware"
	"sgc/internal/adapters/http/perf"
	accountStore "sgc/internal/adapters/storage/account"
	attendanceStore "sgc/internal/adapters/storage/attendance"
	feedbackStore "sgc/internal/adapters/storage/feedback"
	memberStore "sgc/internal/adapters/storage/member"
	outboxStore "sgc/internal/adapters/storage/outbox"
	"sgc/internal/application/orchestrators"
	"sgc/internal/domain/report"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	MemberStore     memberStore.Store
	AttendanceStore attendanceStore.Store
	FeedbackStore   feedbackStore.Store
	OutboxStore     outboxStore.Store
}

// Options configures NewMux.
type Options struct {
	// CSRFKey is the 32-byte gorilla/csrf key. Nil means a random per-process key.
	CSRFKey []byte
	// Production turns on Secure cookies and HTTPS-only CSRF origin checks.
	Production     bool
	TrustedOrigins []string
	// RateLimitPerSecond is the per-IP request budget. Zero means RateLimitPerSecond.
	RateLimitPerSecond int
	SlowRequest        time.Duration
	Report             report.Options
	// Telegram reports whether a bot is configured for daily shares.
	Telegram  bool
	Collector *perf.Collector
	// Outbox, when set, lets admins flush pending notifications from the dashboard.
	Outbox *orchestrators.OutboxProcessor
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond is the default per-IP rate limit.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

var reportOptions = report.DefaultOptions()

var telegramEnabled bool

var outboxProcessor *orchestrators.OutboxProcessor

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set
// POST: handler chain is SecurityHeaders, CSRF, Auth, RateLimit, Timing, routes
func NewMux(s *Stores, opts Options) http.Handler {
	configure(s, opts)

	csrfKey := opts.CSRFKey
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			panic("csrf key: " + err.Error())
		}
		slog.Warn("csrf_key_random", "detail", "forms posted before a restart will be rejected; set SGC_CSRF_KEY")
	}

	rate := opts.RateLimitPerSecond
	if rate <= 0 {
		rate = RateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	return middleware.Chain(routes(),
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, opts.Production, opts.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequest),
	)
}

// configure sets the package state shared by handlers.
func configure(s *Stores, opts Options) {
	stores = s
	perfCollector = opts.Collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Production
	telegramEnabled = opts.Telegram
	outboxProcessor = opts.Outbox
	reportOptions = opts.Report
	if reportOptions.Threshold <= 0 {
		reportOptions.Threshold = report.DefaultThreshold
	}
}

// routes registers every page on a fresh mux.
func routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/member", handleMemberLookup)
	mux.HandleFunc("/feedback", handlePublicFeedback)
	mux.HandleFunc("/healthz", handleHealthz)

	mux.HandleFunc("/admin", handleAdminLanding)
	mux.HandleFunc("/admin/login", handleLogin)
	mux.HandleFunc("/admin/logout", handleLogout)

	admin := middleware.RequireAdmin(sessions, authorizeAdmin)
	mux.Handle("/admin/dashboard", admin(http.HandlerFunc(handleDashboard)))
	mux.Handle("/admin/members", admin(http.HandlerFunc(handleMembers)))
	mux.Handle("/admin/members/edit", admin(http.HandlerFunc(handleMemberEdit)))
	mux.Handle("/admin/members/delete", admin(http.HandlerFunc(handleMembersDelete)))
	mux.Handle("/admin/attendance", admin(http.HandlerFunc(handleAttendance)))
	mux.Handle("/admin/attendance/share", admin(http.HandlerFunc(handleAttendanceShare)))
	mux.Handle("/admin/reports", admin(http.HandlerFunc(handleReports)))
	mux.Handle("/admin/reports/export", admin(http.HandlerFunc(handleReportExport)))
	mux.Handle("/admin/feedback", admin(http.HandlerFunc(handleFeedbackConsole)))
	mux.Handle("/admin/feedback/status", admin(http.HandlerFunc(handleFeedbackStatus)))
	mux.Handle("/admin/feedback/delete", admin(http.HandlerFunc(handleFeedbackDelete)))
	mux.Handle("/admin/outbox", admin(http.HandlerFunc(handleAdminOutbox)))

	return mux
}

// authorizeAdmin re-applies the role gate to a live session.
func authorizeAdmin(ctx context.Context, email string) error {
	_, err := orchestrators.ExecuteAuthorizeAdmin(ctx,
		orchestrators.AuthorizeAdminInput{Email: email},
		orchestrators.AuthorizeAdminDeps{MemberStore: stores.MemberStore},
	)
	if errors.Is(err, orchestrators.ErrRoleNotAllowed) {
		return errors.Join(middleware.ErrForbidden, err)
	}
	return err
}
