package web

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/lostfound/internal/admin"
	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
	"github.com/erazemk/lostfound/internal/workflow"
	webembed "github.com/erazemk/lostfound/web"
)

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Backend   *client.Client
	Sessions  *session.Manager
	Templates *Templates
	Guard     *workflow.SendGuard
	Consoles  *admin.Registry

	// PollInterval is how often the chat page refreshes its snapshot.
	PollInterval time.Duration
	// ConsoleMaxAge is how long the admin console serves cached rows.
	ConsoleMaxAge time.Duration

	handler http.Handler
	tasks   sync.WaitGroup
}

// ServeHTTP dispatches to the registered routes.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.handler.ServeHTTP(w, r)
}

// track keeps wf's background work visible to Wait.
func (srv *Server) track(wf *workflow.Workflow) {
	srv.tasks.Add(1)
	go func() {
		defer srv.tasks.Done()
		wf.Wait()
	}()
}

// Wait blocks until background work started by requests has finished. It is
// called on shutdown after the HTTP server has stopped.
func (srv *Server) Wait() {
	srv.tasks.Wait()
}

// Options configures NewRouter.
type Options struct {
	DB           *sql.DB
	Backend      *client.Client
	Sessions     *session.Manager
	Gatherer     prometheus.Gatherer
	PollInterval time.Duration
}

// NewRouter creates the portal router: pages, the chat polling API, static
// assets and metrics.
func NewRouter(opts Options) (*Server, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	srv := &Server{
		DB:            opts.DB,
		Backend:       opts.Backend,
		Sessions:      opts.Sessions,
		Templates:     templates,
		Guard:         workflow.NewSendGuard(),
		Consoles:      admin.NewRegistry(),
		PollInterval:  opts.PollInterval,
		ConsoleMaxAge: 30 * time.Second,
	}
	if srv.Sessions != nil {
		srv.Sessions.OnEnd(srv.Consoles.Drop)
	}
	srv.handler = srv.Routes(opts.Gatherer)
	return srv, nil
}

// Routes registers every route with its guard.
func (srv *Server) Routes(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	mux.Handle("/api/", api.NewRouter(srv.Backend, srv.Sessions, srv.Guard))
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Public.
	mux.Handle("GET /{$}", srv.guard(Public, srv.Home))
	mux.Handle("GET /lost-items", srv.guard(Public, srv.ItemsPage(model.ItemTypeLost)))
	mux.Handle("GET /found-items", srv.guard(Public, srv.ItemsPage(model.ItemTypeFound)))
	mux.Handle("GET /item/{id}", srv.guard(Public, srv.ItemDetailPage))
	mux.Handle("POST /logout", srv.guard(Public, srv.Logout))

	// Guests only.
	mux.Handle("GET /login", srv.guard(GuestOnly, srv.LoginPage))
	mux.Handle("POST /login", srv.guard(GuestOnly, srv.LoginSubmit))
	mux.Handle("GET /register", srv.guard(GuestOnly, srv.RegisterPage))
	mux.Handle("POST /register", srv.guard(GuestOnly, srv.RegisterSubmit))

	// Signed in.
	mux.Handle("GET /dashboard", srv.guard(SignedIn, srv.Dashboard))
	mux.Handle("POST /item/{id}/claim", srv.guard(SignedIn, srv.ClaimSubmit))
	mux.Handle("GET /messages", srv.guard(SignedIn, srv.MessagesPage))
	mux.Handle("GET /messages/{claimRequestId}", srv.guard(SignedIn, srv.ChatPage))
	mux.Handle("POST /messages/{claimRequestId}", srv.guard(SignedIn, srv.ChatSend))
	mux.Handle("POST /messages/{claimRequestId}/approve", srv.guard(SignedIn, srv.ChatApprove))
	mux.Handle("POST /messages/{claimRequestId}/reject", srv.guard(SignedIn, srv.ChatReject))
	mux.Handle("POST /messages/{claimRequestId}/complete", srv.guard(SignedIn, srv.ChatComplete))

	// Members (signed-in non-admins) post items.
	for _, kind := range []string{model.ItemTypeLost, model.ItemTypeFound} {
		mux.Handle("GET /post-"+kind, srv.guard(Member, srv.PostPage(kind)))
		mux.Handle("POST /post-"+kind, srv.guard(Member, srv.PostSubmit(kind)))
	}

	// Administrators.
	mux.Handle("GET /admin", srv.guard(AdminOnly, srv.AdminPage))
	mux.Handle("POST /admin/refresh", srv.guard(AdminOnly, srv.AdminRefresh))
	mux.Handle("POST /admin/items/{id}/moderate", srv.guard(AdminOnly, srv.AdminModerate))
	mux.Handle("POST /admin/items/{id}/delete", srv.guard(AdminOnly, srv.AdminDelete))
	mux.Handle("POST /admin/claims/{id}", srv.guard(AdminOnly, srv.AdminUpdateClaim))

	mux.Handle("/", srv.guard(Public, srv.NotFound))

	return mux
}

// NotFound renders the not-found view for unknown paths.
func (srv *Server) NotFound(w http.ResponseWriter, r *http.Request, s *session.Session) {
	srv.Templates.Render(w, http.StatusNotFound, "error.html", &errorPage{
		PageData: PageData{Title: "Not found", Session: s},
		Heading:  "Page not found",
		Alert:    Alert{Message: "There is nothing at this address."},
	})
}
