package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"blog/internal/app"
	"blog/internal/auth"
	"blog/internal/metrics"
	"blog/internal/models"
	"blog/internal/util"
	"blog/web"
)

type Server struct {
	DB  *sqlx.DB
	Cfg app.Config
	Mux *http.ServeMux
	Log *slog.Logger

	pages    *util.Renderer
	limiter  *RateLimiter
	validate *validator.Validate
	now      func() time.Time
}

func NewServer(d *sqlx.DB, cfg app.Config, log *slog.Logger) (*Server, error) {
	pages, err := util.NewRenderer(web.Templates)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	s := &Server{
		DB:       d,
		Cfg:      cfg,
		Mux:      http.NewServeMux(),
		Log:      log,
		pages:    pages,
		limiter:  NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthBurst),
		validate: newValidator(),
		now:      time.Now,
	}

	s.Mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static)))
	if cfg.MetricsEnabled {
		s.Mux.Handle("GET /metrics", metrics.Handler())
	}
	s.Mux.Handle("GET /healthz", http.HandlerFunc(s.handleHealthz))

	// listings
	s.route("GET /{$}", s.handleIndex)
	s.route("GET /{genre}", s.handleGenre)

	// account
	s.route("GET /login", s.handleLoginForm)
	s.route("POST /login", s.limit(s.handleLogin))
	s.route("GET /logout", s.handleLogout)
	s.route("GET /register", s.handleRegisterForm)
	s.route("POST /register", s.limit(s.handleRegister))

	// authenticated
	s.route("GET /profile/{username}", s.requireAuth(s.handleProfile))
	s.route("GET /profile_settings", s.requireAuth(s.handleSettingsForm))
	s.route("POST /profile_settings", s.requireAuth(s.handleSettings))
	s.route("GET /profile/add_article", s.requireAuth(s.handleAddArticleForm))
	s.route("POST /profile/add_article", s.requireAuth(s.handleAddArticle))

	s.route("/", s.notFound)

	return s, nil
}

// route registers h behind the session middleware, with metrics labelled
// by the pattern.
func (s *Server) route(pattern string, h http.HandlerFunc) {
	s.Mux.Handle(pattern, metrics.Instrument(pattern, s.withSession(h)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.Mux.ServeHTTP(w, r) }

// Handler is the server wrapped in the outer middleware chain.
func (s *Server) Handler() http.Handler {
	return s.WithAccessLog(s.recoverer(WithTimeout(s)))
}

func (s *Server) lifetimes() auth.Lifetimes {
	return auth.Lifetimes{Session: s.Cfg.SessionLifetime, Remember: s.Cfg.RememberLifetime}
}

// ----------------------------
// Page data
// ----------------------------

type pageData struct {
	Title    string
	Active   string // URL of the highlighted genre tab
	User     *models.User
	Genres   []models.Genre
	Flashes  []Flash
	Form     map[string]string
	Next     string
	Articles []models.ArticleView
	Profile  *models.User
}

// newPage collects what the layout needs: the viewer, the genre tabs and
// any pending flash message.
func (s *Server) newPage(w http.ResponseWriter, r *http.Request, title string) (*pageData, error) {
	genres, err := s.listGenres(r)
	if err != nil {
		return nil, err
	}
	data := &pageData{Title: title, Genres: genres, Flashes: popFlash(w, r)}
	if u, ok := auth.UserFrom(r.Context()); ok {
		data.User = u
	}
	return data, nil
}

func (data *pageData) errorf(format string, args ...any) {
	data.Flashes = append(data.Flashes, Flash{Category: FlashError, Message: fmt.Sprintf(format, args...)})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data *pageData) {
	if err := s.pages.Render(w, status, name, data); err != nil {
		s.serverError(w, r, err)
	}
}
