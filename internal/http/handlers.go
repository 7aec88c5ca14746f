package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"blog/internal/auth"
	"blog/internal/blog"
	"blog/internal/db"
	"blog/internal/metrics"
	"blog/internal/models"
)

// ------------------------------------------------------------------------------
// ------------Listings----------------------------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderListing(w, r, nil)
}

// handleGenre serves the listing of one genre, addressed by its url
// (e.g. /optics).
func (s *Server) handleGenre(w http.ResponseWriter, r *http.Request) {
	g, err := blog.GenreByURL(r.Context(), s.DB, "/"+r.PathValue("genre"))
	if errors.Is(err, db.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.renderListing(w, r, g)
}

func (s *Server) renderListing(w http.ResponseWriter, r *http.Request, g *models.Genre) {
	title, active, filter := "", "/", ""
	if g != nil {
		title, active, filter = g.Name, g.URL, g.Name
	}

	articles, err := blog.ListArticles(r.Context(), s.DB, filter)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data, err := s.newPage(w, r, title)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Active = active
	data.Articles = articles
	s.render(w, r, http.StatusOK, "home.html", data)
}

// ---------------------------------------------------------------------------------
// ------------Login / Logout-------------------------------------------------------

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data, err := s.newPage(w, r, "Log in")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Next = safeNext(r.URL.Query().Get("next"))
	s.render(w, r, http.StatusOK, "login.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var f loginForm
	echo, err := decodeForm(r, &f)
	if err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	next := safeNext(r.URL.Query().Get("next"))

	var sess *auth.Session
	if msgs := s.validationMessages(&f); msgs == nil {
		sess, err = auth.Login(r.Context(), s.DB, f.Email, f.Password, f.Remember, s.lifetimes(), s.now())
	} else {
		err = auth.ErrInvalidLogin
	}
	switch {
	case errors.Is(err, auth.ErrInvalidLogin):
		// same answer for unknown email and wrong password
		s.Log.Info("login FAIL", "email", f.Email)
		metrics.RecordLogin("invalid")
		data, perr := s.newPage(w, r, "Log in")
		if perr != nil {
			s.serverError(w, r, perr)
			return
		}
		data.Form, data.Next = echo, next
		data.errorf("Invalid email or password")
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", data)
		return
	case err != nil:
		metrics.RecordLogin("error")
		s.serverError(w, r, err)
		return
	}

	s.Log.Info("login OK", "uid", sess.User.ID, "remember", sess.Persistent)
	metrics.RecordLogin("ok")

	c := &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if sess.Persistent {
		c.Expires = sess.ExpiresAt
	}
	http.SetCookie(w, c)

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if err := auth.Logout(r.Context(), s.DB, c.Value); err != nil {
			s.Log.Warn("logout", "err", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext only lets through local paths, so ?next= cannot bounce the
// user to another host. Browsers drop tabs and newlines and treat a
// backslash as "/", so "/\t/evil.example" would become "//evil.example".
func safeNext(next string) string {
	if next == "" || strings.ContainsFunc(next, unicode.IsControl) || strings.Contains(next, `\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return ""
	}
	return next
}

// ---------------------------------------------------------------------------------
// ------------Register-------------------------------------------------------------

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	data, err := s.newPage(w, r, "Register")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "register.html", data)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var f registerForm
	echo, err := decodeForm(r, &f)
	if err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	fail := func(result string, msgs ...string) {
		metrics.RecordRegistration(result)
		data, err := s.newPage(w, r, "Register")
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		data.Form = echo
		for _, m := range msgs {
			data.errorf("%s", m)
		}
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", data)
	}

	if msgs := s.validationMessages(&f); msgs != nil {
		fail("invalid", msgs...)
		return
	}

	u, err := auth.Register(r.Context(), s.DB, auth.RegisterInput{
		Name:           f.Name,
		Email:          f.Email,
		Password:       f.Password,
		RepeatPassword: f.RepeatPassword,
	}, s.now())

	var dup *db.DuplicateError
	switch {
	case errors.Is(err, auth.ErrPasswordMismatch):
		fail("mismatch", "Passwords do not match")
		return
	case errors.As(err, &dup):
		s.Log.Info("register duplicate", "column", dup.Column)
		if dup.Column == "email" {
			fail("duplicate", "This email is already registered")
		} else {
			fail("duplicate", "This name is already taken")
		}
		return
	case err != nil:
		metrics.RecordRegistration("error")
		s.serverError(w, r, err)
		return
	}

	s.Log.Info("register OK", "uid", u.ID)
	metrics.RecordRegistration("ok")
	setFlash(w, FlashSuccess, "Registration complete, you can log in now")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ---------------------------------------------------------------------------------
// ------------Profile--------------------------------------------------------------

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("username")
	u, err := blog.ProfileByName(r.Context(), s.DB, name)
	if errors.Is(err, db.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	articles, err := blog.ListAuthorArticles(r.Context(), s.DB, u.Name)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data, err := s.newPage(w, r, u.Name)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Profile = u
	data.Articles = articles
	s.render(w, r, http.StatusOK, "profile.html", data)
}

func (s *Server) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	data, err := s.newPage(w, r, "Profile settings")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if data.User.AboutMe.Valid {
		data.Form = map[string]string{"about": data.User.AboutMe.String}
	}
	s.render(w, r, http.StatusOK, "profile_settings.html", data)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.UserFrom(r.Context())

	var f settingsForm
	echo, err := decodeForm(r, &f)
	if err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	fail := func(msgs ...string) {
		data, err := s.newPage(w, r, "Profile settings")
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		data.Form = echo
		for _, m := range msgs {
			data.errorf("%s", m)
		}
		s.render(w, r, http.StatusUnprocessableEntity, "profile_settings.html", data)
	}

	if msgs := s.validationMessages(&f); msgs != nil {
		fail(msgs...)
		return
	}

	u, err := blog.UpdateProfile(r.Context(), s.DB, me.ID, f.Name, f.About)
	var dup *db.DuplicateError
	switch {
	case errors.As(err, &dup):
		fail("This name is already taken")
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}

	s.Log.Info("profile updated", "uid", u.ID)
	setFlash(w, FlashSuccess, "Profile updated")
	http.Redirect(w, r, "/profile/"+url.PathEscape(u.Name), http.StatusSeeOther)
}

// ---------------------------------------------------------------------------------
// ------------Articles-------------------------------------------------------------

func (s *Server) handleAddArticleForm(w http.ResponseWriter, r *http.Request) {
	data, err := s.newPage(w, r, "New article")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "add_article.html", data)
}

func (s *Server) handleAddArticle(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.UserFrom(r.Context())

	var f articleForm
	echo, err := decodeForm(r, &f)
	if err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	fail := func(msgs ...string) {
		data, err := s.newPage(w, r, "New article")
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		data.Form = echo
		for _, m := range msgs {
			data.errorf("%s", m)
		}
		s.render(w, r, http.StatusUnprocessableEntity, "add_article.html", data)
	}

	if msgs := s.validationMessages(&f); msgs != nil {
		fail(msgs...)
		return
	}

	a, err := blog.CreateArticle(r.Context(), s.DB, me.ID, blog.ArticleInput{
		Genre: f.Genre,
		Title: f.Title,
		Body:  f.Body,
	}, s.now())

	var dup *db.DuplicateError
	switch {
	case errors.Is(err, blog.ErrUnknownGenre):
		fail("Unknown genre")
		return
	case errors.As(err, &dup):
		if dup.Column == "title" {
			fail("An article with this title already exists")
		} else {
			fail("An article with this text already exists")
		}
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}

	s.Log.Info("article created", "uid", me.ID, "article", a.ID)
	metrics.RecordArticle()
	setFlash(w, FlashSuccess, "Article published")
	http.Redirect(w, r, "/profile/"+url.PathEscape(me.Name), http.StatusSeeOther)
}

// ---------------------------------------------------------------------------------
// ------------Errors / health------------------------------------------------------

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	data, err := s.newPage(w, r, "Not found")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusNotFound, "404.html", data)
}

// serverError logs err and shows the 500 page. The failed request's
// writes were already rolled back by db.WithTx.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)

	data := &pageData{Title: "Error"}
	if u, ok := auth.UserFrom(r.Context()); ok {
		data.User = u
	}
	if genres, gerr := s.listGenres(r); gerr == nil {
		data.Genres = genres
	}
	if rerr := s.pages.Render(w, http.StatusInternalServerError, "500.html", data); rerr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.PingContext(r.Context()); err != nil {
		s.Log.Error("healthz", "err", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) listGenres(r *http.Request) ([]models.Genre, error) {
	return blog.ListGenres(r.Context(), s.DB)
}
