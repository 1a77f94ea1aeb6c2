// internal/panelstub/server.go

// Package panelstub serves a small in-memory imitation of the Lispico admin
// panel. It honours the same URLs, headings, selectors, success marker and
// delete confirmation flow, so sequences can be exercised without a live
// instance.
package panelstub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	sessionCookie = "_lispico_session"
	flashCookie   = "_lispico_flash"
)

// Options configures the stub.
type Options struct {
	Email    string
	Password string
	// HashKey signs session cookies; a random key is used when empty.
	HashKey []byte
}

// Server is the stub panel.
type Server struct {
	opts      Options
	logger    *zap.Logger
	router    chi.Router
	store     *store
	codec     *securecookie.SecureCookie
	templates *pongo2.TemplateSet
	resources []*resourceSpec
}

// New builds the stub with one seeded record per resource.
func New(opts Options, logger *zap.Logger) *Server {
	if len(opts.HashKey) == 0 {
		opts.HashKey = securecookie.GenerateRandomKey(32)
	}
	s := &Server{
		opts:      opts,
		logger:    logger.Named("panelstub"),
		store:     newStore(),
		codec:     securecookie.New(opts.HashKey, nil),
		templates: pongo2.NewSet("panelstub", embedLoader{}),
		resources: defaultResources(),
	}
	s.seed()
	s.router = s.routes()
	return s
}

func (s *Server) seed() {
	s.store.insert("admin_users", map[string]string{
		"last_name": "Root", "first_name": "Admin", "email": s.opts.Email, "login_enable": "1",
	})
	s.store.insert("members", map[string]string{
		"last_name": "Yamada", "first_name": "Taro", "email": "taro.yamada@example.com",
		"enable_direct_message": "1",
	})
}

// Handler returns the HTTP handler of the stub.
func (s *Server) Handler() http.Handler { return s.router }

// Records returns the current rows of resource, newest first.
func (s *Server) Records(resource string) []Record { return s.store.list(resource) }

// Serve listens on addr until ctx is canceled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Stub panel listening.", zap.String("url", "http://"+ln.Addr().String()+"/admin/login"))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/login", http.StatusFound)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleDashboard)
			r.Get("/logout", s.handleLogout)
			r.Route("/{resource}", func(r chi.Router) {
				r.Get("/", s.handleList)
				r.Get("/create", s.handleCreatePage)
				r.Post("/create", s.handleCreate)
				r.Get("/{id}/edit", s.handleEditPage)
				r.Post("/{id}/edit", s.handleEdit)
				r.Post("/{id}/delete", s.handleDelete)
			})
		})
	})
	return r
}

// -- session --

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		var email string
		if err == nil {
			err = s.codec.Decode(sessionCookie, c.Value, &email)
		}
		if err != nil || email == "" {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setCookie(w http.ResponseWriter, name string, value interface{}) error {
	encoded, err := s.codec.Encode(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name: name, Value: encoded, Path: "/",
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
}

// takeFlash returns and clears the pending flash message.
func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	clearCookie(w, flashCookie)
	var msg string
	if err := s.codec.Decode(flashCookie, c.Value, &msg); err != nil {
		return ""
	}
	return msg
}

// -- handlers --

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login.html", pongo2.Context{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	email, password := r.PostFormValue("email"), r.PostFormValue("password")
	if email != s.opts.Email || password != s.opts.Password {
		s.logger.Debug("Login rejected.", zap.String("email", email))
		s.render(w, http.StatusOK, "login.html", pongo2.Context{
			"email": email,
			"error": "These credentials do not match our records.",
		})
		return
	}
	if err := s.setCookie(w, sessionCookie, email); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, sessionCookie)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

type resourceLink struct {
	Title string
	URL   string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	links := make([]resourceLink, 0, len(s.resources))
	for _, res := range s.resources {
		links = append(links, resourceLink{Title: res.Title, URL: "/admin/" + res.Key})
	}
	s.render(w, http.StatusOK, "dashboard.html", pongo2.Context{"resources": links})
}

type rowView struct {
	ID        int
	Cells     []string
	EditURL   string
	DeleteURL string
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	var columns []string
	for _, f := range res.Fields {
		if f.Listed {
			columns = append(columns, f.Label)
		}
	}
	records := s.store.list(res.Key)
	rows := make([]rowView, 0, len(records))
	for _, rec := range records {
		row := rowView{
			ID:        rec.ID,
			EditURL:   fmt.Sprintf("/admin/%s/%d/edit", res.Key, rec.ID),
			DeleteURL: fmt.Sprintf("/admin/%s/%d/delete", res.Key, rec.ID),
		}
		for _, f := range res.Fields {
			if f.Listed {
				row.Cells = append(row.Cells, rec.Values[f.ID])
			}
		}
		rows = append(rows, row)
	}
	s.render(w, http.StatusOK, "list.html", pongo2.Context{
		"heading":    res.Title,
		"flash":      s.takeFlash(w, r),
		"search":     res.Search,
		"create_url": "/admin/" + res.Key + "/create",
		"columns":    columns,
		"rows":       rows,
	})
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	ID      string
	Label   string
	Type    string
	Value   string
	Options []optionView
}

func fieldViews(specs []fieldSpec, values map[string]string) []fieldView {
	out := make([]fieldView, 0, len(specs))
	for _, f := range specs {
		v := fieldView{ID: f.ID, Label: f.Label, Type: f.Type}
		if !f.Secret {
			v.Value = values[f.ID]
		}
		for _, o := range f.Options {
			v.Options = append(v.Options, optionView{Value: o.Value, Label: o.Label, Selected: values[f.ID] == o.Value})
		}
		out = append(out, v)
	}
	return out
}

func (s *Server) renderForm(w http.ResponseWriter, status int, res *resourceSpec, edit bool, action string, values map[string]string, formErr string) {
	heading := res.Title + " - Create New"
	if edit {
		heading = res.Title + " - Edit"
	}
	s.render(w, status, "form.html", pongo2.Context{
		"heading": heading,
		"action":  action,
		"error":   formErr,
		"fields":  fieldViews(res.formFields(edit), values),
	})
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	s.renderForm(w, http.StatusOK, res, false, "/admin/"+res.Key+"/create", nil, "")
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	values, formErr := s.readForm(r, res, false)
	if formErr != "" {
		s.renderForm(w, http.StatusUnprocessableEntity, res, false, "/admin/"+res.Key+"/create", values, formErr)
		return
	}
	rec := s.store.insert(res.Key, values)
	s.logger.Debug("Record created.", zap.String("resource", res.Key), zap.Int("id", rec.ID))
	s.redirectWithFlash(w, r, res, "OK: "+res.Title+" created")
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	res, rec, ok := s.record(w, r)
	if !ok {
		return
	}
	s.renderForm(w, http.StatusOK, res, true, fmt.Sprintf("/admin/%s/%d/edit", res.Key, rec.ID), rec.Values, "")
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	res, rec, ok := s.record(w, r)
	if !ok {
		return
	}
	action := fmt.Sprintf("/admin/%s/%d/edit", res.Key, rec.ID)
	values, formErr := s.readForm(r, res, true)
	if formErr != "" {
		s.renderForm(w, http.StatusUnprocessableEntity, res, true, action, values, formErr)
		return
	}
	s.store.update(res.Key, rec.ID, values)
	s.logger.Debug("Record updated.", zap.String("resource", res.Key), zap.Int("id", rec.ID))
	s.redirectWithFlash(w, r, res, "OK: "+res.Title+" updated")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	res, rec, ok := s.record(w, r)
	if !ok {
		return
	}
	s.store.delete(res.Key, rec.ID)
	s.logger.Debug("Record deleted.", zap.String("resource", res.Key), zap.Int("id", rec.ID))
	http.Redirect(w, r, "/admin/"+res.Key, http.StatusSeeOther)
}

// -- helpers --

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, res *resourceSpec, msg string) {
	if err := s.setCookie(w, flashCookie, msg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/"+res.Key, http.StatusSeeOther)
}

// readForm collects the non-secret form values and validates required and
// confirmation fields. It returns a user-facing message on failure.
func (s *Server) readForm(r *http.Request, res *resourceSpec, edit bool) (map[string]string, string) {
	if err := r.ParseForm(); err != nil {
		return nil, err.Error()
	}
	values := make(map[string]string)
	var problems []string
	for _, f := range res.formFields(edit) {
		v := strings.TrimSpace(r.PostFormValue(f.ID))
		if f.Required && v == "" {
			problems = append(problems, f.Label+" is required")
		}
		if f.Confirms != "" && v != strings.TrimSpace(r.PostFormValue(f.Confirms)) {
			problems = append(problems, f.Label+" does not match")
		}
		if !f.Secret {
			values[f.ID] = v
		}
	}
	return values, strings.Join(problems, ", ")
}

func (s *Server) resource(w http.ResponseWriter, r *http.Request) (*resourceSpec, bool) {
	key := chi.URLParam(r, "resource")
	for _, res := range s.resources {
		if res.Key == key {
			return res, true
		}
	}
	http.NotFound(w, r)
	return nil, false
}

func (s *Server) record(w http.ResponseWriter, r *http.Request) (*resourceSpec, Record, bool) {
	res, ok := s.resource(w, r)
	if !ok {
		return nil, Record{}, false
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil, Record{}, false
	}
	rec, ok := s.store.get(res.Key, id)
	if !ok {
		http.NotFound(w, r)
		return nil, Record{}, false
	}
	return res, rec, true
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pongo2.Context) {
	tpl, err := s.templates.FromCache(name)
	if err != nil {
		s.logger.Error("Template load failed.", zap.String("template", name), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	out, err := tpl.ExecuteBytes(data)
	if err != nil {
		s.logger.Error("Template render failed.", zap.String("template", name), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
