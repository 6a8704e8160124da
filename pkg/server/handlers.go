package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/perimeter/pkg/buildinfo"
	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/httputil"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/render"
	"github.com/matzehuels/perimeter/pkg/session"
)

// Terminal frame bounds for frame.txt.
const (
	defaultCols = 100
	defaultRows = 32
	maxCells    = 400
)

type sessionInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	Ticks     uint64    `json:"ticks"`
	Running   bool      `json:"running"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	DPR       float64   `json:"dpr"`
	FPS       float64   `json:"fps"`
	Sections  int       `json:"sections"`
	Hinges    int       `json:"hinges"`
}

func infoOf(sess *session.Session) sessionInfo {
	f := sess.Animator().Frame()
	return sessionInfo{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		LastSeen:  sess.LastSeen(),
		Ticks:     sess.Animator().Ticks(),
		Running:   sess.Running(),
		Width:     f.Container.Width,
		Height:    f.Container.Height,
		DPR:       f.Container.DPR,
		FPS:       f.Config.FPS,
		Sections:  len(f.State.Boxes),
		Hinges:    len(f.State.Hinges),
	}
}

type cursorRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type viewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	// Viewport changes resize the source, so each viewer gets its own copy.
	src := layout.NewStatic(s.scene.Container(), s.scene.Sections())

	opts := []session.Option{session.WithLogger(s.logger)}
	if s.seed != 0 {
		opts = append(opts, session.WithSeed(s.seed))
	}
	if s.refresh > 0 {
		opts = append(opts, session.WithRefresh(s.refresh))
	}
	sess, err := session.New(src, s.cfg, opts...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.publish(sess); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("session created", "id", sess.ID, "live", s.store.Len())

	w.Header().Set("Location", "/sessions/"+sess.ID)
	httputil.WriteJSON(w, http.StatusCreated, infoOf(sess))
}

// publish starts the session loop and then adds the session to the store,
// so a session is never visible without a running loop. The loop is
// stopped again when the store rejects it.
func (s *Server) publish(sess *session.Session) error {
	sess.Start(s.baseCtx)
	if err := s.store.Add(sess); err != nil {
		sess.Stop()
		return err
	}
	return nil
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, infoOf(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(sess.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("session deleted", "id", sess.ID, "live", s.store.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCursor(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req cursorRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.X == nil || req.Y == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "cursor requires x and y"))
		return
	}
	if !finite(*req.X) || !finite(*req.Y) {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "cursor coordinates must be finite"))
		return
	}
	sess.Animator().MoveCursor(*req.X, *req.Y, time.Now())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Animator().LeaveCursor()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req viewportRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if !finite(req.Width) || !finite(req.Height) || req.Width <= 0 || req.Height <= 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "viewport width and height must be positive"))
		return
	}
	if !finite(req.DPR) || req.DPR < 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "viewport dpr must not be negative"))
		return
	}
	sess.Animator().SetViewport(layout.Container{Width: req.Width, Height: req.Height, DPR: req.DPR})
	httputil.WriteJSON(w, http.StatusOK, infoOf(sess))
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if !render.ValidFormats[format] {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: svg, png, txt)", format))
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	glow := q.Get("glow") != "0"
	trail := q.Get("trail") != "0"
	f := sess.Animator().Frame()

	var data []byte
	switch format {
	case render.FormatSVG:
		opts := []render.SVGOption{}
		if !glow {
			opts = append(opts, render.WithoutGlow())
		}
		if !trail {
			opts = append(opts, render.WithoutTrail())
		}
		top, err := queryFloat(q.Get("scroll_top"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		height, err := queryFloat(q.Get("view_height"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if top != 0 || height != 0 {
			opts = append(opts, render.WithScroll(top, height))
		}
		data = render.RenderSVG(f, opts...)
	case render.FormatPNG:
		var err error
		data, err = render.RenderPNG(f, render.WithPNGGlow(glow), render.WithPNGTrail(trail))
		if err != nil {
			s.fail(w, r, err)
			return
		}
	case render.FormatText:
		cols, err := queryInt(q.Get("cols"), defaultCols)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		rows, err := queryInt(q.Get("rows"), defaultRows)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		data = []byte(render.RenderText(f, cols, rows, render.WithPlainText(), render.WithTextTrail(trail)))
	}

	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Frame-Tick", strconv.FormatUint(sess.Animator().Ticks(), 10))
	_, _ = w.Write(data)
}

// session resolves the {id} route parameter, writing the error response
// when the session is missing or expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		return
	}
	s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func queryFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !finite(f) || f < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid number %q", v)
	}
	return f, nil
}

func queryInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > maxCells {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid size %q (must be in [1, %d])", v, maxCells)
	}
	return n, nil
}
