package services

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/TokDenis/folio/config"
	"github.com/TokDenis/folio/sorting"
	"github.com/TokDenis/folio/types"
	"github.com/kataras/go-sessions/v3"
	"github.com/lab259/cors"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttprouter"
	"strconv"
	"strings"
	"time"
)

// ViewsSource supplies the views maps merged into post listings.
type ViewsSource interface {
	AllViews(ctx context.Context, archived bool) (types.ViewsMap, error)
}

type Api struct {
	cfg      config.Config
	content  *Content
	stats    *Stats
	views    ViewsSource
	sessions *sessions.Sessions
	assets   fasthttp.RequestHandler
	handler  fasthttp.RequestHandler
	now      func() time.Time
}

const (
	SortKey       = "sort"
	SessionCookie = "folio_sid"
	SiteTitle     = "folio"
)

// NewApi wires the routes. Listings merge views from views; pass stats to use
// the local counter.
func NewApi(cfg config.Config, content *Content, stats *Stats, views ViewsSource) *Api {
	if views == nil {
		views = stats
	}

	r := fasthttprouter.New()

	cs := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			fasthttp.MethodHead,
			fasthttp.MethodGet,
			fasthttp.MethodPost,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	api := Api{
		cfg:     cfg,
		content: content,
		stats:   stats,
		views:   views,
		sessions: sessions.New(sessions.Config{
			Cookie:                      SessionCookie,
			Expires:                     24 * time.Hour,
			DisableSubdomainPersistence: true,
		}),
		assets: newAssetsHandler(cfg.AssetsDir),
		now:    time.Now,
	}

	r.GET("/api/views", api.route("views", api.Views(false)))
	r.POST("/api/views", api.route("views", api.TrackView(false)))
	r.GET("/api/views/all", api.route("views_all", api.AllViews(false)))
	r.GET("/api/views/archive", api.route("archive_views", api.Views(true)))
	r.POST("/api/views/archive", api.route("archive_views", api.TrackView(true)))
	r.GET("/api/views/archive/all", api.route("archive_views_all", api.AllViews(true)))

	r.GET("/api/v1/posts", api.route("posts", api.Posts(false)))
	r.GET("/api/v1/archive", api.route("archive", api.Posts(true)))
	r.POST("/api/v1/posts/sort/date", api.route("sort", api.ToggleSort(sorting.ToggleDate)))
	r.POST("/api/v1/posts/sort/views", api.route("sort", api.ToggleSort(sorting.ToggleViews)))
	r.GET("/api/v1/post", api.route("post", api.OpenPost))

	r.GET("/sitemap.xml", api.route("sitemap", api.Sitemap))
	r.GET("/rss.xml", api.route("rss", api.RSS))
	r.GET("/metrics", api.Metrics)
	r.GET("/assets/*filepath", api.Assets)

	api.handler = cs.Handler(r.Handler)

	return &api
}

func (a *Api) Handler() fasthttp.RequestHandler {
	return a.handler
}

// ListenAndServe serves until ctx is done.
func (a *Api) ListenAndServe(ctx context.Context) error {
	s := &fasthttp.Server{
		ReadTimeout:  time.Second * 5,
		IdleTimeout:  time.Second * 5,
		WriteTimeout: time.Second * 5,
		Handler:      a.handler,
		Name:         "folio",
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.Addr).Msg("folio listening")
		errc <- s.ListenAndServe(a.cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

func (a *Api) route(name string, next fasthttprouter.Handle) fasthttprouter.Handle {
	return func(ctx *fasthttp.RequestCtx, p fasthttprouter.Params) {
		next(ctx, p)
		requests.WithLabelValues(name, strconv.Itoa(ctx.Response.StatusCode())).Inc()
	}
}

func (a *Api) internalErr(ctx *fasthttp.RequestCtx, err error) {
	log.Error().Err(err).Str("path", string(ctx.Path())).Send()
	ctx.SetStatusCode(fasthttp.StatusInternalServerError)
}

func (a *Api) writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		a.internalErr(ctx, err)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	_, _ = ctx.Write(b)
}

func (a *Api) badRequest(ctx *fasthttp.RequestCtx, msg string) {
	a.writeJSON(ctx, fasthttp.StatusBadRequest, types.ErrorResponse{Error: msg})
}

func (a *Api) Views(archived bool) fasthttprouter.Handle {
	return func(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
		slug := strings.TrimSpace(string(ctx.QueryArgs().Peek("slug")))
		if slug == "" {
			a.badRequest(ctx, "slug is required")
			return
		}

		views, err := a.stats.Views(ctx, types.PagePath(slug, archived))
		if err != nil {
			a.internalErr(ctx, err)
			return
		}

		a.writeJSON(ctx, fasthttp.StatusOK, types.ViewResponse{Views: views})
	}
}

func (a *Api) TrackView(archived bool) fasthttprouter.Handle {
	return func(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
		var req types.ViewReq

		err := json.Unmarshal(ctx.PostBody(), &req)
		if err != nil || strings.TrimSpace(req.Slug) == "" {
			a.badRequest(ctx, "slug is required")
			return
		}

		views, err := a.stats.Track(ctx, types.PagePath(strings.TrimSpace(req.Slug), archived))
		if err != nil {
			a.internalErr(ctx, err)
			return
		}

		a.writeJSON(ctx, fasthttp.StatusOK, types.ViewResponse{Views: views})
	}
}

func (a *Api) AllViews(archived bool) fasthttprouter.Handle {
	return func(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
		views, err := a.stats.AllViews(ctx, archived)
		if err != nil {
			log.Error().Err(err).Bool("archived", archived).Msg("fetch all views")
			a.writeJSON(ctx, fasthttp.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch views"})
			return
		}

		a.writeJSON(ctx, fasthttp.StatusOK, types.ViewsResponse{Views: views})
	}
}

// Posts lists posts sorted by the key/dir query args, or by the session's setting when absent.
func (a *Api) Posts(archived bool) fasthttprouter.Handle {
	return func(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
		args := ctx.QueryArgs()

		sort := sessionSort(a.sessions.StartFasthttp(ctx))
		if args.Has("key") || args.Has("dir") {
			var err error
			sort, err = sorting.ParseSortSetting(string(args.Peek("key")), string(args.Peek("dir")))
			if err != nil {
				a.badRequest(ctx, err.Error())
				return
			}
		}

		listing := a.listing(ctx, archived, sort, string(args.Peek("category")))
		a.writeJSON(ctx, fasthttp.StatusOK, listing)
	}
}

func (a *Api) listing(ctx context.Context, archived bool, sort sorting.SortSetting, category string) types.Listing {
	var pending bool

	views, err := a.views.AllViews(ctx, archived)
	if err != nil {
		pending = errors.Is(err, ErrViewsPending)
		if !pending {
			log.Error().Err(err).Msg("views for listing")
		}
		views = types.ViewsMap{}
	}

	return BuildListing(a.content.Posts(archived), views, pending, sort, category)
}

// ToggleSort applies action to the session's sort setting and returns the new header.
func (a *Api) ToggleSort(action sorting.Action) fasthttprouter.Handle {
	return func(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
		ses := a.sessions.StartFasthttp(ctx)

		next := sorting.Reduce(sessionSort(ses), action)
		ses.Set(SortKey, next.String())

		a.writeJSON(ctx, fasthttp.StatusOK, sorting.HeaderFor(next))
	}
}

func sessionSort(ses *sessions.Session) sorting.SortSetting {
	value, ok := ses.Get(SortKey).(string)
	if !ok {
		return sorting.DefaultSort
	}

	key, dir, _ := strings.Cut(value, ":")
	sort, err := sorting.ParseSortSetting(key, dir)
	if err != nil {
		return sorting.DefaultSort
	}

	return sort
}

func (a *Api) OpenPost(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	slug := string(ctx.QueryArgs().Peek("slug"))
	archived := ctx.QueryArgs().GetBool("archive")

	post, err := a.content.Find(slug, archived)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			a.writeJSON(ctx, fasthttp.StatusNotFound, types.ErrorResponse{Error: err.Error()})
			return
		}
		a.internalErr(ctx, err)
		return
	}

	a.stats.CountView(post.Page())

	page, err := a.content.Render(post)
	if err != nil {
		a.internalErr(ctx, err)
		return
	}

	a.writeJSON(ctx, fasthttp.StatusOK, page)
}

func (a *Api) Sitemap(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	set := Sitemap(a.cfg.BaseURL, a.content.Posts(false), a.content.Posts(true), a.now())

	ctx.SetContentType("application/xml")
	err := WriteSitemap(ctx, set)
	if err != nil {
		a.internalErr(ctx, err)
		return
	}
}

func (a *Api) RSS(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	rss, err := Feed(SiteTitle, a.cfg.BaseURL, a.content.Posts(false), a.now()).ToRss()
	if err != nil {
		a.internalErr(ctx, err)
		return
	}

	ctx.SetContentType("application/rss+xml")
	_, _ = ctx.WriteString(rss)
}
