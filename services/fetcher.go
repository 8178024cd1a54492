package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/TokDenis/folio/types"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

var ErrViewsStatus = errors.New("unexpected views status")
var ErrViewsPending = errors.New("views not loaded yet")

// Doer is satisfied by *fasthttp.Client.
type Doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

// ViewsClient reads view counts from a remote folio (or compatible) views API.
type ViewsClient struct {
	client  Doer
	baseURL string
	retries int
	timeout time.Duration
	backoff time.Duration
}

func NewViewsClient(client Doer, baseURL string, retries int, timeout time.Duration) *ViewsClient {
	if client == nil {
		client = &fasthttp.Client{Name: "folio-views"}
	}
	return &ViewsClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		retries: retries,
		timeout: timeout,
		backoff: 500 * time.Millisecond,
	}
}

// FetchAll returns the slug to views map of the posts or of the archive.
func (c *ViewsClient) FetchAll(ctx context.Context, archived bool) (types.ViewsMap, error) {
	uri := c.baseURL + "/api/views/all"
	if archived {
		uri = c.baseURL + "/api/views/archive/all"
	}

	var res types.ViewsResponse
	err := c.retry(ctx, uri, &res)
	if err != nil {
		return nil, err
	}

	if res.Views == nil {
		res.Views = types.ViewsMap{}
	}
	return res.Views, nil
}

// FetchOne returns the views of a single post.
func (c *ViewsClient) FetchOne(ctx context.Context, slug string, archived bool) (int64, error) {
	uri := c.baseURL + "/api/views"
	if archived {
		uri = c.baseURL + "/api/views/archive"
	}
	uri += "?slug=" + url.QueryEscape(slug)

	var res types.ViewResponse
	err := c.retry(ctx, uri, &res)
	return res.Views, err
}

func (c *ViewsClient) retry(ctx context.Context, uri string, v interface{}) (err error) {
	wait := c.backoff

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}

		err = c.get(uri, v)
		if err == nil {
			return nil
		}

		log.Warn().Err(err).Str("uri", uri).Int("attempt", attempt+1).Msg("fetch views")
	}

	return err
}

func (c *ViewsClient) get(uri string, v interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	err := c.client.DoTimeout(req, resp, c.timeout)
	if err != nil {
		return err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("%w: %d", ErrViewsStatus, resp.StatusCode())
	}

	return json.Unmarshal(resp.Body(), v)
}

type viewsSnapshot struct {
	posts   types.ViewsMap
	archive types.ViewsMap
	at      time.Time
}

// ViewsPoller keeps the latest views maps of a remote service. The most
// recent response replaces whatever was there; a failed refresh leaves
// empty maps so posts show zero views.
type ViewsPoller struct {
	client   *ViewsClient
	interval time.Duration
	snapshot atomic.Pointer[viewsSnapshot]
}

func NewViewsPoller(client *ViewsClient, interval time.Duration) *ViewsPoller {
	return &ViewsPoller{client: client, interval: interval}
}

// Run refreshes immediately and then every interval until ctx is done.
func (p *ViewsPoller) Run(ctx context.Context) error {
	tic := time.NewTicker(p.interval)
	defer tic.Stop()

	for {
		p.Refresh(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-tic.C:
		}
	}
}

func (p *ViewsPoller) Refresh(ctx context.Context) {
	snap := &viewsSnapshot{at: time.Now()}

	posts, err := p.client.FetchAll(ctx, false)
	if err == nil {
		snap.posts = posts
		snap.archive, err = p.client.FetchAll(ctx, true)
	}

	if err != nil {
		viewsFetches.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("refresh views")
		snap.posts = types.ViewsMap{}
		snap.archive = types.ViewsMap{}
	} else {
		viewsFetches.WithLabelValues("ok").Inc()
	}

	p.snapshot.Store(snap)
}

// AllViews returns the last snapshot, or ErrViewsPending before the first refresh finished.
func (p *ViewsPoller) AllViews(_ context.Context, archived bool) (types.ViewsMap, error) {
	snap := p.snapshot.Load()
	if snap == nil {
		return types.ViewsMap{}, ErrViewsPending
	}
	if archived {
		return snap.archive, nil
	}
	return snap.posts, nil
}
