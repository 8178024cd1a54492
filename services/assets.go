package services

import (
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttprouter"
)

// newAssetsHandler serves the static portfolio front-end from root under /assets/.
func newAssetsHandler(root string) fasthttp.RequestHandler {
	fs := &fasthttp.FS{
		Root:        root,
		IndexNames:  []string{"index.html"},
		Compress:    true,
		PathRewrite: fasthttp.NewPathSlashesStripper(1),
	}

	return fs.NewRequestHandler()
}

func (a *Api) Assets(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	a.assets(ctx)
}
