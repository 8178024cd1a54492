package types

type ViewReq struct {
	Slug string `json:"slug"`
}

// ViewResponse is the body of the single page views endpoint.
type ViewResponse struct {
	Views int64 `json:"views"`
}

// ViewsResponse is the body of the all-views endpoints.
type ViewsResponse struct {
	Views ViewsMap `json:"views"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
