package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contest-ops/ccsfeed/httpjson"
	"github.com/contest-ops/ccsfeed/srvcerror"
)

// contestCtx rejects any contest id other than the one this bridge serves.
func (httpserver *HttpServer) contestCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "contestID") != httpserver.pkg.ContestID() {
			httpjson.HandleError(httpserver.logger, w, srvcerror.ErrContestNotFound())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (httpserver *HttpServer) apiInfo(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJson(w, map[string]any{
		"version":     "draft",
		"version_url": "https://ccs-specs.icpc.io/draft/contest_api",
		"provider": map[string]any{
			"name": "Algotester to CCS event feed",
		},
	})
}
