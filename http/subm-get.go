package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contest-ops/ccsfeed/ccs"
	"github.com/contest-ops/ccsfeed/httpjson"
	"github.com/contest-ops/ccsfeed/srvcerror"
)

func (httpserver *HttpServer) listSubmissions(w http.ResponseWriter, r *http.Request) {
	subms, err := httpserver.feedSrvc.Submissions(r.Context())
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, srvcerror.ErrInternalSE().SetDebug(err))
		return
	}
	if subms == nil {
		subms = []ccs.Submission{}
	}
	httpjson.WriteJson(w, subms)
}

func (httpserver *HttpServer) getSubmission(w http.ResponseWriter, r *http.Request) {
	subm, err := httpserver.feedSrvc.Submission(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, srvcerror.ErrInternalSE().SetDebug(err))
		return
	}
	if subm == nil {
		httpjson.HandleError(httpserver.logger, w, srvcerror.ErrNotFound("submission"))
		return
	}
	httpjson.WriteJson(w, subm)
}

func (httpserver *HttpServer) listJudgements(w http.ResponseWriter, r *http.Request) {
	judgs, err := httpserver.feedSrvc.Judgements(r.Context())
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, srvcerror.ErrInternalSE().SetDebug(err))
		return
	}
	if judgs == nil {
		judgs = []ccs.Judgement{}
	}
	httpjson.WriteJson(w, judgs)
}

func (httpserver *HttpServer) getJudgement(w http.ResponseWriter, r *http.Request) {
	judg, err := httpserver.feedSrvc.Judgement(r.Context(), chi.URLParam(r, "judgementID"))
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, srvcerror.ErrInternalSE().SetDebug(err))
		return
	}
	if judg == nil {
		httpjson.HandleError(httpserver.logger, w, srvcerror.ErrNotFound("judgement"))
		return
	}
	httpjson.WriteJson(w, judg)
}
