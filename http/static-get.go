package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contest-ops/ccsfeed/ccs"
	"github.com/contest-ops/ccsfeed/httpjson"
	"github.com/contest-ops/ccsfeed/srvcerror"
)

func (httpserver *HttpServer) listContests(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJson(w, []ccs.Contest{httpserver.pkg.Contest()})
}

func (httpserver *HttpServer) getContest(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJson(w, httpserver.pkg.Contest())
}

func (httpserver *HttpServer) listJudgementTypes(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJson(w, ccs.JudgementTypes())
}

func (httpserver *HttpServer) getJudgementType(w http.ResponseWriter, r *http.Request) {
	typeID := chi.URLParam(r, "typeID")
	for _, jt := range ccs.JudgementTypes() {
		if jt.ID == typeID {
			httpjson.WriteJson(w, jt)
			return
		}
	}
	httpjson.HandleError(httpserver.logger, w, srvcerror.ErrNotFound("judgement type"))
}

func (httpserver *HttpServer) listLanguages(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJson(w, ccs.Languages())
}

func (httpserver *HttpServer) getLanguage(w http.ResponseWriter, r *http.Request) {
	languageID := chi.URLParam(r, "languageID")
	for _, lang := range ccs.Languages() {
		if lang.ID == languageID {
			httpjson.WriteJson(w, lang)
			return
		}
	}
	httpjson.HandleError(httpserver.logger, w, srvcerror.ErrNotFound("language"))
}

func (httpserver *HttpServer) listProblems(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJson(w, httpserver.pkg.Problems())
}

func (httpserver *HttpServer) getProblem(w http.ResponseWriter, r *http.Request) {
	problem, ok := httpserver.pkg.ProblemByID(chi.URLParam(r, "problemID"))
	if !ok {
		httpjson.HandleError(httpserver.logger, w, srvcerror.ErrNotFound("problem"))
		return
	}
	httpjson.WriteJson(w, problem)
}

func (httpserver *HttpServer) listTeams(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJson(w, httpserver.pkg.Teams())
}

func (httpserver *HttpServer) getTeam(w http.ResponseWriter, r *http.Request) {
	team, ok := httpserver.pkg.TeamByID(chi.URLParam(r, "teamID"))
	if !ok {
		httpjson.HandleError(httpserver.logger, w, srvcerror.ErrNotFound("team"))
		return
	}
	httpjson.WriteJson(w, team)
}
