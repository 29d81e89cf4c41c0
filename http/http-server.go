package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/contest-ops/ccsfeed/cpkg"
	"github.com/contest-ops/ccsfeed/feedsrvc"
)

type HttpServer struct {
	feedSrvc *feedsrvc.FeedSrvc
	pkg      *cpkg.Package
	router   *chi.Mux
	logger   *slog.Logger
}

// NewHttpServer builds the Contest API server. Every endpoint sits behind
// HTTP Basic auth as the CCS spec requires.
func NewHttpServer(
	feedSrvc *feedsrvc.FeedSrvc,
	pkg *cpkg.Package,
	authUsername string,
	authPassword string,
	logger *slog.Logger,
) *HttpServer {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	httpLogger := httplog.NewLogger("ccsfeed", httplog.Options{
		LogLevel:         slog.LevelInfo,
		Concise:          true,
		MessageFieldName: "message",
	})

	router.Use(httplog.RequestLogger(httpLogger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           3000,
	}))

	router.Use(middleware.BasicAuth("ccsfeed", map[string]string{
		authUsername: authPassword,
	}))

	server := &HttpServer{
		feedSrvc: feedSrvc,
		pkg:      pkg,
		router:   router,
		logger:   logger,
	}

	server.routes()

	return server
}

func (httpserver *HttpServer) Start(address string) error {
	return http.ListenAndServe(address, httpserver.router)
}

// Handler exposes the router for tests.
func (httpserver *HttpServer) Handler() http.Handler {
	return httpserver.router
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router
	r.Get("/", httpserver.apiInfo)
	r.Route("/contests", func(r chi.Router) {
		r.Get("/", httpserver.listContests)
		r.Route("/{contestID}", func(r chi.Router) {
			r.Use(httpserver.contestCtx)
			r.Get("/", httpserver.getContest)
			r.Get("/judgement-types", httpserver.listJudgementTypes)
			r.Get("/judgement-types/{typeID}", httpserver.getJudgementType)
			r.Get("/languages", httpserver.listLanguages)
			r.Get("/languages/{languageID}", httpserver.getLanguage)
			r.Get("/problems", httpserver.listProblems)
			r.Get("/problems/{problemID}", httpserver.getProblem)
			r.Get("/teams", httpserver.listTeams)
			r.Get("/teams/{teamID}", httpserver.getTeam)
			r.Get("/submissions", httpserver.listSubmissions)
			r.Get("/submissions/{submissionID}", httpserver.getSubmission)
			r.Get("/judgements", httpserver.listJudgements)
			r.Get("/judgements/{judgementID}", httpserver.getJudgement)
			r.Get("/event-feed", httpserver.eventFeed)
		})
	})
}
