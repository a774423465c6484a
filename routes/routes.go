package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/mbolis/formbuilder/app"
	"github.com/mbolis/formbuilder/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)
	root.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Route("/auth", func(r chi.Router) {
		r.Post("/register", Register(app))
		r.Post("/login", Login(app))
	})

	api.Route("/forms", func(r chi.Router) {
		// public: fill-out view and submission
		r.Get(`/public/{id:^\d+$}`, PublicGetForm(app))
		r.Post(`/{id:^\d+$}/submit`, SubmitResponse(app))

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(app.TokenAuth), middlewares.Authenticator)

			r.Post("/publish", PublishForm(app))
			r.Get("/", ListForms(app))
			r.Get(`/{id:^\d+$}/edit`, EditForm(app))
			r.Get(`/{id:^\d+$}/responses`, ListResponses(app))
			r.Put(`/{id:^\d+$}`, UpdateForm(app))
			r.Delete(`/{id:^\d+$}`, DeleteForm(app))
		})
	})

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}
