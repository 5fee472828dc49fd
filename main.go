package main

import (
	"log"
	"net/http"

	"bulletnotes/auth"
	"bulletnotes/config"
	"bulletnotes/db"
	"bulletnotes/enhance"
	"bulletnotes/handlers"
	appmw "bulletnotes/middleware"
	"bulletnotes/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config error: ", err)
	}

	sqlDB, err := db.Connect(cfg.DBDriver, cfg.DSN)
	if err != nil {
		log.Fatal("DB connection error: ", err)
	}
	if err := db.Migrate(sqlDB, cfg.DBDriver); err != nil {
		log.Fatal("DB migration error: ", err)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret)
	authHandler := &handlers.AuthHandler{
		Users:  &store.UserStore{DB: sqlDB},
		Tokens: tokens,
		Google: auth.NewGoogleVerifier(cfg.GoogleClientID),
	}
	notesHandler := &handlers.NotesHandler{
		Notes:    &store.NoteStore{DB: sqlDB},
		Enhancer: enhance.New(cfg.GeminiAPIKey, cfg.GeminiModel),
	}

	r := newRouter(tokens, authHandler, notesHandler)

	log.Println("Server running on", cfg.Addr)
	http.ListenAndServe(cfg.Addr, r)
}

func newRouter(tokens *auth.TokenService, authHandler *handlers.AuthHandler, notesHandler *handlers.NotesHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/auth/", authHandler.Register)
	r.Post("/auth/token", authHandler.Token)
	r.Post("/auth/google", authHandler.GoogleLogin)
	r.Post("/auth/google-signup", authHandler.GoogleSignup)

	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireAuth(tokens))
		r.Get("/", authHandler.CurrentUser)
		r.Route("/notes", func(r chi.Router) {
			r.Post("/", notesHandler.CreateNote)
			r.Get("/", notesHandler.ListNotes)
			r.Get("/{id}", notesHandler.GetNote)
			r.Put("/{id}", notesHandler.UpdateNote)
			r.Delete("/{id}", notesHandler.DeleteNote)
			r.Post("/{id}/bullet-points", notesHandler.CreateBulletPoint)
			r.Get("/{id}/bullet-points", notesHandler.ListBulletPoints)
			r.Put("/{id}/bullet-points/{bulletID}", notesHandler.UpdateBulletPoint)
			r.Delete("/{id}/bullet-points/{bulletID}", notesHandler.DeleteBulletPoint)
		})
	})

	return r
}
