package delivery

import (
	"net/http"

	"github.com/Vovarama1992/companion/internal/delivery/ws"
	"github.com/Vovarama1992/companion/internal/ports"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(
	r chi.Router,
	hAuth *AuthHandler,
	auth ports.AuthService,
	hAssets *AssetHandler,
	wsHandler http.HandlerFunc,
	imageDir, videoDir string,
) {
	// login
	r.Post("/api/login", hAuth.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(auth))

		// media ledger
		r.Get("/api/assets", hAssets.List)
		r.Get("/api/assets/{id}", hAssets.Get)

		// chat
		r.Get("/ws", wsHandler)

		// generated files
		r.Handle(ws.ImageURLPrefix+"*", http.StripPrefix(ws.ImageURLPrefix, http.FileServer(http.Dir(imageDir))))
		r.Handle(ws.VideoURLPrefix+"*", http.StripPrefix(ws.VideoURLPrefix, http.FileServer(http.Dir(videoDir))))
	})
}
