package swagger

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apispec "github.com/janseva/constituency-admin/api"
	httpSwagger "github.com/swaggo/http-swagger"
)

const SpecPath = "/openapi.yaml"

// ServeSpec writes the embedded OpenAPI document.
func ServeSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS off for docs
	_, _ = w.Write(apispec.Spec())
}

// Mount registers the document and the Swagger UI on r.
func Mount(r chi.Router) {
	r.Get(SpecPath, ServeSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(SpecPath)))
}
