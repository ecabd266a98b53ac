package imcwellness

import (
	"log"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/lfarias/imc-wellness/internal/config"
	"github.com/lfarias/imc-wellness/internal/handlers"
)

func init() {
	functions.HTTP("AssessIMC", AssessIMC)
}

// AssessIMC is the Cloud Functions entrypoint. Each invocation builds the
// server fresh; with CACHE_TYPE=cloud-storage the warmed tips survive
// across instances.
func AssessIMC(w http.ResponseWriter, r *http.Request) {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Printf("Failed to create server: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer server.Close()

	server.SetupRoutes().ServeHTTP(w, r)
}
