package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v2"
)

// setupDocsRoutes serves the OpenAPI description of the tool surface.
func (s *Server) setupDocsRoutes(r *mux.Router) {
	r.HandleFunc("/docs/openapi.yaml", s.handleOpenAPISpec).Methods("GET")
	r.HandleFunc("/docs/openapi.json", s.handleOpenAPISpec).Methods("GET")
}

// handleOpenAPISpec serves the OpenAPI specification, converting to
// JSON when the .json path is requested.
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	specPath := filepath.Join("docs", "openapi.yaml")

	if strings.HasSuffix(r.URL.Path, ".json") {
		yamlData, err := os.ReadFile(specPath)
		if err != nil {
			http.Error(w, "OpenAPI spec not found", http.StatusNotFound)
			return
		}

		var spec interface{}
		if err := yaml.Unmarshal(yamlData, &spec); err != nil {
			http.Error(w, "Error parsing OpenAPI spec", http.StatusInternalServerError)
			return
		}

		jsonData, err := json.MarshalIndent(normalizeYAML(spec), "", "  ")
		if err != nil {
			http.Error(w, "Error converting to JSON", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(jsonData)
		return
	}

	w.Header().Set("Content-Type", "text/yaml")
	http.ServeFile(w, r, specPath)
}

// normalizeYAML rewrites yaml.v2's map[interface{}]interface{} values
// into string-keyed maps so they survive JSON marshaling.
func normalizeYAML(value interface{}) interface{} {
	switch v := value.(type) {
	case map[interface{}]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, item := range v {
			if s, ok := key.(string); ok {
				normalized[s] = normalizeYAML(item)
			}
		}
		return normalized
	case []interface{}:
		for i, item := range v {
			v[i] = normalizeYAML(item)
		}
		return v
	default:
		return v
	}
}
