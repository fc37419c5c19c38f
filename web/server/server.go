package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/df07/go-collision-volumes/pkg/loaders"
	"github.com/df07/go-collision-volumes/pkg/query"
)

// maxSceneBytes caps the size of a posted scene
const maxSceneBytes = 1 << 20

// Server handles web requests for collision queries
type Server struct {
	port      int
	scenesDir string
}

// NewServer creates a new web server serving stored scenes from scenesDir
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir}
}

// QueryResponse is the JSON answer to /api/query
type QueryResponse struct {
	Scene   string           `json:"scene"`
	Results []QueryResult    `json:"results"`
	Stats   Stats            `json:"stats"`
	Console []ConsoleMessage `json:"console"`
}

// QueryResult is one query answer. Only the fields of the query's kind are set.
type QueryResult struct {
	Index       int         `json:"index"`
	Name        string      `json:"name"`
	Kind        string      `json:"kind"`
	Hit         bool        `json:"hit"`
	Fraction    *float64    `json:"fraction,omitempty"`
	Normal      *[3]float64 `json:"normal,omitempty"`
	Distance    *float64    `json:"distance,omitempty"`
	Point       *[3]float64 `json:"point,omitempty"`
	Containment string      `json:"containment,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Stats represents run statistics
type Stats struct {
	Total     int            `json:"total"`
	Hits      int            `json:"hits"`
	Errors    int            `json:"errors"`
	PerKind   map[string]int `json:"perKind"`
	Workers   int            `json:"workers"`
	ElapsedMs int64          `json:"elapsedMs"`
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleQuery runs the queries of a posted YAML scene, or of a stored scene
// named by the scene parameter on GET
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	workers, err := parseIntParam(r.URL.Query(), "workers", 0, 0, 256)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var scene *loaders.Scene
	switch r.Method {
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSceneBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("failed to read scene: %v", err))
			return
		}
		scene, err = loaders.ParseScene(body, s.scenesDir, loaders.LocalFilesOnly())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	case http.MethodGet:
		scene, err = s.loadStoredScene(r.URL.Query().Get("scene"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	consoleChan := make(chan ConsoleMessage, 64)
	logger := NewWebLogger(scene.Name, consoleChan)

	results, stats, err := query.NewRunner(scene.Queries, workers, logger).Run(r.Context())
	if err != nil {
		// Client went away
		log.Printf("Query run for %q stopped: %v", scene.Name, err)
		return
	}

	response := QueryResponse{
		Scene:   scene.Name,
		Results: make([]QueryResult, 0, len(results)),
		Stats:   convertStats(stats),
		Console: drainConsole(consoleChan),
	}
	for _, result := range results {
		response.Results = append(response.Results, convertResult(result))
	}

	writeJSON(w, http.StatusOK, response)
}

// handleScenes lists the stored scenes by group
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	scenes, err := loaders.ListScenes(s.scenesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": loaders.GroupScenes(scenes)})
}

// loadStoredScene loads a scene from the scenes directory by its file name without extension
func (s *Server) loadStoredScene(name string) (*loaders.Scene, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid scene name %q", name)
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(s.scenesDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return loaders.LoadScene(path)
		}
	}
	return nil, fmt.Errorf("unknown scene %q", name)
}

func convertResult(r query.Result) QueryResult {
	out := QueryResult{Index: r.Index, Name: r.Name, Kind: r.Kind.String(), Hit: r.Hit}
	if r.Err != nil {
		out.Error = r.Err.Error()
		return out
	}

	switch r.Kind {
	case query.Sweep:
		out.Fraction = &r.Fraction
		if r.Hit {
			out.Normal = vecJSON(r.Normal)
		}
	case query.Ray:
		if r.Hit {
			out.Distance = &r.Distance
		}
	case query.Cull:
		out.Containment = r.Containment.String()
	case query.Closest:
		out.Point = vecJSON(r.Point)
		out.Normal = vecJSON(r.Normal)
		out.Distance = &r.Distance
	}
	return out
}

func convertStats(stats query.Stats) Stats {
	out := Stats{
		Total:     stats.Total,
		Hits:      stats.Hits,
		Errors:    stats.Errors,
		PerKind:   make(map[string]int, len(stats.PerKind)),
		Workers:   stats.Workers,
		ElapsedMs: stats.Elapsed.Milliseconds(),
	}
	for kind, count := range stats.PerKind {
		out.PerKind[kind.String()] = count
	}
	return out
}

func vecJSON(v core.Vec3) *[3]float64 {
	return &[3]float64{v.X(), v.Y(), v.Z()}
}

// drainConsole collects the messages logged so far without blocking
func drainConsole(consoleChan chan ConsoleMessage) []ConsoleMessage {
	messages := []ConsoleMessage{}
	for {
		select {
		case msg := <-consoleChan:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
