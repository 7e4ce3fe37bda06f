// Package web provides an HTTP status server for the dogfoodtimer daemon.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
	"github.com/erickhammersmark/dogfoodtimer/internal/mqtt"
	"github.com/erickhammersmark/dogfoodtimer/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// pageView is the fully resolved template input. Normalization, CSS class
// selection and duration math happen here so the template stays
// declarative.
type pageView struct {
	Lid           string
	LidClass      string
	Severity      string
	Elapsed       time.Duration
	AlarmActive   bool
	AlarmInterval time.Duration
	HistoryDepth  int
	HistoryCap    int
	Counts        logic.Counters
	MQTTConnected bool
	Uptime        time.Duration
	StartTime     time.Time
	Config        status.Config

	// LiveBroker gates the browser-side MQTT live view: empty renders a
	// static page, anything else loads the client and subscribes.
	LiveBroker string
	EventTopic string
}

func buildView(snap status.Snapshot) pageView {
	lid := string(snap.Timer.Lid)
	lidClass := "unknown"
	switch snap.Timer.Lid {
	case logic.LidRaised:
		lidClass = "raised"
	case logic.LidLowered:
		lidClass = "lowered"
	default:
		lid = "UNKNOWN"
	}

	return pageView{
		Lid:           lid,
		LidClass:      lidClass,
		Severity:      string(snap.Timer.Severity),
		Elapsed:       snap.Elapsed(),
		AlarmActive:   snap.Timer.AlarmActive,
		AlarmInterval: time.Duration(snap.Timer.AlarmIntervalMS) * time.Millisecond,
		HistoryDepth:  snap.Timer.HistoryDepth,
		HistoryCap:    logic.HistoryCap,
		Counts:        snap.Timer.Counts,
		MQTTConnected: snap.MQTTConnected,
		Uptime:        snap.Uptime(),
		StartTime:     snap.StartTime,
		Config:        snap.Config,
		LiveBroker:    snap.Config.WSBroker,
		EventTopic:    mqtt.Topic,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, buildView(s.tracker.Snapshot()))
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}
