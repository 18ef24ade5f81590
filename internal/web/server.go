// Package web exposes the HTTP surface used by the host platform:
// liveness probe, a small status page and Prometheus metrics. It never
// touches the matrix connection.
package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/seyedibu8791/signal-relay/internal/app"
)

var statusTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><title>Signal Relay</title></head>
<body>
<h1>Signal Relay</h1>
<p>Status: <strong>RUNNING</strong></p>
<h2>Configuration</h2>
<ul>
<li>Source room: {{.SourceRoom}}</li>
<li>Target room: {{.TargetRoom}}</li>
<li>Keep-alive interval: {{.KeepAliveInterval}}</li>
</ul>
<h2>Counters</h2>
<ul>
<li>Uptime: {{.Uptime}}</li>
<li>Received: {{.Received}}</li>
<li>Forwarded: {{.Forwarded}}</li>
<li>Dropped: {{.Dropped}}</li>
<li>Heartbeats: {{.Heartbeats}}</li>
</ul>
</body>
</html>
`))

type Server struct {
	stats *app.Stats
	srv   *http.Server
}

func NewServer(port int, stats *app.Stats) *Server {
	server := &Server{stats: stats}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", server.handleHealth)
	mux.HandleFunc("/", server.handleStatus)
	server.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		SourceRoom        string
		TargetRoom        string
		KeepAliveInterval time.Duration
		Uptime            time.Duration
		Received          int64
		Forwarded         int64
		Dropped           int64
		Heartbeats        int64
	}{
		SourceRoom:        s.stats.SourceRoom,
		TargetRoom:        s.stats.TargetRoom,
		KeepAliveInterval: s.stats.KeepAliveInterval,
		Uptime:            s.stats.Uptime().Round(time.Second),
		Received:          s.stats.Received.Load(),
		Forwarded:         s.stats.Forwarded.Load(),
		Dropped:           s.stats.Dropped.Load(),
		Heartbeats:        s.stats.Heartbeats.Load(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusTemplate.Execute(w, data); err != nil {
		log.Errorf("Error rendering status page: %v", err)
	}
}

func (s *Server) Run() {
	log.Infof("Web server listening on %v", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("Web server error: %v", err)
	}
}

func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down web server: %v", err)
	}
}
