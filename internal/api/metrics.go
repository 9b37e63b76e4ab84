package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/tunnel"
)

var statuses = []tunnel.Status{
	tunnel.StatusDisconnected,
	tunnel.StatusConnecting,
	tunnel.StatusConnected,
	tunnel.StatusError,
}

// statusCollector reads the backend's status at scrape time.
type statusCollector struct {
	backend Backend
	state   *prometheus.Desc
	rx      *prometheus.Desc
	tx      *prometheus.Desc
}

func newStatusCollector(backend Backend) *statusCollector {
	return &statusCollector{
		backend: backend,
		state: prometheus.NewDesc("oneclick_vpn_tunnel_state",
			"Tunnel status, 1 for the current one.", []string{"status"}, nil),
		rx: prometheus.NewDesc("oneclick_vpn_received_bytes",
			"Bytes received on the current connection.", []string{"profile"}, nil),
		tx: prometheus.NewDesc("oneclick_vpn_sent_bytes",
			"Bytes sent on the current connection.", []string{"profile"}, nil),
	}
}

func (c *statusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.state
	ch <- c.rx
	ch <- c.tx
}

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	p := c.backend.GetStatusPayload()
	for _, st := range statuses {
		v := 0.0
		if p.State == string(st) {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, v, string(st))
	}
	ch <- prometheus.MustNewConstMetric(c.rx, prometheus.GaugeValue, float64(p.RxBytes), p.Profile)
	ch <- prometheus.MustNewConstMetric(c.tx, prometheus.GaugeValue, float64(p.TxBytes), p.Profile)
}

// metricsHandler serves the tunnel metrics alongside the Go runtime and
// process collectors, from a registry private to this server.
func metricsHandler(backend Backend) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(newStatusCollector(backend))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{ErrorLog: errorLog{}})
}

// errorLog adapts promhttp's logger to the application log.
type errorLog struct{}

func (errorLog) Println(v ...any) {
	logger.Error("api: metrics: %s", fmt.Sprint(v...))
}
