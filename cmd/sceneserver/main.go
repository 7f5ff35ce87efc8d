// Command sceneserver is a minimal embedder: it wires a Server to a TCP
// monitor and, optionally, a recording file, then drives the frame loop
// from a wall-clock ticker. It exists to exercise the public server API
// end to end, not as a production visualization host.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scenewire/scenewire/config"
	"github.com/scenewire/scenewire/internal/nlog"
	"github.com/scenewire/scenewire/server"
	"github.com/scenewire/scenewire/stats"
	"github.com/scenewire/scenewire/wire"
)

var (
	listenPort  = flag.Uint("port", uint(config.DefaultServerOptions().ListenPort), "TCP listen port")
	portRange   = flag.Uint("port-range", 0, "number of additional ports to try if the listen port is busy")
	recordPath  = flag.String("record", "", "also open a .3es recording file at this path")
	metricsAddr = flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	frameHz     = flag.Float64("frame-hz", 30, "frames per second to emit on the demo ticker")
)

func main() {
	flag.Parse()

	opts := config.DefaultServerOptions()
	opts.ListenPort = uint16(*listenPort)
	opts.PortRange = uint16(*portRange)

	reg := prometheus.NewRegistry()
	sc := stats.NewCollector(reg)

	s := server.New(opts, wire.DefaultServerInfo(), sc)

	monitor, err := server.NewMonitor(s)
	if err != nil {
		nlog.Errorf("sceneserver: bind listener: %v", err)
		os.Exit(1)
	}
	monitor.StartAsync()
	nlog.Infof("sceneserver: listening on %s", monitor.Addr())

	if *recordPath != "" {
		if _, err := s.OpenFileStream(*recordPath); err != nil {
			nlog.Errorf("sceneserver: open recording file %s: %v", *recordPath, err)
			os.Exit(1)
		}
		nlog.Infof("sceneserver: recording to %s", *recordPath)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				nlog.Errorf("sceneserver: metrics server: %v", err)
			}
		}()
		nlog.Infof("sceneserver: metrics on %s/metrics", *metricsAddr)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / *frameHz))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-sig:
			nlog.Infof("sceneserver: shutting down")
			if err := s.Close(); err != nil {
				nlog.Warningf("sceneserver: close: %v", err)
			}
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if _, err := s.UpdateFrame(dt, true); err != nil {
				nlog.Warningf("sceneserver: update frame: %v", err)
			}
			if _, err := s.UpdateTransfers(int(opts.ClientBufferSize)); err != nil {
				nlog.Warningf("sceneserver: update transfers: %v", err)
			}
		}
	}
}
