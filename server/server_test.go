package server_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/scenewire/scenewire/config"
	"github.com/scenewire/scenewire/meshres"
	"github.com/scenewire/scenewire/server"
	"github.com/scenewire/scenewire/stats"
	"github.com/scenewire/scenewire/wire"
)

func TestDefineResourceIncrementsGaugeOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	sc := stats.NewCollector(reg)
	s := server.New(config.DefaultServerOptions(), wire.ServerInfo{}, sc)

	s.DefineResource(&meshres.Resource{ID: 1})
	if got := testutil.ToFloat64(sc.ResourcesActive); got != 1 {
		t.Fatalf("resources active = %v, want 1", got)
	}

	s.DefineResource(&meshres.Resource{ID: 1}) // redefine, not a new resource
	if got := testutil.ToFloat64(sc.ResourcesActive); got != 1 {
		t.Fatalf("resources active after redefine = %v, want 1", got)
	}

	s.UndefineResource(1)
	if got := testutil.ToFloat64(sc.ResourcesActive); got != 0 {
		t.Fatalf("resources active after undefine = %v, want 0", got)
	}

	s.UndefineResource(1) // already gone, must not go negative
	if got := testutil.ToFloat64(sc.ResourcesActive); got != 0 {
		t.Fatalf("resources active after double undefine = %v, want 0", got)
	}
}

func TestServerIsInactiveWhenStopped(t *testing.T) {
	s := server.New(config.DefaultServerOptions(), wire.ServerInfo{}, nil)
	s.SetActive(false)
	n, err := s.Update([]byte{1, 2, 3})
	if n != 0 || err != nil {
		t.Fatalf("inactive server should no-op, got (%d, %v)", n, err)
	}
}
