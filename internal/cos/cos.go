// Package cos holds small low-level utilities shared across scenewire's
// packages: a closeable stop signal, a minimal runner interface for
// background goroutines, short session-id generation, and a bounded
// error aggregator. None of these carry wire-protocol semantics.
package cos

import (
	"errors"
	"sync"

	"github.com/teris-io/shortid"
)

// StopCh is a broadcastable "please stop" signal, closed at most once.
type StopCh struct {
	once sync.Once
	ch   chan struct{}
}

func NewStopCh() *StopCh { return &StopCh{ch: make(chan struct{})} }

func (s *StopCh) Close()            { s.once.Do(func() { close(s.ch) }) }
func (s *StopCh) Listen() <-chan struct{} { return s.ch }

// Runner is the minimal lifecycle contract for a background component
// (the connection monitor's accept loop).
type Runner interface {
	Name() string
	Run() error
	Stop(err error)
}

// sessionABC mirrors the teacher's cmn/cos.uuidABC: a 64-character alphabet
// so shortid's 6-bit tie-breaker never overflows (see teris-io/shortid#id-length).
const sessionABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

var sidGen = shortid.MustNew(1 /*worker*/, sessionABC, 0x5ea1)

// GenSessionID returns a short, URL-safe, non-cryptographic identifier
// suitable for log lines and file-index naming. It is never parsed by the
// wire protocol itself.
func GenSessionID() string { return sidGen.MustGenerate() }

const maxAggregatedErrs = 4

// Errs aggregates up to maxAggregatedErrs distinct errors behind a single
// error value, used where a fan-out call (Server.Create, Server.Destroy)
// must report partial failure across many connections without losing the
// first few causes.
type Errs struct {
	mu   sync.Mutex
	errs []error
}

func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, seen := range e.errs {
		if seen.Error() == err.Error() {
			return
		}
	}
	if len(e.errs) < maxAggregatedErrs {
		e.errs = append(e.errs, err)
	}
}

func (e *Errs) Cnt() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs)
}

func (e *Errs) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return errors.Join(e.errs...)
}

// BytePool is a trivial sync.Pool-backed allocator for fixed-size byte
// slices, such as the connection monitor's per-connection read buffer.
type BytePool struct {
	size int
	pool sync.Pool
}

func NewBytePool(size int) *BytePool {
	return &BytePool{
		size: size,
		pool: sync.Pool{New: func() any { return make([]byte, size) }},
	}
}

func (p *BytePool) Get() []byte  { return p.pool.Get().([]byte)[:p.size] }
func (p *BytePool) Put(b []byte) { p.pool.Put(b) } //nolint:staticcheck // intentional reuse
