package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
)

// StubHTTPServer satisfies the server package's httpServer contract without binding a port.
// ListenAndServe blocks until Shutdown unless ListenErr is set.
type StubHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ListenErr   error
	ShutdownErr error

	listenCalls   atomic.Int32
	shutdownCalls atomic.Int32
	stopped       chan struct{}
	stopOnce      atomic.Bool
}

// NewStubHTTPServer returns a stub serving h.
func NewStubHTTPServer(h http.Handler) *StubHTTPServer {
	return &StubHTTPServer{AddrVal: ":0", HandlerVal: h, stopped: make(chan struct{})}
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.listenCalls.Add(1)
	if s.ListenErr != nil {
		return s.ListenErr
	}
	if s.stopped != nil {
		<-s.stopped
	}
	return http.ErrServerClosed
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	s.shutdownCalls.Add(1)
	if s.stopped != nil && s.stopOnce.CompareAndSwap(false, true) {
		close(s.stopped)
	}
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string          { return s.AddrVal }
func (s *StubHTTPServer) Handler() http.Handler { return s.HandlerVal }

// ListenCalls reports how many times ListenAndServe ran.
func (s *StubHTTPServer) ListenCalls() int { return int(s.listenCalls.Load()) }

// ShutdownCalls reports how many times Shutdown ran.
func (s *StubHTTPServer) ShutdownCalls() int { return int(s.shutdownCalls.Load()) }

// ErrListen is the error FailingHTTPServer returns from ListenAndServe.
var ErrListen = errors.New("listen failure")

// NewFailingHTTPServer returns a stub whose ListenAndServe fails immediately.
func NewFailingHTTPServer() *StubHTTPServer {
	s := NewStubHTTPServer(http.NewServeMux())
	s.ListenErr = ErrListen
	return s
}
