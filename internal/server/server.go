package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/yanun0323/logs"

	"volgrader/internal/obs"
	"volgrader/internal/replay"
	"volgrader/internal/session"
	"volgrader/pkg/listener"
)

// Handler receives decoded client events for one connection.
type Handler interface {
	OnLogin(username, passHash string)
	OnPrediction(value float64)
	Run(ctx context.Context) error
}

// Deps are optional collaborators shared by every session.
type Deps struct {
	Metrics  *obs.Metrics
	Sink     session.Sink
	Progress session.Progress
}

// Server accepts connections and runs one grading session per connection.
type Server struct {
	ln       *listener.Server
	prepared *replay.Prepared
	cfg      session.Config
	deps     Deps

	wg sync.WaitGroup
}

// New creates a server over a listening ln.
func New(ln *listener.Server, prepared *replay.Prepared, cfg session.Config, deps Deps) *Server {
	return &Server{ln: ln, prepared: prepared, cfg: cfg, deps: deps}
}

// Serve accepts until ctx is done, then waits for every session to end.
func (s *Server) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.ln.Close()
		case <-stop:
		}
	}()

	logs.Infof("grader listening on %s://%s", s.ln.Network(), s.ln.Addr())

	var acceptErr error
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				logs.Errorf("accept error: %+v", err)
				continue
			}
			acceptErr = err
			break
		}

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handle(ctx, c)
		}(c)
	}

	s.wg.Wait()
	return acceptErr
}

func (s *Server) handle(ctx context.Context, c net.Conn) {
	writeTimeout := s.cfg.ResponseTimeout
	if writeTimeout <= 0 {
		writeTimeout = session.DefaultResponseTimeout
	}
	stream := newStreamConn(c, writeTimeout)
	opts := []session.Option{
		session.WithMetrics(s.deps.Metrics),
		session.WithProgress(s.deps.Progress),
	}
	if s.deps.Sink != nil {
		opts = append(opts, session.WithSink(s.deps.Sink))
	}
	sess := session.New(s.prepared.Plan, s.prepared.GroundTruth, stream, s.cfg, opts...)
	logs.Infof("session %s: connection from %s", sess.ID(), c.RemoteAddr())

	serve(ctx, stream, sess)
}

// serve runs h against c: the reader feeds events while Run drives the replay.
// c is closed once the session context ends, which unblocks both a pending
// write in Run and the reader.
func serve(ctx context.Context, c *streamConn, h Handler) error {
	sctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	closerDone := make(chan struct{})
	go func() {
		defer close(closerDone)
		<-sctx.Done()
		_ = c.Close()
	}()

	r := c.conn
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		cancel(readLoop(r, h))
	}()

	err := h.Run(sctx)
	cancel(nil)
	<-closerDone
	<-readerDone
	return err
}
