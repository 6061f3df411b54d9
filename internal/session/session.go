package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"volgrader/internal/answer"
	"volgrader/internal/journal"
	"volgrader/internal/obs"
	"volgrader/internal/replay"
	"volgrader/internal/scoring"
	"volgrader/pkg/exception"
)

// Conn is the connection capability a session drives.
type Conn interface {
	Send(payload []byte) error
	Close() error
}

// Progress is called every ProgressInterval sent messages and once at the end.
type Progress func(sessionID string, current, total int)

// Answer is a prediction recorded for the predict-now entry at Index.
type Answer struct {
	Index int
	Value float64
}

// Record summarises a terminated session for storage sinks.
type Record struct {
	ID        string
	Username  string
	Start     time.Time
	End       time.Time
	State     State
	Sent      uint64
	Responses int
	Score     float64
	Lines     []string
}

// Sink receives the record of every terminated session.
type Sink func(Record)

type login struct {
	username string
	passHash string
}

type prediction struct {
	index int
	value float64
	at    time.Time
}

// Session replays a plan to one connection and grades its predictions.
//
// OnLogin and OnPrediction may be called from the connection reader while Run
// executes on its own goroutine; every other field is owned by Run.
type Session struct {
	id      string
	plan    *replay.Plan
	truth   answer.GroundTruth
	conn    Conn
	cfg     Config
	codec   Codec
	metrics *obs.Metrics
	report  Progress
	sink    Sink
	now     func() time.Time
	log     *journal.Log

	state       atomic.Uint32
	loggedIn    atomic.Bool
	outstanding atomic.Int64
	loginCh     chan login
	predictCh   chan prediction

	start    time.Time
	username string
	cursor   int
	sent     uint64
	answers  []Answer
	askedAt  time.Time

	endOnce sync.Once
	result  *scoring.Result
	logPath string
}

// Option customises a Session.
type Option func(*Session)

// WithMetrics attaches process metrics.
func WithMetrics(m *obs.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithProgress attaches a progress reporter.
func WithProgress(p Progress) Option {
	return func(s *Session) { s.report = p }
}

// WithSink attaches a storage sink called once on termination.
func WithSink(sink Sink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithClock swaps the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCodec swaps the score encoder and renderer.
func WithCodec(c Codec) Option {
	return func(s *Session) {
		if c != nil {
			s.codec = c
		}
	}
}

// New creates a session bound to the shared plan and ground truth.
func New(plan *replay.Plan, truth answer.GroundTruth, conn Conn, cfg Config, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		plan:      plan,
		truth:     truth,
		conn:      conn,
		cfg:       cfg.withDefaults(),
		codec:     WireCodec{},
		now:       time.Now,
		loginCh:   make(chan login, 1),
		predictCh: make(chan prediction, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.outstanding.Store(-1)
	s.log = journal.New(s.now)
	s.start = s.now()
	s.metrics.SessionStarted()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State { return State(s.state.Load()) }

// Journal returns the session log.
func (s *Session) Journal() *journal.Log { return s.log }

// Username returns the authenticated user. Only valid after Run returns.
func (s *Session) Username() string { return s.username }

// Answers returns the recorded predictions. Only valid after Run returns.
func (s *Session) Answers() []Answer {
	out := make([]Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// Result returns the score, nil unless the session finished normally.
func (s *Session) Result() *scoring.Result { return s.result }

// LogPath returns the persisted log file, empty when persistence is disabled.
func (s *Session) LogPath() string { return s.logPath }

// OnLogin records the client identity. Only the first login is honoured.
func (s *Session) OnLogin(username, passHash string) {
	if !s.loggedIn.CompareAndSwap(false, true) {
		s.info("Unexpected logon. Ignoring.")
		return
	}
	s.log.Received("LOGIN " + username + " " + passHash)
	s.loginCh <- login{username: username, passHash: passHash}
}

// OnPrediction hands a volatility answer to the waiting dispatch loop.
// It is ignored when no predict-now is outstanding.
func (s *Session) OnPrediction(value float64) {
	s.log.Received("VOLATILITY " + strconv.FormatFloat(value, 'g', -1, 64))
	idx := s.outstanding.Swap(-1)
	if idx < 0 {
		s.metrics.IncStrayResponse()
		return
	}
	select {
	case s.predictCh <- prediction{index: int(idx), value: value, at: s.now()}:
	default:
	}
}

// Run waits for the login, replays the plan and terminates the session.
// A nil error means the session finished and a score was sent.
func (s *Session) Run(ctx context.Context) error {
	err := s.run(ctx)
	if err != nil {
		s.Abort(err)
		return err
	}
	s.Finish()
	return nil
}

func (s *Session) run(ctx context.Context) error {
	l, err := s.awaitLogin(ctx)
	if err != nil {
		return err
	}
	s.username = l.username
	logs.Infof("session %s: login '%s'", s.id, s.username)
	s.setState(StateStreaming)

	total := s.plan.Len()
	for s.cursor < total {
		index := s.cursor
		entry := s.plan.Entries[index]
		if entry.NeedResponse {
			// Published before sending: the answer may arrive before Send returns.
			s.askedAt = s.now()
			s.outstanding.Store(int64(index))
			s.setState(StateAwaitingResponse)
		}

		if err := s.send(entry.Payload); err != nil {
			s.outstanding.Store(-1)
			if ctx.Err() != nil {
				return cause(ctx)
			}
			return err
		}
		s.cursor++
		if s.cfg.ProgressInterval > 0 && s.cursor%s.cfg.ProgressInterval == 0 {
			s.progress(s.cursor, total)
		}

		if !entry.NeedResponse {
			continue
		}
		value, err := s.awaitPrediction(ctx, index)
		if err != nil {
			return err
		}
		s.answers = append(s.answers, Answer{Index: index, Value: value})
		s.setState(StateStreaming)
	}

	s.progress(total, total)
	return nil
}

func (s *Session) awaitLogin(ctx context.Context) (login, error) {
	timer := time.NewTimer(s.cfg.LoginTimeout)
	defer timer.Stop()

	select {
	case l := <-s.loginCh:
		return l, nil
	case <-timer.C:
		s.info(fmt.Sprintf("Login timeout %s", s.cfg.LoginTimeout))
		return login{}, exception.ErrLoginTimeout
	case <-ctx.Done():
		return login{}, cause(ctx)
	}
}

func (s *Session) awaitPrediction(ctx context.Context, index int) (float64, error) {
	timer := time.NewTimer(s.cfg.ResponseTimeout)
	defer timer.Stop()

	select {
	case p := <-s.predictCh:
		if p.index != index {
			return 0, errors.Wrapf(exception.ErrInternal, "answer for entry %d while waiting for %d", p.index, index)
		}
		s.metrics.ObserveResponse(p.at.Sub(s.askedAt))
		return p.value, nil
	case <-timer.C:
		s.outstanding.CompareAndSwap(int64(index), -1)
		s.metrics.IncTimeout()
		s.info(fmt.Sprintf("Response timeout %s", s.cfg.ResponseTimeout))
		return 0, exception.ErrResponseTimeout
	case <-ctx.Done():
		s.outstanding.CompareAndSwap(int64(index), -1)
		return 0, cause(ctx)
	}
}

func (s *Session) send(payload []byte) error {
	if err := s.conn.Send(payload); err != nil {
		return errors.Wrap(exception.ErrSendFailed, err.Error())
	}
	s.sent++
	s.log.Sent(payload)
	s.metrics.IncSent()
	return nil
}

// Finish scores the collected answers, sends the score and closes the connection.
// Only the first call to Finish or Abort has an effect.
func (s *Session) Finish() {
	s.terminate(StateFinished, nil)
}

// Abort closes the connection without a score. Only the first call to Finish or Abort has an effect.
func (s *Session) Abort(reason error) {
	s.terminate(StateAborted, reason)
}

func (s *Session) terminate(final State, reason error) {
	s.endOnce.Do(func() {
		s.outstanding.Store(-1)
		elapsed := s.now().Sub(s.start)

		if final == StateFinished {
			values := make([]float64, len(s.answers))
			for i, a := range s.answers {
				values[i] = a.Value
			}
			res := scoring.Score(values, s.truth.Values())
			if res.Reason != "" {
				s.info(res.Reason)
			}
			s.info(fmt.Sprintf("SCORE %.3f, time: %.3f sec, %d orderbooks sent, %d responses processed",
				res.Score, elapsed.Seconds(), s.sent, len(s.answers)))
			s.result = &res

			if err := s.send(s.codec.Score(s.sent, elapsed.Seconds(), res.Score)); err != nil {
				s.info(fmt.Sprintf("Send score failed: %v", err))
			}
		} else if reason != nil {
			s.info(fmt.Sprintf("Session aborted: %v", reason))
		}
		s.setState(final)

		path, err := s.log.Persist(s.cfg.LogDir, s.start, s.username, s.codec.Render)
		if err != nil {
			logs.Errorf("session %s: save log, err: %+v", s.id, err)
		} else if path != "" {
			s.logPath = path
			logs.Infof("session %s: log file saved at %s", s.id, path)
		}

		if err := s.conn.Close(); err != nil {
			logs.Errorf("session %s: close connection, err: %+v", s.id, err)
		}
		s.metrics.SessionEnded(final == StateFinished)

		if s.sink != nil {
			var score float64
			if s.result != nil {
				score = s.result.Score
			}
			s.sink(Record{
				ID:        s.id,
				Username:  s.username,
				Start:     s.start,
				End:       s.now(),
				State:     final,
				Sent:      s.sent,
				Responses: len(s.answers),
				Score:     score,
				Lines:     s.log.Lines(s.codec.Render),
			})
		}
	})
}

func (s *Session) setState(state State) {
	s.state.Store(uint32(state))
}

func (s *Session) info(text string) {
	logs.Infof("session %s: %s", s.id, text)
	s.log.Info(text)
}

func (s *Session) progress(current, total int) {
	if s.report != nil {
		s.report(s.id, current, total)
	}
}

func cause(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return ctx.Err()
}
