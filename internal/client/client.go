package client

import (
	"net"
	"sync"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"volgrader/internal/codec"
	"volgrader/pkg/exception"
	"volgrader/pkg/listener"
)

// Predictor turns the replayed order books into volatility answers.
type Predictor interface {
	Header(columns []string)
	Observe(book codec.OrderBook)
	Predict() float64
}

// Stats counts what a client saw during a session.
type Stats struct {
	OrderBooks  int
	Predictions int
}

// Client speaks the grader protocol over one connection.
type Client struct {
	conn    net.Conn
	writeMu sync.Mutex
	buf     []byte
	out     []byte
}

// Dial connects to a grader.
func Dial(network, address string) (*Client, error) {
	c, err := listener.Dial(network, address)
	if err != nil {
		return nil, errors.Wrap(err, "dial grader")
	}
	return New(c), nil
}

// New wraps an established connection.
func New(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Login sends the credentials. The password is sent as given; hashing is up to the caller.
func (c *Client) Login(username, passHash string) error {
	frame, err := codec.EncodeLogin(nil, codec.Login{Username: username, PassHash: passHash})
	if err != nil {
		return err
	}
	return c.write(frame)
}

// SendPrediction sends one volatility answer.
func (c *Client) SendPrediction(value float64) error {
	c.out = codec.EncodePrediction(c.out[:0], value)
	return c.write(c.out)
}

func (c *Client) write(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := codec.WriteFull(c.conn, frame); err != nil {
		return errors.Wrap(exception.ErrSendFailed, err.Error())
	}
	return nil
}

// Play answers every predict-now with p until the score arrives.
func (c *Client) Play(p Predictor) (codec.Score, Stats, error) {
	var stats Stats
	for {
		typ, body, next, err := codec.ReadFrame(c.conn, c.buf)
		c.buf = next
		if err != nil {
			return codec.Score{}, stats, errors.Wrap(err, "read frame")
		}

		switch typ {
		case codec.MessageHeader:
			columns, err := codec.DecodeHeader(body)
			if err != nil {
				return codec.Score{}, stats, err
			}
			p.Header(columns)
		case codec.MessageOrderBook:
			book, err := codec.DecodeOrderBook(body)
			if err != nil {
				return codec.Score{}, stats, err
			}
			stats.OrderBooks++
			p.Observe(book)
		case codec.MessagePredictNow:
			if err := c.SendPrediction(p.Predict()); err != nil {
				return codec.Score{}, stats, err
			}
			stats.Predictions++
		case codec.MessageScore:
			score, err := codec.DecodeScore(body)
			if err != nil {
				return codec.Score{}, stats, err
			}
			logs.Infof("score %.3f after %d messages in %.3f sec", score.Score, score.Sent, score.Elapsed)
			return score, stats, nil
		default:
			return codec.Score{}, stats, errors.Wrap(exception.ErrUnexpectedMessage, typ.String())
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
