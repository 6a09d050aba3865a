// Package server implements the TCP front-end: an accept loop that hands
// each connection to a worker from a bounded pool. The worker reads exactly
// one request line, invokes the engine, writes exactly one reply line, and
// closes the connection. This is deliberately thin — spec.md treats the
// accept loop and pool plumbing as a contract, not a feature surface — but
// it is still a complete, production-shaped implementation.
package server

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/jassi-singh/kvsd/internal/engine"
	"github.com/jassi-singh/kvsd/internal/kverrors"
	"github.com/jassi-singh/kvsd/internal/pool"
	"github.com/jassi-singh/kvsd/internal/proto"
)

// Server accepts TCP connections and dispatches each to eng via a worker
// pool.
type Server struct {
	listener net.Listener
	eng      engine.Engine
	pool     pool.Pool
}

// New wraps an already-bound listener. The caller owns closing ln indirectly
// by calling Serve until it returns, or by closing ln itself to unblock
// Accept.
func New(ln net.Listener, eng engine.Engine, p pool.Pool) *Server {
	return &Server{listener: ln, eng: eng, pool: p}
}

// Serve runs the accept loop until the listener is closed, returning the
// error net.Listener.Accept reported (nil if the listener was closed
// deliberately, since that error is expected shutdown, not failure).
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.pool.Close()
				return nil
			}
			return fmt.Errorf("server: accept: %w: %v", kverrors.ErrIO, err)
		}

		s.pool.Submit(func() {
			s.handle(conn)
		})
	}
}

// handle reads exactly one request line, invokes the engine, writes exactly
// one reply line, and closes the connection.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		slog.Warn("server: failed to read request line", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	req, err := proto.Decode([]byte(line))
	if err != nil {
		slog.Warn("server: malformed request", "remote", conn.RemoteAddr(), "error", err)
		writeLine(conn, err.Error())
		return
	}

	reply := s.dispatch(req)
	writeLine(conn, reply)
}

// dispatch invokes the engine operation req names and returns the reply
// string the wire protocol expects.
func (s *Server) dispatch(req proto.Request) string {
	switch {
	case req.Get != nil:
		value, found, err := s.eng.Get(*req.Get)
		if err != nil {
			slog.Error("server: get failed", "key", *req.Get, "error", err)
			return err.Error()
		}
		if !found {
			return proto.ReplyNotFound
		}
		return value

	case req.Set != nil:
		key, value := req.Set[0], req.Set[1]
		if err := s.eng.Set(key, value); err != nil {
			slog.Error("server: set failed", "key", key, "error", err)
			return err.Error()
		}
		return proto.ReplySuccess

	case req.Rm != nil:
		err := s.eng.Remove(*req.Rm)
		if errors.Is(err, kverrors.ErrKeyNotFound) {
			return proto.ReplyNotFound
		}
		if err != nil {
			slog.Error("server: remove failed", "key", *req.Rm, "error", err)
			return err.Error()
		}
		return proto.ReplySuccess

	default:
		return "unreachable: request named none of Get/Set/Rm"
	}
}

func writeLine(conn net.Conn, line string) {
	if _, err := fmt.Fprintln(conn, line); err != nil {
		slog.Warn("server: failed to write reply", "remote", conn.RemoteAddr(), "error", err)
	}
}
