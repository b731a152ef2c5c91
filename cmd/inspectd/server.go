package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/inspector/instrument"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/npillmayer/webinspect/inspector/session"
	"golang.org/x/sync/errgroup"
)

// conn carries protocol messages, one at a time.
type conn interface {
	ReadMessage() ([]byte, error) // io.EOF at the end of input
	WriteMessage([]byte) error
	Close() error
}

// server connects front ends to a page. A page is inspected by one front
// end at a time.
type server struct {
	page   *dom.Page
	agents *instrument.Registry
	open   func(*dom.Page, *instrument.Registry, protocol.Frontend) *session.Session
	busy   sync.Mutex
}

// serve runs a session over a connection until the connection ends or ctx
// is cancelled. Responses and events leave in the order they are produced.
func (srv *server) serve(ctx context.Context, c conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	out := make(chan []byte, 64)
	send := func(b []byte) {
		select {
		case out <- b:
		case <-ctx.Done():
		}
	}
	fe := protocol.FrontendFunc(func(ev protocol.Event) {
		b, err := protocol.Encode(ev)
		if err != nil {
			tracer().Errorf("inspectd: %v", err)
			return
		}
		send(b)
	})
	sess := srv.open(srv.page, srv.agents, fe)
	defer sess.Close()
	g.Go(func() error { // reader
		defer close(out)
		for {
			msg, err := c.ReadMessage()
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			send(sess.Dispatch(ctx, msg))
		}
	})
	g.Go(func() error { // writer
		defer cancel()
		for b := range out {
			if err := c.WriteMessage(b); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return c.Close()
	})
	err := g.Wait()
	tracer().P("session", sess.Token()).Infof("inspectd: front end disconnected")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// --- stdio -----------------------------------------------------------------

// stdioConn exchanges newline-delimited messages.
type stdioConn struct {
	in  *bufio.Scanner
	out io.Writer
	mu  sync.Mutex
}

func newStdioConn(r io.Reader, w io.Writer) *stdioConn {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &stdioConn{in: in, out: w}
}

func (c *stdioConn) ReadMessage() ([]byte, error) {
	for c.in.Scan() {
		if line := c.in.Bytes(); len(line) > 0 {
			return append([]byte(nil), line...), nil
		}
	}
	if err := c.in.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (c *stdioConn) WriteMessage(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.out.Write(append(b, '\n'))
	return err
}

func (c *stdioConn) Close() error {
	return nil
}

// --- websocket -------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsConn struct {
	ws *websocket.Conn
}

func (c wsConn) ReadMessage() ([]byte, error) {
	_, msg, err := c.ws.ReadMessage()
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil, io.EOF
	}
	return msg, err
}

func (c wsConn) WriteMessage(b []byte) error {
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c wsConn) Close() error {
	return c.ws.Close()
}

func (srv *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if !srv.busy.TryLock() {
		http.Error(w, "page is being inspected by another front end", http.StatusConflict)
		return
	}
	defer srv.busy.Unlock()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		tracer().Errorf("inspectd: websocket upgrade failed: %v", err)
		return
	}
	if err := srv.serve(r.Context(), wsConn{ws: ws}); err != nil {
		tracer().Errorf("inspectd: %v", err)
	}
}

// listenAndServe accepts websocket front ends until ctx is cancelled.
func (srv *server) listenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleWebsocket)
	hs := &http.Server{Addr: addr, Handler: mux}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return hs.Close()
	})
	return g.Wait()
}
