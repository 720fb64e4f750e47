// Package server exposes a DocumentStore over a line-oriented TCP protocol.
package server

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/celerix-dev/auditoria/pkg/sdk"
)

type Router struct {
	store  sdk.DocumentStore
	cert   *tls.Certificate
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

func NewRouter(s sdk.DocumentStore) *Router {
	return &Router{store: s, logger: slog.Default()}
}

// SetCertificate sets the TLS certificate for the router
func (r *Router) SetCertificate(cert tls.Certificate) {
	r.cert = &cert
}

// SetLogger replaces the router's logger.
func (r *Router) SetLogger(l *slog.Logger) {
	r.logger = l
}

// Listen starts the TCP server and blocks until Stop is called.
func (r *Router) Listen(port string) error {
	var listener net.Listener
	var err error

	if r.cert != nil {
		config := &tls.Config{Certificates: []tls.Certificate{*r.cert}}
		listener, err = tls.Listen("tcp", ":"+port, config)
	} else {
		listener, err = net.Listen("tcp", ":"+port)
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.listener = listener
	r.mu.Unlock()
	defer listener.Close()

	semaphore := make(chan struct{}, 100) // Max 100 concurrent connections

	for {
		conn, err := listener.Accept()
		if err != nil {
			r.mu.Lock()
			closed := r.closed
			r.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		conn.SetDeadline(time.Now().Add(5 * time.Minute))

		go func(c net.Conn) {
			semaphore <- struct{}{}
			defer func() {
				<-semaphore
				c.Close()
			}()
			r.HandleConnection(c)
		}(conn)
	}
}

// Addr returns the listening address, or nil before Listen has bound.
func (r *Router) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Stop closes the listener; Listen then returns nil.
func (r *Router) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.listener == nil {
		return nil
	}
	return r.listener.Close()
}

// HandleConnection serves commands from conn until QUIT, EOF or a read timeout.
func (r *Router) HandleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)

	for {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		line, err := reader.ReadString('\n')
		if err != nil {
			return // Connection closed or timeout
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !r.dispatch(conn, line) {
			return
		}
	}
}

// dispatch executes one command line. It returns false when the client quits.
// JSON payloads are always the last argument and may contain spaces.
func (r *Router) dispatch(conn net.Conn, line string) bool {
	command, rest, _ := strings.Cut(line, " ")

	switch strings.ToUpper(command) {
	case "GET":
		parts := strings.Fields(rest)
		if len(parts) < 2 {
			fmt.Fprintln(conn, "ERR usage: GET <collection> <id>")
			return true
		}
		doc, err := r.store.Get(parts[0], parts[1])
		reply(conn, doc, err)

	case "SET":
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) < 3 {
			fmt.Fprintln(conn, "ERR usage: SET <collection> <id> <json>")
			return true
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(parts[2]), &doc); err != nil {
			fmt.Fprintln(conn, "ERR invalid json value")
			return true
		}
		replyOK(conn, r.store.Set(parts[0], parts[1], doc))

	case "ADD":
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) < 2 {
			fmt.Fprintln(conn, "ERR usage: ADD <collection> <json>")
			return true
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(parts[1]), &doc); err != nil {
			fmt.Fprintln(conn, "ERR invalid json value")
			return true
		}
		id, err := r.store.Add(parts[0], doc)
		reply(conn, id, err)

	case "DEL":
		parts := strings.Fields(rest)
		if len(parts) < 2 {
			fmt.Fprintln(conn, "ERR usage: DEL <collection> <id>")
			return true
		}
		replyOK(conn, r.store.Delete(parts[0], parts[1]))

	case "QUERY":
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) < 3 {
			fmt.Fprintln(conn, "ERR usage: QUERY <collection> <field> <json>")
			return true
		}
		var value any
		if err := json.Unmarshal([]byte(parts[2]), &value); err != nil {
			fmt.Fprintln(conn, "ERR invalid json value")
			return true
		}
		snaps, err := r.store.Query(parts[0], parts[1], value)
		reply(conn, snaps, err)

	case "LIST_COLLECTIONS":
		list, err := r.store.Collections()
		reply(conn, list, err)

	case "PING":
		fmt.Fprintln(conn, "PONG")

	case "QUIT":
		return false

	default:
		fmt.Fprintln(conn, "ERR unknown command")
	}
	return true
}

func reply(conn net.Conn, val any, err error) {
	if err != nil {
		fmt.Fprintln(conn, "ERR", err)
		return
	}
	res, err := json.Marshal(val)
	if err != nil {
		fmt.Fprintln(conn, "ERR internal error")
		return
	}
	fmt.Fprintln(conn, "OK", string(res))
}

func replyOK(conn net.Conn, err error) {
	if err != nil {
		fmt.Fprintln(conn, "ERR", err)
		return
	}
	fmt.Fprintln(conn, "OK")
}
