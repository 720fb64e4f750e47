// Package sdk provides the client-side library for the Auditoria document store.
// It supports both remote connections via TCP/TLS and an embedded engine.
package sdk

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

	"github.com/celerix-dev/auditoria/pkg/schema"
)

// Options configures a remote Client.
type Options struct {
	// DisableTLS falls back to plain TCP.
	DisableTLS bool
	// Logger receives retry diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// Client is a remote client for the document store daemon.
// It implements DocumentStore.
type Client struct {
	addr   string
	opts   Options
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex // Protects concurrent access to the connection
}

// Connect establishes a connection to a remote document store daemon.
func Connect(addr string, opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Client{addr: addr, opts: opts}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) reconnect() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	var conn net.Conn
	var err error

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 60 * time.Second,
	}

	if c.opts.DisableTLS {
		conn, err = dialer.Dial("tcp", c.addr)
	} else {
		config := &tls.Config{
			InsecureSkipVerify: true, // the daemon serves a self-signed certificate
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", c.addr, config)
	}
	if err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// sendAndReceive writes one command line and returns the reply payload.
// "ERR" replies are translated back into the store's sentinel errors.
func (c *Client) sendAndReceive(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	var resp string

	for i := 0; i < 3; i++ {
		if c.conn == nil {
			if reconnectErr := c.reconnect(); reconnectErr != nil {
				err = fmt.Errorf("reconnect failed: %w", reconnectErr)
				time.Sleep(time.Duration(i*100) * time.Millisecond)
				continue
			}
		}

		c.conn.SetDeadline(time.Now().Add(30 * time.Second))

		_, err = fmt.Fprint(c.conn, cmd+"\n")
		if err == nil {
			resp, err = c.reader.ReadString('\n')
			if err == nil {
				resp = strings.TrimSpace(resp)
				if msg, ok := strings.CutPrefix(resp, "ERR"); ok {
					return "", remoteError(strings.TrimSpace(msg))
				}
				return strings.TrimPrefix(strings.TrimPrefix(resp, "OK"), " "), nil
			}
		}

		c.opts.Logger.Warn("document store request failed, reconnecting",
			"attempt", i+1, "addr", c.addr, "error", err)

		if closeErr := c.reconnect(); closeErr != nil {
			c.opts.Logger.Warn("document store reconnect failed", "addr", c.addr, "error", closeErr)
		}

		time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
	}

	return "", fmt.Errorf("failed after 3 attempts. last error: %w", err)
}

func remoteError(msg string) error {
	for _, known := range []error{ErrDocumentNotFound, ErrCollectionNotFound, ErrInvalidName} {
		if msg == known.Error() {
			return known
		}
	}
	return errors.New(msg)
}

func (c *Client) Get(collection, id string) (schema.Document, error) {
	resp, err := c.sendAndReceive(fmt.Sprintf("GET %s %s", collection, id))
	if err != nil {
		return nil, err
	}
	var doc schema.Document
	err = json.Unmarshal([]byte(resp), &doc)
	return doc, err
}

func (c *Client) Set(collection, id string, doc schema.Document) error {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = c.sendAndReceive(fmt.Sprintf("SET %s %s %s", collection, id, jsonData))
	return err
}

func (c *Client) Add(collection string, doc schema.Document) (string, error) {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	resp, err := c.sendAndReceive(fmt.Sprintf("ADD %s %s", collection, jsonData))
	if err != nil {
		return "", err
	}
	var id string
	err = json.Unmarshal([]byte(resp), &id)
	return id, err
}

func (c *Client) Delete(collection, id string) error {
	_, err := c.sendAndReceive(fmt.Sprintf("DEL %s %s", collection, id))
	return err
}

func (c *Client) Query(collection, field string, value any) ([]schema.Snapshot, error) {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	resp, err := c.sendAndReceive(fmt.Sprintf("QUERY %s %s %s", collection, field, jsonValue))
	if err != nil {
		return nil, err
	}
	var snaps []schema.Snapshot
	err = json.Unmarshal([]byte(resp), &snaps)
	return snaps, err
}

func (c *Client) Collections() ([]string, error) {
	resp, err := c.sendAndReceive("LIST_COLLECTIONS")
	if err != nil {
		return nil, err
	}
	var list []string
	err = json.Unmarshal([]byte(resp), &list)
	return list, err
}

// Ping checks that the daemon answers.
func (c *Client) Ping() error {
	resp, err := c.sendAndReceive("PING")
	if err != nil {
		return err
	}
	if resp != "PONG" {
		return fmt.Errorf("unexpected ping reply %q", resp)
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	fmt.Fprintln(c.conn, "QUIT")
	err := c.conn.Close()
	c.conn = nil
	return err
}

// --- Generics Support ---

// Get retrieves a document decoded into T.
func Get[T any](s DocReader, collection, id string) (T, error) {
	var target T
	doc, err := s.Get(collection, id)
	if err != nil {
		return target, err
	}
	return Decode[T](doc)
}

// Set stores any JSON-encodable value as a document.
func Set[T any](s DocWriter, collection, id string, val T) error {
	doc, err := Encode(val)
	if err != nil {
		return err
	}
	return s.Set(collection, id, doc)
}

// Encode converts a JSON-encodable value into a Document.
func Encode[T any](val T) (schema.Document, error) {
	bytes, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	var doc schema.Document
	err = json.Unmarshal(bytes, &doc)
	return doc, err
}

// Decode converts a Document into T via its JSON form.
func Decode[T any](doc schema.Document) (T, error) {
	var target T
	bytes, err := json.Marshal(doc)
	if err != nil {
		return target, err
	}
	err = json.Unmarshal(bytes, &target)
	return target, err
}
