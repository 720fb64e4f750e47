package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/celerix-dev/auditoria/internal/engine"
	"github.com/celerix-dev/auditoria/pkg/schema"
)

// startRouter listens on a random port and returns the port once bound.
func startRouter(t *testing.T, store *engine.MemStore) (*Router, string) {
	t.Helper()
	router := NewRouter(store)
	go router.Listen("0")

	var port string
	for i := 0; i < 20; i++ {
		time.Sleep(25 * time.Millisecond)
		if addr := router.Addr(); addr != nil {
			port = fmt.Sprintf("%d", addr.(*net.TCPAddr).Port)
			break
		}
	}
	if port == "" {
		t.Fatalf("Server did not start in time")
	}
	t.Cleanup(func() { router.Stop() })
	return router, port
}

func dial(t *testing.T, port string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", "127.0.0.1:"+port)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, bufio.NewReader(conn)
}

func TestRouter_TCP_Commands(t *testing.T) {
	_, port := startRouter(t, engine.NewMemStore(nil, nil))
	conn, reader := dial(t, port)

	fmt.Fprintf(conn, "PING\n")
	line, _ := reader.ReadString('\n')
	if line != "PONG\n" {
		t.Errorf("Expected PONG, got %q", line)
	}

	fmt.Fprintf(conn, "SET auditorias d1 {\"nome\": \"two  spaces\", \"pdv\": \"Barra\"}\n")
	line, _ = reader.ReadString('\n')
	if line != "OK\n" {
		t.Errorf("Expected OK, got %q", line)
	}

	fmt.Fprintf(conn, "GET auditorias d1\n")
	line, _ = reader.ReadString('\n')
	if line != "OK {\"nome\":\"two  spaces\",\"pdv\":\"Barra\"}\n" {
		t.Errorf("Unexpected GET reply %q", line)
	}

	fmt.Fprintf(conn, "QUERY auditorias pdv \"Barra\"\n")
	line, _ = reader.ReadString('\n')
	if line != "OK [{\"id\":\"d1\",\"data\":{\"nome\":\"two  spaces\",\"pdv\":\"Barra\"}}]\n" {
		t.Errorf("Unexpected QUERY reply %q", line)
	}

	fmt.Fprintf(conn, "DEL auditorias d1\n")
	line, _ = reader.ReadString('\n')
	if line != "OK\n" {
		t.Errorf("Expected OK, got %q", line)
	}

	fmt.Fprintf(conn, "GET auditorias d1\n")
	line, _ = reader.ReadString('\n')
	if line != "ERR document not found\n" {
		t.Errorf("Expected ERR document not found, got %q", line)
	}
}

func TestRouter_AddAndList(t *testing.T) {
	store := engine.NewMemStore(nil, nil)
	store.Set("configs", "admin", schema.Document{"emails": []any{"a@b.c"}})
	_, port := startRouter(t, store)
	conn, reader := dial(t, port)

	fmt.Fprintf(conn, "ADD auditorias {\"id\":\"A1\"}\n")
	line, _ := reader.ReadString('\n')
	if !strings.HasPrefix(line, "OK \"") {
		t.Fatalf("Expected quoted id, got %q", line)
	}
	id := strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "OK ")), "\"")
	if _, err := store.Get("auditorias", id); err != nil {
		t.Errorf("Added document not in store: %v", err)
	}

	fmt.Fprintf(conn, "LIST_COLLECTIONS\n")
	line, _ = reader.ReadString('\n')
	if line != "OK [\"auditorias\",\"configs\"]\n" {
		t.Errorf("Unexpected LIST_COLLECTIONS reply %q", line)
	}
}

func TestRouter_ConcurrentConnections(t *testing.T) {
	_, port := startRouter(t, engine.NewMemStore(nil, nil))

	conns := make([]net.Conn, 0)
	for i := 0; i < 110; i++ {
		conn, err := net.DialTimeout("tcp", "127.0.0.1:"+port, 100*time.Millisecond)
		if err == nil {
			conns = append(conns, conn)
		}
	}

	for _, c := range conns {
		c.Close()
	}
}

func TestRouter_MalformedCommands(t *testing.T) {
	_, port := startRouter(t, engine.NewMemStore(nil, nil))
	conn, reader := dial(t, port)

	fmt.Fprintf(conn, "SET auditorias d1\n")
	fmt.Fprintf(conn, "SET auditorias d1 {invalid}\n")
	fmt.Fprintf(conn, "BOGUS\n")
	fmt.Fprintf(conn, "PING\n")

	var errs int
	foundPong := false
	for i := 0; i < 5; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if line == "PONG\n" {
			foundPong = true
			break
		}
		if strings.HasPrefix(line, "ERR") {
			errs++
		}
	}
	if !foundPong {
		t.Error("Did not receive PONG")
	}
	if errs != 3 {
		t.Errorf("Expected 3 ERR replies before PONG, got %d", errs)
	}
}

func TestRouter_InvalidName(t *testing.T) {
	_, port := startRouter(t, engine.NewMemStore(nil, nil))
	conn, reader := dial(t, port)

	fmt.Fprintf(conn, "SET ../escape d1 {}\n")
	line, _ := reader.ReadString('\n')
	if line != "ERR invalid name\n" {
		t.Errorf("Expected ERR invalid name, got %q", line)
	}
}
