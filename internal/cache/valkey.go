package cache

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// ValkeyConfig holds connection settings for a Valkey/Redis server.
type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// ValkeyProvider speaks RESP directly over a per-operation TCP
// connection. The write volume here is one small payload per watch
// cycle, so pooling is not worth the machinery.
type ValkeyProvider struct {
	cfg ValkeyConfig
}

// NewValkeyProvider validates the config and returns a provider.
// Connectivity is checked lazily via Ping.
func NewValkeyProvider(cfg ValkeyConfig) (*ValkeyProvider, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("valkey: addr is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &ValkeyProvider{cfg: cfg}, nil
}

func (p *ValkeyProvider) Get(ctx context.Context, key string) ([]byte, error) {
	reply, err := p.do(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, ErrCacheMiss
	}
	return reply, nil
}

func (p *ValkeyProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []string{"SET", key, string(value)}
	if ttl > 0 {
		args = append(args, "PX", strconv.FormatInt(ttl.Milliseconds(), 10))
	}
	_, err := p.do(ctx, args...)
	return err
}

func (p *ValkeyProvider) Del(ctx context.Context, key string) error {
	_, err := p.do(ctx, "DEL", key)
	return err
}

func (p *ValkeyProvider) Ping(ctx context.Context) error {
	reply, err := p.do(ctx, "PING")
	if err != nil {
		return err
	}
	if !strings.EqualFold(string(reply), "PONG") {
		return fmt.Errorf("valkey: unexpected ping reply %q", reply)
	}
	return nil
}

func (p *ValkeyProvider) Close() error { return nil }

// do dials, authenticates, runs one command and reads its reply.
func (p *ValkeyProvider) do(ctx context.Context, args ...string) ([]byte, error) {
	deadline := time.Now().Add(p.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", p.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("valkey dial %s: %w", p.cfg.Addr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	rd := bufio.NewReader(conn)
	if p.cfg.Password != "" {
		if _, err := roundTrip(conn, rd, "AUTH", p.cfg.Password); err != nil {
			return nil, fmt.Errorf("valkey auth: %w", err)
		}
	}
	if p.cfg.DB != 0 {
		if _, err := roundTrip(conn, rd, "SELECT", strconv.Itoa(p.cfg.DB)); err != nil {
			return nil, fmt.Errorf("valkey select %d: %w", p.cfg.DB, err)
		}
	}
	return roundTrip(conn, rd, args...)
}

func roundTrip(w io.Writer, rd *bufio.Reader, args ...string) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%d\r\n", len(args))
	for _, a := range args {
		fmt.Fprintf(&sb, "$%d\r\n%s\r\n", len(a), a)
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return nil, err
	}
	return readReply(rd)
}

// readReply parses a single RESP reply. Nil bulk strings come back as
// a nil slice so callers can map them to ErrCacheMiss.
func readReply(rd *bufio.Reader) ([]byte, error) {
	line, err := readLine(rd)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("valkey: empty reply")
	}
	switch line[0] {
	case '+':
		return []byte(line[1:]), nil
	case '-':
		return nil, fmt.Errorf("valkey: %s", line[1:])
	case ':':
		return []byte(line[1:]), nil
	case '$':
		n, err := strconv.Atoi(line[1:])
		if err != nil {
			return nil, fmt.Errorf("valkey: bad bulk length %q", line)
		}
		if n < 0 {
			return nil, nil
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(rd, buf); err != nil {
			return nil, err
		}
		return buf[:n], nil
	default:
		return nil, fmt.Errorf("valkey: unsupported reply type %q", line[0])
	}
}

func readLine(rd *bufio.Reader) (string, error) {
	line, err := rd.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
