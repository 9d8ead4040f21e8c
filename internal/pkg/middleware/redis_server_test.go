package middleware

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// respServer 进程内的 RESP2 服务，只实现限流用到的命令
type respServer struct {
	ln       net.Listener
	mu       sync.Mutex
	counters map[string]int64
	expiring map[string]bool
}

func newRESPServer(t *testing.T) *respServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &respServer{ln: ln, counters: make(map[string]int64), expiring: make(map[string]bool)}
	go s.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *respServer) Addr() string { return s.ln.Addr().String() }

func (s *respServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *respServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	var queued [][]string
	inMulti := false
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		var reply string
		switch name := strings.ToUpper(args[0]); {
		case name == "MULTI":
			inMulti, queued = true, nil
			reply = "+OK\r\n"
		case name == "EXEC":
			var b strings.Builder
			fmt.Fprintf(&b, "*%d\r\n", len(queued))
			for _, c := range queued {
				b.WriteString(s.exec(c))
			}
			inMulti, queued = false, nil
			reply = b.String()
		case inMulti:
			queued = append(queued, args)
			reply = "+QUEUED\r\n"
		default:
			reply = s.exec(args)
		}
		if _, err := io.WriteString(conn, reply); err != nil {
			return
		}
	}
}

func (s *respServer) exec(args []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch strings.ToUpper(args[0]) {
	case "PING":
		return "+PONG\r\n"
	case "CLIENT":
		return "+OK\r\n"
	case "INCR":
		s.counters[args[1]]++
		return fmt.Sprintf(":%d\r\n", s.counters[args[1]])
	case "PEXPIRE":
		s.expiring[args[1]] = true
		return ":1\r\n"
	}
	// HELLO 也走这里，客户端会退回 RESP2
	return "-ERR unknown command '" + args[0] + "'\r\n"
}

func (s *respServer) hasExpiry(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiring[key]
}

func (s *respServer) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.counters))
	for k := range s.counters {
		out = append(out, k)
	}
	return out
}

// readCommand 读取一个 bulk string 数组形式的命令
func readCommand(r *bufio.Reader) ([]string, error) {
	n, err := readHeader(r, '*')
	if err != nil {
		return nil, err
	}
	args := make([]string, n)
	for i := range args {
		size, err := readHeader(r, '$')
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args[i] = string(buf[:size])
	}
	if n == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return args, nil
}

func readHeader(r *bufio.Reader, prefix byte) (int, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return 0, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" || line[0] != prefix {
		return 0, fmt.Errorf("unexpected line %q", line)
	}
	return strconv.Atoi(line[1:])
}
