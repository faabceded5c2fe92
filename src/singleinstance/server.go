// Package singleinstance keeps one resident process per user session. The
// resident listens on a loopback TCP port; later launches find it there and
// hand over a command instead of starting a second tray icon.
package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	DefaultPort  = 49560
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	okResponse   = "OK\n"
	errResponse  = "ERROR\n"
	connDeadline = 3 * time.Second
)

// Commands a later launch can send to the resident.
const (
	CommandScreenshot = "SCREENSHOT"
	CommandColorPick  = "COLORPICK"
)

var ErrAlreadyRunning = errors.New("singleinstance: port already in use")

// Server answers PING with PONG and forwards known commands to OnCommand.
type Server struct {
	port      int
	OnCommand func(cmd string)

	mu  sync.Mutex
	lis net.Listener
	wg  sync.WaitGroup
}

// NewServer returns a server for port. Port 0 picks a free port.
func NewServer(port int) *Server {
	return &Server{port: port}
}

// Start binds the port. A bind failure means another resident owns it.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	addr := net.JoinHostPort(residentHost, fmt.Sprint(s.port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return fmt.Errorf("%w: %v", ErrAlreadyRunning, err)
	}
	s.lis = lis
	s.port = lis.Addr().(*net.TCPAddr).Port
	log.Printf("singleinstance: listening on %s", lis.Addr())

	s.wg.Add(1)
	go s.acceptLoop(lis)
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

// Port returns the bound port, or the requested one before Start.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Close stops accepting and waits for the accept loop to exit.
func (s *Server) Close() error {
	s.mu.Lock()
	lis := s.lis
	s.lis = nil
	s.mu.Unlock()
	if lis == nil {
		return nil
	}
	err := lis.Close()
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop(lis net.Listener) {
	defer s.wg.Done()
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		s.handle(c)
	}
}

func (s *Server) handle(c net.Conn) {
	defer c.Close()
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(connDeadline))
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return
	}
	bw := bufio.NewWriter(c)
	defer bw.Flush()

	if line == pingRequest {
		_, _ = bw.WriteString(pongResponse)
		return
	}
	cmd := strings.TrimSpace(line)
	switch cmd {
	case CommandScreenshot, CommandColorPick:
		log.Printf("singleinstance: %s from %s", cmd, remote)
		if s.OnCommand != nil {
			s.OnCommand(cmd)
		}
		_, _ = bw.WriteString(okResponse)
	default:
		log.Printf("singleinstance: unknown request %q from %s", cmd, remote)
		_, _ = bw.WriteString(errResponse)
	}
}
