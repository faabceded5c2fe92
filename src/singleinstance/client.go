package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

const defaultDialTimeout = 300 * time.Millisecond

func dialTimeout(ctx context.Context) time.Duration {
	timeout := defaultDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			timeout = d
		}
	}
	return timeout
}

// DetectResident reports whether a resident answers PING on port.
func DetectResident(ctx context.Context, port int) bool {
	resp, err := exchange(net.JoinHostPort(residentHost, strconv.Itoa(port)), pingRequest, dialTimeout(ctx))
	return err == nil && resp == pongResponse
}

// Send delivers cmd to the resident on port.
func Send(ctx context.Context, port int, cmd string) error {
	resp, err := exchange(net.JoinHostPort(residentHost, strconv.Itoa(port)), cmd+"\n", dialTimeout(ctx))
	if err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	if resp != okResponse {
		return fmt.Errorf("send %s: resident rejected request", cmd)
	}
	return nil
}

func exchange(addr, request string, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(request); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return bufio.NewReader(conn).ReadString('\n')
}
