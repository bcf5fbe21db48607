package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/nxzone/blackholed/internal/dns/common/log"
	"github.com/nxzone/blackholed/internal/dns/gateways/wire"
	"github.com/nxzone/blackholed/internal/dns/services/resolver"
)

// tcpIdleTimeout bounds how long an idle client connection is kept open
// between queries (RFC 7766 section 6.2.3 leaves the value to the server).
const tcpIdleTimeout = 30 * time.Second

// maxTCPMessageSize is the largest message the 2-byte length prefix can
// describe (RFC 7766 section 8).
const maxTCPMessageSize = 65535

// TCPTransport implements ServerTransport for DNS over TCP. Each message is
// framed with a 2-byte big-endian length prefix; a connection may carry any
// number of queries before the client or the idle timeout closes it.
type TCPTransport struct {
	addr     string
	listener net.Listener
	codec    wire.DNSCodec
	logger   log.Logger

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
}

// NewTCPTransport creates a new TCP transport instance.
func NewTCPTransport(addr string, codec wire.DNSCodec, logger log.Logger) *TCPTransport {
	return &TCPTransport{
		addr:   addr,
		codec:  codec,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// Start binds the TCP listener and launches the accept loop.
// Starting a running transport returns nil without side effects.
func (t *TCPTransport) Start(ctx context.Context, handler resolver.DNSResponder) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil
	}

	listener, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("failed to bind TCP listener on %s: %w", t.addr, err)
	}

	t.listener = listener
	t.running = true
	t.stopCh = make(chan struct{})

	t.logger.Info(map[string]any{
		"transport": "tcp",
		"address":   listener.Addr().String(),
	}, "DNS transport started")

	go t.acceptLoop(ctx, handler)

	return nil
}

// Stop closes the listener and any open client connections, then waits for
// in-flight handlers to finish.
func (t *TCPTransport) Stop() error {
	t.mu.Lock()

	if !t.running {
		t.mu.Unlock()
		return nil
	}

	close(t.stopCh)
	t.running = false

	var closeErr error
	if t.listener != nil {
		closeErr = t.listener.Close()
	}
	for conn := range t.conns {
		_ = conn.Close()
	}
	t.mu.Unlock()

	t.wg.Wait()

	t.logger.Info(map[string]any{
		"transport": "tcp",
		"address":   t.addr,
	}, "DNS transport stopped")

	return closeErr
}

// Address returns the bound address while running, or the configured address.
func (t *TCPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.listener != nil {
		return t.listener.Addr().String()
	}
	return t.addr
}

// acceptLoop accepts client connections until the transport stops.
func (t *TCPTransport) acceptLoop(ctx context.Context, handler resolver.DNSResponder) {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-t.stopCh:
				return
			default:
			}

			t.logger.Warn(map[string]any{
				"error": err.Error(),
			}, "Failed to accept TCP connection")
			continue
		}

		t.mu.Lock()
		if !t.running {
			t.mu.Unlock()
			_ = conn.Close()
			return
		}
		t.conns[conn] = struct{}{}
		t.wg.Add(1)
		t.mu.Unlock()

		go t.handleConn(ctx, conn, handler)
	}
}

// handleConn serves framed queries on a single client connection.
func (t *TCPTransport) handleConn(ctx context.Context, conn net.Conn, handler resolver.DNSResponder) {
	defer func() {
		_ = conn.Close()
		t.mu.Lock()
		delete(t.conns, conn)
		t.mu.Unlock()
		t.wg.Done()
	}()

	clientAddr := conn.RemoteAddr()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(tcpIdleTimeout)); err != nil {
			return
		}

		data, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !isTimeout(err) {
				t.logger.Debug(map[string]any{
					"client": clientAddr.String(),
					"error":  err.Error(),
				}, "TCP connection read failed")
			}
			return
		}

		query, err := t.codec.DecodeQuery(data)
		if err != nil {
			t.logger.Warn(map[string]any{
				"client": clientAddr.String(),
				"error":  err.Error(),
				"size":   len(data),
			}, "Failed to decode DNS query")
			t.replyFormatError(conn, data)
			return
		}

		response := handler.HandleQuery(ctx, query, clientAddr)

		responseData, err := t.codec.EncodeResponse(query, response)
		if err != nil {
			t.logger.Error(map[string]any{
				"client":   clientAddr.String(),
				"query_id": query.ID,
				"error":    err.Error(),
			}, "Failed to encode DNS response")
			return
		}

		if err := writeFrame(conn, responseData); err != nil {
			t.logger.Error(map[string]any{
				"client":   clientAddr.String(),
				"query_id": response.ID,
				"error":    err.Error(),
			}, "Failed to send DNS response")
			return
		}
	}
}

// replyFormatError answers an unparseable message with FORMERR when the
// header id is recoverable, then lets the caller close the connection.
func (t *TCPTransport) replyFormatError(conn net.Conn, data []byte) {
	if len(data) < 12 {
		return
	}
	id := binary.BigEndian.Uint16(data[:2])
	reply, err := t.codec.EncodeFormatError(id)
	if err != nil {
		return
	}
	_ = writeFrame(conn, reply)
}

// readFrame reads one length-prefixed DNS message from the stream.
func readFrame(conn net.Conn) ([]byte, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(conn, prefix[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(prefix[:])
	if length == 0 {
		return nil, errors.New("zero-length TCP message")
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(conn, data); err != nil {
		return nil, err
	}
	return data, nil
}

// writeFrame writes one length-prefixed DNS message to the stream.
func writeFrame(conn net.Conn, data []byte) error {
	if len(data) > maxTCPMessageSize {
		return fmt.Errorf("message too large for TCP framing: %d bytes", len(data))
	}
	frame := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(frame[:2], uint16(len(data)))
	copy(frame[2:], data)
	_, err := conn.Write(frame)
	return err
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
