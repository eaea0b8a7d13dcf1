package scale

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
)

// TCPSource reads indicator lines from a serial-to-network bridge. The
// serial parameters are applied by the bridge device itself; they are
// validated here so a misconfigured terminal fails before dialing.
type TCPSource struct {
	Addr        string
	DialTimeout time.Duration
}

// Open dials the bridge and returns the line stream.
func (s *TCPSource) Open(cfg model.SerialConfig) (io.ReadCloser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := s.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	conn, err := net.DialTimeout("tcp", s.Addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", common.ErrDeviceUnavailable, s.Addr, err)
	}
	return conn, nil
}

// FileSource reads indicator lines from a file or FIFO. Pointing it at a
// character device node covers direct serial attachments on platforms where
// the port is exposed as a file.
type FileSource struct {
	Path string
}

// Open opens the backing file.
func (s *FileSource) Open(cfg model.SerialConfig) (io.ReadCloser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", common.ErrDeviceUnavailable, s.Path, err)
	}
	return f, nil
}

var (
	_ service.LineSource = (*TCPSource)(nil)
	_ service.LineSource = (*FileSource)(nil)
)
