// Package network serves HTTPS and plain HTTP on one port: plain requests
// are redirected to their https:// URL.
package network

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"
)

// tlsHandshake is the first byte of every TLS record carrying a handshake.
const tlsHandshake = 0x16

// AutoHttpsListener hands TLS connections through and answers plain HTTP
// connections with a redirect.
type AutoHttpsListener struct {
	net.Listener
}

func NewAutoHttpsListener(listener net.Listener) net.Listener {
	return &AutoHttpsListener{
		Listener: listener,
	}
}

func (l *AutoHttpsListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewAutoHttpsConn(conn), nil
}

// AutoHttpsConn peeks at the first byte to tell TLS from plain HTTP.
type AutoHttpsConn struct {
	net.Conn

	reader  *bufio.Reader
	checked bool
}

func NewAutoHttpsConn(conn net.Conn) net.Conn {
	return &AutoHttpsConn{
		Conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (c *AutoHttpsConn) Read(buf []byte) (int, error) {
	if !c.checked {
		c.checked = true
		first, err := c.reader.Peek(1)
		if err != nil {
			return 0, err
		}
		if first[0] != tlsHandshake {
			c.redirect()
			return 0, net.ErrClosed
		}
	}
	return c.reader.Read(buf)
}

func (c *AutoHttpsConn) redirect() {
	defer c.Conn.Close()
	_ = c.Conn.SetDeadline(time.Now().Add(5 * time.Second))

	request, err := http.ReadRequest(c.reader)
	if err != nil {
		return
	}
	resp := http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
	}
	resp.Header.Set("Location", fmt.Sprintf("https://%v%v", request.Host, request.RequestURI))
	resp.Header.Set("Connection", "close")
	_ = resp.Write(c.Conn)
}
