// face-recorder - record and replay facial capture animation frames
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package transport moves frames over UDP, one frame per datagram.
package transport

import (
	"context"
	"net"
	"time"
)

// BufferSize is large enough to hold any datagram a capture app sends,
// including oversized ones, so they are reported rather than truncated.
const BufferSize = 4096

type Receiver interface {
	// Receive blocks until a datagram arrives and copies it into buf.
	Receive(ctx context.Context, buf []byte) (int, error)
}

type Sender interface {
	Send(b []byte) error
}

// Listen opens a UDP socket receiving on addr, e.g. ":11111".
func Listen(addr string) (*Conn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	c, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	return &Conn{c: c}, nil
}

// Dial opens a UDP socket sending to addr.
func Dial(addr string) (*Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	c, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &Conn{c: c}, nil
}

type Conn struct {
	c *net.UDPConn
}

func (c *Conn) Receive(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.c.SetReadDeadline(time.Time{}); err != nil {
		return 0, err
	}
	// Unblock the read when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		c.c.SetReadDeadline(time.Now())
	})
	defer stop()

	n, _, err := c.c.ReadFromUDP(buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, err
	}
	return n, nil
}

func (c *Conn) Send(b []byte) error {
	_, err := c.c.Write(b)
	return err
}

func (c *Conn) LocalAddr() net.Addr {
	return c.c.LocalAddr()
}

func (c *Conn) Close() error {
	return c.c.Close()
}
