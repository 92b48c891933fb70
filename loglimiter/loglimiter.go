// face-recorder - record and replay facial capture animation frames
// Copyright (C) 2019, The Cacophony Project
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

package loglimiter

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// New returns a new LogLimiter with the configured minimum log interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
		entries:  make(map[string]*entry),
	}
}

// LogLimiter suppresses log messages of the same kind seen within
// some time interval. Print treats each distinct string as a kind;
// Printf treats each format string as a kind, so a bad frame log line
// is limited no matter which sizes it mentions. When a kind is let
// through again, the number of suppressed messages is appended.
type LogLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	nowFunc  func() time.Time
	entries  map[string]*entry
}

type entry struct {
	last       time.Time
	suppressed int
}

func (limiter *LogLimiter) Printf(format string, v ...interface{}) {
	limiter.print(format, fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(s string) {
	limiter.print(s, s)
}

// Suppressed returns how many messages of the kind key are currently
// being held back.
func (limiter *LogLimiter) Suppressed(key string) int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if e, ok := limiter.entries[key]; ok {
		return e.suppressed
	}
	return 0
}

func (limiter *LogLimiter) print(key, s string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.nowFunc()
	e, ok := limiter.entries[key]
	if !ok {
		limiter.prune(now)
		e = new(entry)
		limiter.entries[key] = e
	} else if now.Sub(e.last) < limiter.interval {
		e.suppressed++
		return
	}

	if e.suppressed > 0 {
		s = fmt.Sprintf("%s (%d similar messages suppressed)", s, e.suppressed)
	}
	log.Print(s)
	e.last = now
	e.suppressed = 0
}

// prune forgets kinds not let through within the interval. Their
// suppressed counts are dropped with them.
func (limiter *LogLimiter) prune(now time.Time) {
	for key, e := range limiter.entries {
		if now.Sub(e.last) >= limiter.interval {
			delete(limiter.entries, key)
		}
	}
}
