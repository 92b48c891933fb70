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

// Package events connects the recorder to the system bus: a service
// other programs use to watch and stop a recording, and notifications
// of finished recordings.
package events

import (
	"errors"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"
)

const (
	dbusName = "org.cacophony.facerecorder"
	dbusPath = "/org/cacophony/facerecorder"
)

// StatusProvider reports on the recording in progress.
type StatusProvider interface {
	Status() (frames uint32, path string)
}

type service struct {
	status StatusProvider
	stop   func()
}

// StartService exports the recorder service on the system bus. stop is
// called when a client asks for the recording to be stopped.
func StartService(status StatusProvider, stop func()) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("name already taken")
	}

	s := &service{status: status, stop: stop}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")
	return nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

// Status returns the number of frames recorded so far and the path of
// the recording. The path is empty when nothing is being recorded.
func (s *service) Status() (int32, string, *dbus.Error) {
	if s.status == nil {
		return 0, "", makeDbusError("Status", errors.New("no recorder available"))
	}
	frames, path := s.status.Status()
	return int32(frames), path, nil
}

// StopRecording finishes the current recording early. The frames
// received so far are kept.
func (s *service) StopRecording() *dbus.Error {
	if s.stop == nil {
		return makeDbusError("StopRecording", errors.New("nothing to stop"))
	}
	s.stop()
	return nil
}

func makeDbusError(name string, err error) *dbus.Error {
	return &dbus.Error{
		Name: dbusName + "." + name,
		Body: []interface{}{err.Error()},
	}
}
