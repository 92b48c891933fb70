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

package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/godbus/dbus"
)

// RecordingEventType is the event type queued for each recording.
const RecordingEventType = "faceRecording"

// RecordingEvents queues an event with the events service for every
// finished recording.
type RecordingEvents struct {
	nowFunc func() time.Time
	queue   func(details []byte, ts int64) error
}

func NewRecordingEvents() *RecordingEvents {
	return &RecordingEvents{nowFunc: time.Now, queue: queueEvent}
}

func (re *RecordingEvents) WhenRecorded(path string, frames uint32) {
	detailsJSON, err := eventDetails(path, frames)
	if err != nil {
		log.Printf("could not record recording event: %s", err)
		return
	}
	if err := re.queue(detailsJSON, re.nowFunc().UnixNano()); err != nil {
		log.Printf("could not record recording event: %s", err)
	}
}

func eventDetails(path string, frames uint32) ([]byte, error) {
	eventDetails := map[string]interface{}{
		"description": map[string]interface{}{
			"type": RecordingEventType,
			"details": map[string]interface{}{
				"recording": path,
				"frames":    frames,
			},
		},
	}
	return json.Marshal(&eventDetails)
}

func queueEvent(details []byte, ts int64) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	obj := conn.Object("org.cacophony.Events", "/org/cacophony/Events")
	return obj.Call("org.cacophony.Events.Queue", 0, details, ts).Err
}
