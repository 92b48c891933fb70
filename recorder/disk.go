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

package recorder

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/TheCacophonyProject/face-recorder/recording"
)

// DeleteTempFiles removes recordings left half written in directory by
// an earlier run.
func DeleteTempFiles(directory string) error {
	for _, pattern := range []string{"*" + recording.TempExt, "*" + recording.SpoolExt} {
		matches, _ := filepath.Glob(filepath.Join(directory, pattern))
		for _, filename := range matches {
			if err := os.Remove(filename); err != nil {
				return err
			}
		}
	}
	return nil
}

// FreeDiskSpace returns the number of bytes available to unprivileged
// users on the file system holding dir.
func FreeDiskSpace(dir string) (uint64, error) {
	var fs unix.Statfs_t
	if err := unix.Statfs(dir, &fs); err != nil {
		return 0, err
	}
	return fs.Bavail * uint64(fs.Bsize), nil
}

func checkDiskSpace(mb uint64, dir string) (bool, error) {
	free, err := FreeDiskSpace(dir)
	if err != nil {
		return false, err
	}
	return free/1024/1024 >= mb, nil
}
