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

package sniff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBytes(t *testing.T) {
	assert.Equal(t, Text, ClassifyBytes(nil))
	assert.Equal(t, Text, ClassifyBytes([]byte("eyJ2ZXJzaW9uIjogNiwgImRldmljZV9p\r\n")))
	assert.Equal(t, Text, ClassifyBytes([]byte("grüße\tok")))

	// Uncompressed container: version byte then frame count.
	assert.Equal(t, Binary, ClassifyBytes([]byte{6, 0, 0, 0, 3, 0, 0, 1, 0x33}))
	// gzip magic
	assert.Equal(t, Binary, ClassifyBytes([]byte{0x1f, 0x8b, 8, 0}))
	// zstd magic
	assert.Equal(t, Binary, ClassifyBytes([]byte{0x28, 0xb5, 0x2f, 0xfd}))
	assert.Equal(t, Binary, ClassifyBytes([]byte("abc\x00def")))
}

func TestClassifyBytesCutRune(t *testing.T) {
	s := []byte(strings.Repeat("a", ProbeSize-1) + "ü")
	assert.Equal(t, Text, ClassifyBytes(s[:ProbeSize]))
}

func TestClassifyFile(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "legacy.gesichter")
	require.NoError(t, os.WriteFile(text, []byte(strings.Repeat("eyJ2ZXJzaW9uIjog", 10)+"\r\n"), 0644))
	format, err := Classify(text)
	require.NoError(t, err)
	assert.Equal(t, Text, format)

	bin := filepath.Join(dir, "recording.face")
	require.NoError(t, os.WriteFile(bin, []byte{0x1f, 0x8b, 8, 0, 0, 0, 0, 0, 0, 0xff}, 0644))
	format, err = Classify(bin)
	require.NoError(t, err)
	assert.Equal(t, Binary, format)
	assert.Equal(t, "binary", format.String())

	_, err = Classify(filepath.Join(dir, "missing"))
	assert.True(t, os.IsNotExist(err))
}
