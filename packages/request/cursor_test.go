package request

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_ReadsInPieces(t *testing.T) {
	c := NewCursor([]byte("abcdefgh"))
	buf := make([]byte, 3)

	var got []byte
	var calls int
	for {
		n, err := c.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		calls++
		got = append(got, buf[:n]...)
	}

	assert.Equal(t, "abcdefgh", string(got))
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, c.Remaining())
}

func TestCursor_LargerBufferThanData(t *testing.T) {
	c := NewCursor([]byte("xy"))
	buf := make([]byte, 16)

	n, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "xy", string(buf[:n]))

	n, err = c.Read(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestCursor_Empty(t *testing.T) {
	c := NewCursor(nil)
	n, err := c.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestCursor_ReadAll(t *testing.T) {
	data := make([]byte, 100_003)
	for i := range data {
		data[i] = byte(i * 7)
	}

	got, err := io.ReadAll(NewCursor(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
