package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_ZeroValueAllocatesLazily(t *testing.T) {
	var p Page
	require.Len(t, p.Data(), PageSize)
	require.Equal(t, PageSize, cap(p.Data()))
}

func TestNewPageFrom_WrongSize(t *testing.T) {
	_, err := NewPageFrom(make([]byte, PageSize-1))
	require.ErrorIs(t, err, ErrWrongSize)

	p, err := NewPageFrom(make([]byte, PageSize))
	require.NoError(t, err)
	require.Len(t, p.Data(), PageSize)
}

func TestPage_SetPageSharesStorage(t *testing.T) {
	frame := NewPage()
	var view Page
	view.SetPage(frame)
	require.True(t, view.Shares(frame))

	require.NoError(t, view.SetInt32(100, 42))
	got, err := frame.GetInt32(100)
	require.NoError(t, err)
	require.Equal(t, int32(42), got)

	// Appending to the exposed slice must not reach past the frame.
	data := view.Data()
	require.Equal(t, PageSize, cap(data))
	data = append(data, 1)
	require.Len(t, frame.Data(), PageSize)
	assert.False(t, &data[0] == &frame.Data()[0])
}

func TestPage_CopyFromDetaches(t *testing.T) {
	src := NewPage()
	require.NoError(t, src.SetUint16(10, 0xbeef))

	dst := NewPage()
	dst.CopyFrom(src)
	require.False(t, dst.Shares(src))

	v, err := dst.GetUint16(10)
	require.NoError(t, err)
	require.Equal(t, uint16(0xbeef), v)

	require.NoError(t, src.SetUint16(10, 1))
	v, err = dst.GetUint16(10)
	require.NoError(t, err)
	require.Equal(t, uint16(0xbeef), v)
}

func TestPage_AccessorBounds(t *testing.T) {
	p := NewPage()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"int32 negative", func() error { _, err := p.GetInt32(-1); return err }},
		{"int32 tail", func() error { return p.SetInt32(PageSize-3, 1) }},
		{"uint16 tail", func() error { _, err := p.GetUint16(PageSize - 1); return err }},
		{"bytes overflow", func() error { return p.SetBytes(PageSize-2, []byte{1, 2, 3}) }},
		{"bytes negative len", func() error { _, err := p.GetBytes(0, -1); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.fn(), ErrOffsetOutOfRange)
		})
	}

	require.NoError(t, p.SetInt32(PageSize-4, -7))
	v, err := p.GetInt32(PageSize - 4)
	require.NoError(t, err)
	require.Equal(t, int32(-7), v)
}

func TestPage_Reset(t *testing.T) {
	p := NewPage()
	require.NoError(t, p.SetBytes(0, []byte("hello")))
	p.Reset()
	b, err := p.GetBytes(0, 5)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 5), b)
}

func TestPageDump(t *testing.T) {
	p := NewPage()
	require.NoError(t, p.SetBytes(16, []byte("hello\x00world")))

	out := p.DumpString(16, 11)
	require.Equal(t, "0010  68656c6c6f00776f726c64            |hello.world|\n", out)

	require.Contains(t, p.DumpString(PageSize-4, 8), "dump error")
	require.Equal(t, 2, strings.Count(p.DumpString(0, 20), "\n"))
}
