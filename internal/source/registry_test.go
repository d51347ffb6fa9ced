package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssl-lang/ssl-lsp/location"
)

func TestRegistryPositionAtASCII(t *testing.T) {
	reg := NewRegistry()
	id := location.MustNewSourceID("test://registry/ascii.ssl")
	reg.Register(id, []byte("variable x;\nprocedure start begin\nend\n"))

	pos := reg.PositionAt(id, 12)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 1, pos.Column)
}

func TestRegistryPositionAtUTF16SurrogatePair(t *testing.T) {
	reg := NewRegistry()
	id := location.MustNewSourceID("test://registry/emoji.ssl")
	// "x" + U+1F600 (4 UTF-8 bytes, 2 UTF-16 units) + "y"
	reg.Register(id, []byte("x\U0001F600y"))

	// byte 0 = 'x' (col 1), byte 1 = start of emoji (col 2),
	// byte 5 = 'y' (col 4, since the emoji consumed 2 UTF-16 columns)
	assert.Equal(t, 1, reg.PositionAt(id, 0).Column)
	assert.Equal(t, 2, reg.PositionAt(id, 1).Column)
	assert.Equal(t, 4, reg.PositionAt(id, 5).Column)
}

func TestRegistryByteOffsetFromUTF16RoundTrip(t *testing.T) {
	reg := NewRegistry()
	id := location.MustNewSourceID("test://registry/roundtrip.ssl")
	reg.Register(id, []byte("variable count := 0;\n"))

	off, ok := reg.ByteOffsetFromUTF16(id, 0, 9)
	require.True(t, ok)
	pos := reg.PositionAt(id, off)
	assert.Equal(t, 1, pos.Line)
	assert.Equal(t, 10, pos.Column)
}

func TestRegistryUnknownSource(t *testing.T) {
	reg := NewRegistry()
	unknown := location.MustNewSourceID("test://registry/missing.ssl")

	assert.True(t, reg.PositionAt(unknown, 0).IsZero())
	_, ok := reg.LineStartByte(unknown, 1)
	assert.False(t, ok)
	_, ok = reg.ByteOffsetFromUTF16(unknown, 0, 0)
	assert.False(t, ok)
}

func TestRegistryRegisterOnceCollision(t *testing.T) {
	reg := NewRegistry()
	id := location.MustNewSourceID("test://registry/header.ssl")

	require.NoError(t, reg.RegisterOnce(id, []byte("#define WORLDMAP 1\n")))
	require.NoError(t, reg.RegisterOnce(id, []byte("#define WORLDMAP 1\n")))

	err := reg.RegisterOnce(id, []byte("#define WORLDMAP 2\n"))
	var collision *KeyCollisionError
	require.ErrorAs(t, err, &collision)
}

func TestRegistryForgetOnClose(t *testing.T) {
	reg := NewRegistry()
	id := location.MustNewSourceID("test://registry/closeable.ssl")
	reg.Register(id, []byte("variable x;\n"))
	require.True(t, reg.Has(id))

	reg.Forget(id)
	assert.False(t, reg.Has(id))
}

func TestRegistryCRLFLineOffsets(t *testing.T) {
	reg := NewRegistry()
	id := location.MustNewSourceID("test://registry/crlf.ssl")
	reg.Register(id, []byte("variable x;\r\nprocedure p begin\r\nend\r\n"))

	count, ok := reg.LineCount(id)
	require.True(t, ok)
	assert.Equal(t, 4, count)
}
