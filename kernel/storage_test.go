package kernel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, blocks, blockSize int) *BlockDevice {
	t.Helper()
	d, err := NewBlockDevice(blocks, blockSize)
	require.NoError(t, err)
	return d
}

func TestNewBlockDevice_ZeroFilled(t *testing.T) {
	d := newTestDevice(t, 3, 8)
	assert.Equal(t, 3, d.Blocks())
	assert.Equal(t, 8, d.BlockSize())
	assert.Equal(t, 24, d.Capacity())
	assert.Equal(t, uint64(0), d.Checksum())
	for i := 0; i < 3; i++ {
		b, err := d.Read(i)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 8), b)
	}
}

func TestNewBlockDevice_InvalidGeometry(t *testing.T) {
	for _, g := range [][2]int{{0, 4}, {-1, 4}, {2, 0}, {2, -8}} {
		_, err := NewBlockDevice(g[0], g[1])
		assert.ErrorIs(t, err, ErrInvalidArgument, "geometry %v", g)
	}
}

func TestBlockDevice_Scenario_WriteReadChecksumMismatch(t *testing.T) {
	// GIVEN a device with 2 blocks of 4 bytes
	d := newTestDevice(t, 2, 4)

	// WHEN block 0 is written and read back
	require.NoError(t, d.Write(0, []byte("abcd")))
	got, err := d.Read(0)
	require.NoError(t, err)

	// THEN the content round-trips and the checksum is positive
	assert.Equal(t, []byte("abcd"), got)
	assert.Greater(t, d.Checksum(), uint64(0))

	// WHEN a short payload is written
	err = d.Write(0, []byte("ab"))

	// THEN it fails with SizeMismatch and the old content survives
	require.ErrorIs(t, err, ErrSizeMismatch)
	var sizeErr *SizeMismatchError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, SizeMismatchError{Index: 0, Got: 2, Want: 4}, *sizeErr)
	got, err = d.Read(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), got)
}

func TestBlockDevice_OutOfRange(t *testing.T) {
	d := newTestDevice(t, 2, 4)
	for _, idx := range []int{-1, 2, 100} {
		err := d.Write(idx, []byte("abcd"))
		assert.ErrorIs(t, err, ErrOutOfRange, "write %d", idx)
		_, err = d.Read(idx)
		assert.ErrorIs(t, err, ErrOutOfRange, "read %d", idx)
	}
	assert.Equal(t, uint64(0), d.Checksum(), "failed writes must not mutate")
}

func TestBlockDevice_OutOfRangeCheckedBeforeSize(t *testing.T) {
	d := newTestDevice(t, 2, 4)
	err := d.Write(5, []byte("x"))
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.NotErrorIs(t, err, ErrSizeMismatch)
}

func TestBlockDevice_Read_ReturnsCopy(t *testing.T) {
	d := newTestDevice(t, 1, 4)
	require.NoError(t, d.Write(0, []byte("wxyz")))

	b, err := d.Read(0)
	require.NoError(t, err)
	b[0] = 'Q'

	again, err := d.Read(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("wxyz"), again, "mutating a read result must not reach the device")
}

func TestBlockDevice_Write_CopiesPayload(t *testing.T) {
	d := newTestDevice(t, 1, 4)
	payload := []byte("wxyz")
	require.NoError(t, d.Write(0, payload))
	payload[0] = 'Q'

	got, err := d.Read(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("wxyz"), got)
}

func TestBlockDevice_WriteRead_AllIndices(t *testing.T) {
	d := newTestDevice(t, 5, 3)
	for i := 0; i < d.Blocks(); i++ {
		p := bytes.Repeat([]byte{byte(i + 1)}, 3)
		require.NoError(t, d.Write(i, p))
		got, err := d.Read(i)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestBlockDevice_Checksum_TracksContentChanges(t *testing.T) {
	d := newTestDevice(t, 2, 2)
	before := d.Checksum()

	// Same content rewritten: checksum unchanged.
	require.NoError(t, d.Write(1, []byte{0, 0}))
	assert.Equal(t, before, d.Checksum())

	// One byte raised: checksum moves by exactly that much.
	require.NoError(t, d.Write(1, []byte{0, 9}))
	assert.Equal(t, before+9, d.Checksum())

	// Checksum has no side effects.
	assert.Equal(t, d.Checksum(), d.Checksum())
}
