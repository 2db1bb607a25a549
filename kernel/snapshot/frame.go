package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/inference-sim/detkernel/kernel"
)

// headerSize is the length prefix: 8 bytes, big-endian payload length.
const headerSize = 8

// ErrCorrupt reports a frame header that cannot describe the device contents.
var ErrCorrupt = errors.New("corrupt snapshot frame")

// FrameBlocks returns how many blocks a payload of n bytes occupies.
func FrameBlocks(n, blockSize int) int {
	return (headerSize + n + blockSize - 1) / blockSize
}

// WriteFrame stores data on dev starting at block 0: a length header, the
// payload, then zeros through the last block so no earlier frame survives.
// If the frame does not fit, it fails with kernel.ErrOutOfRange before
// writing anything.
func WriteFrame(dev *kernel.BlockDevice, data []byte) error {
	bs := dev.BlockSize()
	need := FrameBlocks(len(data), bs)
	if need > dev.Blocks() {
		return fmt.Errorf("snapshot of %d bytes needs %d blocks: %w",
			len(data), need, &kernel.OutOfRangeError{Index: need - 1, Blocks: dev.Blocks()})
	}

	frame := make([]byte, dev.Capacity())
	binary.BigEndian.PutUint64(frame, uint64(len(data)))
	copy(frame[headerSize:], data)
	for i := 0; i < dev.Blocks(); i++ {
		if err := dev.Write(i, frame[i*bs:(i+1)*bs]); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrame returns the payload stored by WriteFrame.
func ReadFrame(dev *kernel.BlockDevice) ([]byte, error) {
	raw := make([]byte, 0, dev.Capacity())
	for i := 0; i < dev.Blocks(); i++ {
		b, err := dev.Read(i)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b...)
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: device smaller than header", ErrCorrupt)
	}
	n := binary.BigEndian.Uint64(raw)
	if n > uint64(len(raw)-headerSize) {
		return nil, fmt.Errorf("%w: length %d exceeds device capacity %d", ErrCorrupt, n, len(raw)-headerSize)
	}
	return raw[headerSize : headerSize+int(n)], nil
}

// Persist canonicalizes s, frames it onto dev and returns its digest.
func Persist(dev *kernel.BlockDevice, s *Snapshot) (string, error) {
	data, err := s.Canonical()
	if err != nil {
		return "", err
	}
	if err := WriteFrame(dev, data); err != nil {
		return "", err
	}
	return Digest(data), nil
}

// Restore reads and decodes the snapshot framed on dev.
func Restore(dev *kernel.BlockDevice) (*Snapshot, error) {
	data, err := ReadFrame(dev)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
