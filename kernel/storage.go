package kernel

// BlockDevice models a fixed-geometry flash/NVRAM device: Blocks() blocks of
// BlockSize() bytes, all zero at construction. Misaligned writes are a
// programming error and are rejected, never padded or truncated.
//
// Thread-safety: NOT thread-safe.
type BlockDevice struct {
	blockSize int
	blocks    map[int][]byte
	count     int
}

// NewBlockDevice creates a zero-filled device.
// Fails with ErrInvalidArgument if blocks or blockSize is not positive.
func NewBlockDevice(blocks, blockSize int) (*BlockDevice, error) {
	if blocks < 1 {
		return nil, invalidArgument("device blocks must be >= 1, got %d", blocks)
	}
	if blockSize < 1 {
		return nil, invalidArgument("device block size must be >= 1, got %d", blockSize)
	}
	d := &BlockDevice{
		blockSize: blockSize,
		blocks:    make(map[int][]byte, blocks),
		count:     blocks,
	}
	for i := 0; i < blocks; i++ {
		d.blocks[i] = make([]byte, blockSize)
	}
	return d, nil
}

// Blocks returns the number of blocks.
func (d *BlockDevice) Blocks() int { return d.count }

// BlockSize returns the size of one block in bytes.
func (d *BlockDevice) BlockSize() int { return d.blockSize }

// Capacity returns Blocks()*BlockSize().
func (d *BlockDevice) Capacity() int { return d.count * d.blockSize }

// Write replaces block index with payload. The payload is copied, so later
// mutation of the caller's slice does not reach the device. On failure the
// previous block contents are untouched.
func (d *BlockDevice) Write(index int, payload []byte) error {
	if index < 0 || index >= d.count {
		return &OutOfRangeError{Index: index, Blocks: d.count}
	}
	if len(payload) != d.blockSize {
		return &SizeMismatchError{Index: index, Got: len(payload), Want: d.blockSize}
	}
	block := make([]byte, d.blockSize)
	copy(block, payload)
	d.blocks[index] = block
	return nil
}

// Read returns a copy of block index.
func (d *BlockDevice) Read(index int) ([]byte, error) {
	if index < 0 || index >= d.count {
		return nil, &OutOfRangeError{Index: index, Blocks: d.count}
	}
	out := make([]byte, d.blockSize)
	copy(out, d.blocks[index])
	return out, nil
}

// Checksum returns the sum of every byte on the device. It is a cheap drift
// detector across snapshots, not a collision-resistant hash.
func (d *BlockDevice) Checksum() uint64 {
	var sum uint64
	for i := 0; i < d.count; i++ {
		for _, b := range d.blocks[i] {
			sum += uint64(b)
		}
	}
	return sum
}
