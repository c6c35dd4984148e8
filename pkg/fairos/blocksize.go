package fairos

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockSizeUnit is a decimal SI magnitude for file block sizes.
type BlockSizeUnit int

const (
	Bytes BlockSizeUnit = iota
	Kilobytes
	Megabytes
	Gigabytes
	Terabytes
)

var blockSizeSuffixes = [...]string{"B", "K", "M", "G", "T"}

func (u BlockSizeUnit) multiplier() uint64 {
	m := uint64(1)
	for i := BlockSizeUnit(0); i < u; i++ {
		m *= 1000
	}
	return m
}

// BlockSize expresses a file block size as a value and a decimal SI unit.
// The wire format is the value followed by the unit suffix, e.g. "1M".
type BlockSize struct {
	Value uint64
	Unit  BlockSizeUnit
}

// BlockSizeFromBytes picks the largest unit that divides n without a
// remainder, so String round-trips the exact byte count.
func BlockSizeFromBytes(n uint64) BlockSize {
	unit := Bytes
	for unit < Terabytes && n != 0 && n%1000 == 0 {
		n /= 1000
		unit++
	}
	return BlockSize{Value: n, Unit: unit}
}

// Bytes returns the size in bytes. Conversions truncate.
func (b BlockSize) Bytes() uint64 {
	return b.Value * b.Unit.multiplier()
}

// Convert re-expresses the size in the given unit, truncating toward zero.
func (b BlockSize) Convert(unit BlockSizeUnit) BlockSize {
	return BlockSize{Value: b.Bytes() / unit.multiplier(), Unit: unit}
}

func (b BlockSize) String() string {
	return strconv.FormatUint(b.Value, 10) + blockSizeSuffixes[b.Unit]
}

// ParseBlockSize parses the wire form produced by String.
func ParseBlockSize(s string) (BlockSize, error) {
	for unit, suffix := range blockSizeSuffixes {
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		value, err := strconv.ParseUint(strings.TrimSuffix(s, suffix), 10, 64)
		if err != nil {
			return BlockSize{}, fmt.Errorf("fairos: parse block size %q: %w", s, err)
		}
		return BlockSize{Value: value, Unit: BlockSizeUnit(unit)}, nil
	}
	return BlockSize{}, fmt.Errorf("fairos: parse block size %q: unknown unit", s)
}
