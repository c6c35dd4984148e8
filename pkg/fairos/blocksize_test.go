package fairos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSizeString(t *testing.T) {
	tests := []struct {
		size BlockSize
		want string
	}{
		{BlockSize{Value: 500, Unit: Bytes}, "500B"},
		{BlockSize{Value: 64, Unit: Kilobytes}, "64K"},
		{BlockSize{Value: 1, Unit: Megabytes}, "1M"},
		{BlockSize{Value: 2, Unit: Gigabytes}, "2G"},
		{BlockSize{Value: 1, Unit: Terabytes}, "1T"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.size.String())
	}
}

func TestParseBlockSize(t *testing.T) {
	tests := []struct {
		in      string
		want    BlockSize
		wantErr bool
	}{
		{in: "500B", want: BlockSize{Value: 500, Unit: Bytes}},
		{in: "64K", want: BlockSize{Value: 64, Unit: Kilobytes}},
		{in: "1M", want: BlockSize{Value: 1, Unit: Megabytes}},
		{in: "0G", want: BlockSize{Value: 0, Unit: Gigabytes}},
		{in: "12", wantErr: true},
		{in: "xK", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBlockSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlockSizeBytes(t *testing.T) {
	assert.Equal(t, uint64(1_000_000), BlockSize{Value: 1, Unit: Megabytes}.Bytes())
	assert.Equal(t, uint64(64_000), BlockSize{Value: 64, Unit: Kilobytes}.Bytes())
	assert.Equal(t, uint64(7), BlockSize{Value: 7, Unit: Bytes}.Bytes())
}

func TestBlockSizeConvertTruncates(t *testing.T) {
	// 1500B converted to K keeps only the whole kilobytes.
	got := BlockSize{Value: 1500, Unit: Bytes}.Convert(Kilobytes)
	assert.Equal(t, BlockSize{Value: 1, Unit: Kilobytes}, got)

	// converting down is exact
	assert.Equal(t,
		BlockSize{Value: 2000, Unit: Kilobytes},
		BlockSize{Value: 2, Unit: Megabytes}.Convert(Kilobytes))
}

func TestBlockSizeFromBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want BlockSize
	}{
		{0, BlockSize{Value: 0, Unit: Bytes}},
		{999, BlockSize{Value: 999, Unit: Bytes}},
		{1000, BlockSize{Value: 1, Unit: Kilobytes}},
		{1500, BlockSize{Value: 1500, Unit: Bytes}},
		{2_000_000, BlockSize{Value: 2, Unit: Megabytes}},
		{3_000_000_000_000, BlockSize{Value: 3, Unit: Terabytes}},
	}
	for _, tt := range tests {
		got := BlockSizeFromBytes(tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.Bytes(), "round trip must preserve the byte count")
	}
}
