package chisel

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/akmonengine/chisel/field"
	"github.com/akmonengine/chisel/mesh"
	"github.com/golang/snappy"
)

// Volume checkpoint format: a fixed header (magic, version, resolution,
// bounds) followed by the sample data as snappy-compressed little-endian
// float32s. Narrow-band fields are mostly saturated constants, which
// snappy collapses well.

const (
	snapshotMagic   = "CHSF"
	snapshotVersion = 1
)

const snapshotHeaderSize = 4 + 1 + 3*4 + 6*8

// EncodeVolume serializes a volume to a compressed checkpoint
func EncodeVolume(v *field.Volume) []byte {
	header := make([]byte, snapshotHeaderSize)
	copy(header, snapshotMagic)
	header[4] = snapshotVersion

	off := 5
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(header[off:], uint32(v.Res[i]))
		off += 4
	}
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint64(header[off:], math.Float64bits(v.Bounds.Min[i]))
		off += 8
	}
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint64(header[off:], math.Float64bits(v.Bounds.Max[i]))
		off += 8
	}

	raw := make([]byte, len(v.Data)*4)
	for i, sample := range v.Data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(sample))
	}

	return append(header, snappy.Encode(nil, raw)...)
}

// DecodeVolume deserializes a checkpoint produced by EncodeVolume
func DecodeVolume(data []byte) (*field.Volume, error) {
	if len(data) < snapshotHeaderSize {
		return nil, fmt.Errorf("chisel: checkpoint too short (%d bytes)", len(data))
	}
	if string(data[:4]) != snapshotMagic {
		return nil, fmt.Errorf("chisel: bad checkpoint magic %q", data[:4])
	}
	if data[4] != snapshotVersion {
		return nil, fmt.Errorf("chisel: unsupported checkpoint version %d", data[4])
	}

	var res [3]int
	off := 5
	for i := 0; i < 3; i++ {
		res[i] = int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
	}

	var bounds mesh.AABB
	for i := 0; i < 3; i++ {
		bounds.Min[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
		off += 8
	}
	for i := 0; i < 3; i++ {
		bounds.Max[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
		off += 8
	}

	raw, err := snappy.Decode(nil, data[snapshotHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("chisel: checkpoint payload: %w", err)
	}

	volume, err := field.New(bounds, res, 0)
	if err != nil {
		return nil, fmt.Errorf("chisel: checkpoint header: %w", err)
	}
	if len(raw) != len(volume.Data)*4 {
		return nil, fmt.Errorf("chisel: checkpoint payload is %d bytes, want %d", len(raw), len(volume.Data)*4)
	}

	for i := range volume.Data {
		volume.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return volume, nil
}
