// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package molecule

import (
	"encoding/binary"
)

const (
	// Size of the length/offset words used by every variable-size structure
	NumberSize = 4

	Uint32Size = 4
	Uint64Size = 8
	Byte32Size = 32
)

func PackUint32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func PackUint64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func UnpackUint32(name string, data []byte) (uint32, error) {
	if len(data) != Uint32Size {
		return 0, NewMalformedEncodingError(
			name,
			"expected %d bytes, got %d",
			Uint32Size,
			len(data),
		)
	}
	return binary.LittleEndian.Uint32(data), nil
}

func UnpackUint64(name string, data []byte) (uint64, error) {
	if len(data) != Uint64Size {
		return 0, NewMalformedEncodingError(
			name,
			"expected %d bytes, got %d",
			Uint64Size,
			len(data),
		)
	}
	return binary.LittleEndian.Uint64(data), nil
}

// UnpackByte32 copies a fixed 32-byte value
func UnpackByte32(name string, data []byte) ([Byte32Size]byte, error) {
	var ret [Byte32Size]byte
	if len(data) != Byte32Size {
		return ret, NewMalformedEncodingError(
			name,
			"expected %d bytes, got %d",
			Byte32Size,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// PackBytes encodes a byte vector as its item count followed by the raw bytes
func PackBytes(b []byte) []byte {
	ret := make([]byte, 0, NumberSize+len(b))
	ret = binary.LittleEndian.AppendUint32(ret, uint32(len(b))) // #nosec G115
	return append(ret, b...)
}

func UnpackBytes(name string, data []byte) ([]byte, error) {
	if len(data) < NumberSize {
		return nil, NewMalformedEncodingError(
			name,
			"truncated header: %d bytes",
			len(data),
		)
	}
	size := binary.LittleEndian.Uint32(data)
	if uint64(size)+NumberSize != uint64(len(data)) {
		return nil, NewMalformedEncodingError(
			name,
			"declared %d bytes but %d available",
			size,
			len(data)-NumberSize,
		)
	}
	ret := make([]byte, size)
	copy(ret, data[NumberSize:])
	return ret, nil
}

// PackFixVec encodes a vector of fixed-size items. All items must have the same length
func PackFixVec(items [][]byte) []byte {
	size := NumberSize
	for _, item := range items {
		size += len(item)
	}
	ret := make([]byte, 0, size)
	ret = binary.LittleEndian.AppendUint32(ret, uint32(len(items))) // #nosec G115
	for _, item := range items {
		ret = append(ret, item...)
	}
	return ret
}

func UnpackFixVec(name string, data []byte, itemSize int) ([][]byte, error) {
	if len(data) < NumberSize {
		return nil, NewMalformedEncodingError(
			name,
			"truncated header: %d bytes",
			len(data),
		)
	}
	count := uint64(binary.LittleEndian.Uint32(data))
	if count*uint64(itemSize)+NumberSize != uint64(len(data)) {
		return nil, NewMalformedEncodingError(
			name,
			"declared %d items of %d bytes but %d bytes available",
			count,
			itemSize,
			len(data)-NumberSize,
		)
	}
	ret := make([][]byte, 0, count)
	for i := range int(count) {
		start := NumberSize + i*itemSize
		ret = append(ret, data[start:start+itemSize])
	}
	return ret, nil
}

// PackDynVec encodes a vector of variable-size items with a total-size header and
// one offset per item, offsets being relative to the start of the structure
func PackDynVec(items [][]byte) []byte {
	headerSize := NumberSize * (len(items) + 1)
	total := headerSize
	for _, item := range items {
		total += len(item)
	}
	ret := make([]byte, 0, total)
	ret = binary.LittleEndian.AppendUint32(ret, uint32(total)) // #nosec G115
	offset := headerSize
	for _, item := range items {
		ret = binary.LittleEndian.AppendUint32(ret, uint32(offset)) // #nosec G115
		offset += len(item)
	}
	for _, item := range items {
		ret = append(ret, item...)
	}
	return ret
}

func UnpackDynVec(name string, data []byte) ([][]byte, error) {
	if len(data) < NumberSize {
		return nil, NewMalformedEncodingError(
			name,
			"truncated header: %d bytes",
			len(data),
		)
	}
	total := binary.LittleEndian.Uint32(data)
	if uint64(total) != uint64(len(data)) {
		return nil, NewMalformedEncodingError(
			name,
			"declared total size %d but %d bytes available",
			total,
			len(data),
		)
	}
	if total == NumberSize {
		return [][]byte{}, nil
	}
	if total < NumberSize*2 {
		return nil, NewMalformedEncodingError(
			name,
			"total size %d too small for an offset table",
			total,
		)
	}
	first := binary.LittleEndian.Uint32(data[NumberSize:])
	if first%NumberSize != 0 || first < NumberSize*2 || first > total {
		return nil, NewMalformedEncodingError(
			name,
			"invalid first offset %d",
			first,
		)
	}
	count := int(first/NumberSize) - 1
	offsets := make([]uint32, 0, count+1)
	for i := range count {
		offset := binary.LittleEndian.Uint32(data[NumberSize*(i+1):])
		if offset < first || offset > total {
			return nil, NewMalformedEncodingError(
				name,
				"offset %d out of bounds [%d, %d]",
				offset,
				first,
				total,
			)
		}
		if i > 0 && offset < offsets[i-1] {
			return nil, NewMalformedEncodingError(
				name,
				"offset %d decreases from %d",
				offset,
				offsets[i-1],
			)
		}
		offsets = append(offsets, offset)
	}
	offsets = append(offsets, total)
	ret := make([][]byte, 0, count)
	for i := range count {
		ret = append(ret, data[offsets[i]:offsets[i+1]])
	}
	return ret, nil
}

// PackTable encodes the fields of a table. The layout is identical to a dynvec
func PackTable(fields [][]byte) []byte {
	return PackDynVec(fields)
}

// UnpackTable splits a table into its fields, failing unless exactly fieldCount fields are present
func UnpackTable(name string, data []byte, fieldCount int) ([][]byte, error) {
	fields, err := UnpackDynVec(name, data)
	if err != nil {
		return nil, err
	}
	if len(fields) != fieldCount {
		return nil, NewMalformedEncodingError(
			name,
			"expected %d fields, found %d",
			fieldCount,
			len(fields),
		)
	}
	return fields, nil
}

// PackOption encodes an optional value. A nil inner encoding is the absent variant.
// Every present value has a non-empty encoding, so the empty byte sequence is never ambiguous
func PackOption(inner []byte) []byte {
	if inner == nil {
		return []byte{}
	}
	return inner
}

// UnpackOption reports whether the optional value is present
func UnpackOption(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// PackBytesOpt encodes an optional byte vector
func PackBytesOpt(b []byte) []byte {
	if b == nil {
		return PackOption(nil)
	}
	return PackOption(PackBytes(b))
}

func UnpackBytesOpt(name string, data []byte) ([]byte, error) {
	inner, ok := UnpackOption(data)
	if !ok {
		return nil, nil
	}
	return UnpackBytes(name, inner)
}

// PackBytesVec encodes a dynvec of byte vectors
func PackBytesVec(items [][]byte) []byte {
	packed := make([][]byte, 0, len(items))
	for _, item := range items {
		packed = append(packed, PackBytes(item))
	}
	return PackDynVec(packed)
}

func UnpackBytesVec(name string, data []byte) ([][]byte, error) {
	items, err := UnpackDynVec(name, data)
	if err != nil {
		return nil, err
	}
	ret := make([][]byte, 0, len(items))
	for _, item := range items {
		tmp, err := UnpackBytes(name, item)
		if err != nil {
			return nil, err
		}
		ret = append(ret, tmp)
	}
	return ret, nil
}
