package frame

import "encoding/binary"

// AppendCell appends v as a protocol [bytes] value.
func AppendCell(dst, v []byte) []byte {
	dst = AppendInt(dst, int32(len(v)))
	return append(dst, v...)
}

// AppendNull appends a NULL [bytes] value.
func AppendNull(dst []byte) []byte {
	return AppendInt(dst, -1)
}

func AppendInt(dst []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v))
}
