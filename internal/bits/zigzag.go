package bits

// ZigZag decodes a ZigZag encoded integer and returns it.
//
// Examples of ZigZag encoded values on the left and decoded values on the
// right:
//
//	0 =>  0
//	1 => -1
//	2 =>  1
//	3 => -2
//	4 =>  2
//	5 => -3
//	6 =>  3
//
// Rice-coded residuals interleave negative and positive values this way so
// that small magnitudes of either sign get short codes.
//
// ref: https://developers.google.com/protocol-buffers/docs/encoding
func ZigZag(x uint32) int32 {
	return int32(x>>1) ^ -int32(x&1)
}

// EncodeZigZag maps a signed integer onto its ZigZag encoded form. It is the
// inverse of ZigZag and is used by the bitstream builders in tests.
func EncodeZigZag(x int32) uint32 {
	return uint32(x<<1) ^ uint32(x>>31)
}
