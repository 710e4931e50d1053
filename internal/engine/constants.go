package engine

// Byte sizes for float types.
const (
	bytesPerFloat32 = 4
	bytesPerFloat64 = 8
)
