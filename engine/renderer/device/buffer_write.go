package device

// BufferWrite describes a single GPU buffer write at a given byte offset.
type BufferWrite struct {
	Buffer Buffer
	Offset uint64
	Data   []byte
}

// WriteBuffers applies every staged write in order. Writes targeting a nil buffer are skipped.
//
// Parameters:
//   - dev: the device to write through
//   - writes: the staged writes
func WriteBuffers(dev Device, writes []BufferWrite) {
	for _, w := range writes {
		if w.Buffer == nil {
			continue
		}
		dev.WriteBuffer(w.Buffer, w.Offset, w.Data)
	}
}
