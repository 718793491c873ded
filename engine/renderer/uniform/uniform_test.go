package uniform

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device/devicetest"
)

func TestPushAlignsOffsets(t *testing.T) {
	b := NewDynamicUniformBuffer("test", 64)
	if b.Stride() != 256 {
		t.Fatalf("stride = %d, want 256", b.Stride())
	}
	for i, want := range []uint32{0, 256, 512} {
		if got := b.Push(make([]byte, 64)); got != want {
			t.Errorf("record %d offset = %d, want %d", i, got, want)
		}
	}
	if b.Len() != 3 {
		t.Errorf("Len = %d, want 3", b.Len())
	}
}

func TestPushOversizedRecordPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an oversized record")
		}
	}()
	NewDynamicUniformBuffer("test", 16).Push(make([]byte, 17))
}

func TestBindingUnavailableWithoutStorage(t *testing.T) {
	dev := devicetest.NewDevice()
	b := NewDynamicUniformBuffer("test", 64)

	if _, ok := b.Binding(); ok {
		t.Error("binding must be unavailable before the first write")
	}
	if err := b.Write(dev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(dev.Buffers) != 0 {
		t.Error("writing zero records must not allocate")
	}

	b.Push(make([]byte, 64))
	if err := b.Write(dev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b.Clear()
	if _, ok := b.Binding(); ok {
		t.Error("binding must be unavailable with zero records staged")
	}
}

func TestWriteRelocatesOnlyWhenGrowing(t *testing.T) {
	dev := devicetest.NewDevice()
	b := NewDynamicUniformBuffer("test", 64, WithInitialCapacity(2))

	b.Push(bytes.Repeat([]byte{1}, 64))
	if err := b.Write(dev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	first, ok := b.Binding()
	if !ok || first.Generation != 1 || first.Size != 64 {
		t.Fatalf("unexpected binding %+v ok=%v", first, ok)
	}

	// same capacity, new contents
	b.Clear()
	b.Push(bytes.Repeat([]byte{2}, 64))
	b.Push(bytes.Repeat([]byte{3}, 64))
	if err := b.Write(dev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	second, _ := b.Binding()
	if second.Generation != first.Generation || second.Buffer != first.Buffer {
		t.Error("writing within capacity must not relocate")
	}
	data := dev.Buffers[0].Data
	if data[0] != 2 || data[256] != 3 {
		t.Errorf("contents not re-copied: %d %d", data[0], data[256])
	}

	b.Push(make([]byte, 64))
	if err := b.Write(dev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	third, _ := b.Binding()
	if third.Generation != 2 || third.Buffer == first.Buffer {
		t.Error("growing past capacity must relocate")
	}
	if !dev.Buffers[0].Released {
		t.Error("the old buffer must be released on relocation")
	}
	if third.Buffer.Size() < 3*256 {
		t.Errorf("relocated buffer too small: %d", third.Buffer.Size())
	}
}
