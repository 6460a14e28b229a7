package protocol

import "testing"

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)

	if !fifo.IsEmpty() {
		t.Error("new FIFO should be empty")
	}

	data := []byte{1, 2, 3, 4, 5}
	if written := fifo.Write(data); written != 5 {
		t.Errorf("expected to write 5 bytes, wrote %d", written)
	}
	if fifo.Available() != 5 {
		t.Errorf("expected 5 bytes available, got %d", fifo.Available())
	}

	readBuf := make([]byte, 3)
	if read := fifo.Read(readBuf); read != 3 {
		t.Errorf("expected to read 3 bytes, read %d", read)
	}
	if readBuf[0] != 1 || readBuf[1] != 2 || readBuf[2] != 3 {
		t.Errorf("read data mismatch: got %v", readBuf)
	}

	b, ok := fifo.ReadByte()
	if !ok || b != 4 {
		t.Errorf("expected byte 4, got %d ok=%v", b, ok)
	}
}

func TestFifoBufferWrapAround(t *testing.T) {
	fifo := NewFifoBuffer(5)

	fifo.Write([]byte{1, 2, 3, 4})

	readBuf := make([]byte, 2)
	fifo.Read(readBuf)

	written := fifo.Write([]byte{5, 6})
	if written != 2 {
		t.Errorf("expected to write 2 bytes, wrote %d", written)
	}

	allData := make([]byte, 4)
	read := fifo.Read(allData)
	if read != 4 {
		t.Errorf("expected to read 4 bytes, read %d", read)
	}
	if allData[0] != 3 || allData[1] != 4 || allData[2] != 5 || allData[3] != 6 {
		t.Errorf("wrap-around data mismatch: got %v", allData)
	}
}

func TestFifoBufferFull(t *testing.T) {
	fifo := NewFifoBuffer(4)
	written := fifo.Write([]byte{1, 2, 3, 4, 5})
	if written != 3 {
		t.Errorf("expected to write 3 bytes into a 4-byte FIFO (1 reserved), wrote %d", written)
	}
	if fifo.Free() != 0 {
		t.Errorf("expected 0 free bytes, got %d", fifo.Free())
	}
}
