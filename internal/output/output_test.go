package output

import (
	"os"
	"testing"
)

func TestSummary_Plain(t *testing.T) {
	got := Summary(NoStyles(), 10)
	want := "total bytes read 10 (10 B)\n"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestSummary_Zero(t *testing.T) {
	got := Summary(NoStyles(), 0)
	want := "total bytes read 0 (0 B)\n"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestSummary_Humanized(t *testing.T) {
	got := Summary(NoStyles(), 4096)
	want := "total bytes read 4096 (4.1 kB)\n"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestWriter_Write(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ow := NewWriterFd(int(w.Fd()))
	content := []byte("hello writev\n")
	n, err := ow.Write(content)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if n != len(content) {
		t.Errorf("n = %d, want %d", n, len(content))
	}
	w.Close()

	buf := make([]byte, 64)
	rn, err := r.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:rn]) != string(content) {
		t.Errorf("read back %q, want %q", buf[:rn], content)
	}
}

func TestWriter_Empty(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	ow := NewWriterFd(int(w.Fd()))
	if n, err := ow.Write(nil); n != 0 || err != nil {
		t.Errorf("Write(nil) = %d, %v, want 0, nil", n, err)
	}
}
