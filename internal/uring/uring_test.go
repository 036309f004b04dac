package uring

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestRing_CreateAndClose(t *testing.T) {
	r, err := NewRing(1)
	if err != nil {
		t.Fatalf("NewRing() error: %v", err)
	}
	if r.Entries() < 1 {
		t.Errorf("Entries() = %d, want >= 1", r.Entries())
	}
	r.Close()
}

func TestRing_ReadCycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	content := []byte("hello uring\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fd)

	r, err := NewRing(1)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	buf := make([]byte, 64)
	sqe, err := r.NextSQE()
	if err != nil {
		t.Fatalf("NextSQE() error: %v", err)
	}
	sqe.PrepRead(int32(fd), &buf[0], uint32(len(buf)), 0)

	if err := r.Submit(); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	cqe, err := r.WaitCQE()
	if err != nil {
		t.Fatalf("WaitCQE() error: %v", err)
	}
	res := cqe.Res
	r.Seen()

	if int(res) != len(content) {
		t.Errorf("Res = %d, want %d", res, len(content))
	}
	if !bytes.Equal(buf[:res], content) {
		t.Errorf("buf = %q, want %q", buf[:res], content)
	}
}

func TestRing_ReadAtEOF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	content := []byte("abc")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fd)

	r, err := NewRing(1)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	buf := make([]byte, 16)
	sqe, err := r.NextSQE()
	if err != nil {
		t.Fatal(err)
	}
	sqe.PrepRead(int32(fd), &buf[0], uint32(len(buf)), uint64(len(content)))
	if err := r.Submit(); err != nil {
		t.Fatal(err)
	}

	cqe, err := r.WaitCQE()
	if err != nil {
		t.Fatal(err)
	}
	res := cqe.Res
	r.Seen()

	if res != 0 {
		t.Errorf("Res at EOF = %d, want 0", res)
	}
}

func TestRing_QueueFull(t *testing.T) {
	r, err := NewRing(1)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	for i := uint32(0); i < r.Entries(); i++ {
		if _, err := r.NextSQE(); err != nil {
			t.Fatalf("NextSQE() #%d error: %v", i, err)
		}
	}
	if _, err := r.NextSQE(); !errors.Is(err, ErrQueueFull) {
		t.Errorf("NextSQE() on full queue = %v, want ErrQueueFull", err)
	}
}

func TestRing_SeenReleasesSlot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(path, []byte("abcdef"), 0644); err != nil {
		t.Fatal(err)
	}

	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fd)

	r, err := NewRing(1)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	// A depth-1 ring supports unbounded iterations as long as every CQE
	// is acknowledged before the next slot is acquired.
	buf := make([]byte, 1)
	for i := 0; i < 6; i++ {
		sqe, err := r.NextSQE()
		if err != nil {
			t.Fatalf("iteration %d: NextSQE() error: %v", i, err)
		}
		sqe.PrepRead(int32(fd), &buf[0], 1, uint64(i))
		if err := r.Submit(); err != nil {
			t.Fatalf("iteration %d: Submit() error: %v", i, err)
		}
		cqe, err := r.WaitCQE()
		if err != nil {
			t.Fatalf("iteration %d: WaitCQE() error: %v", i, err)
		}
		if cqe.Res != 1 {
			t.Fatalf("iteration %d: Res = %d, want 1", i, cqe.Res)
		}
		r.Seen()
	}
}
