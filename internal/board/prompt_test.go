package board

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestPrompter_ReadInt(t *testing.T) {
	p := NewPrompter(strings.NewReader("1234\n  -1 \n\n abc 42"))
	defer p.Close()
	ctx := context.Background()

	for _, want := range []int{1234, -1} {
		got, err := p.ReadInt(ctx)
		if err != nil || got != want {
			t.Fatalf("got %d, %v; want %d", got, err, want)
		}
	}

	if _, err := p.ReadInt(ctx); !errors.Is(err, ErrNotInteger) {
		t.Fatalf("expected ErrNotInteger, got %v", err)
	}
	if got, err := p.ReadInt(ctx); err != nil || got != 42 {
		t.Fatalf("token after malformed input: got %d, %v", got, err)
	}
	if _, err := p.ReadInt(ctx); !errors.Is(err, ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
}

func TestPrompter_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	p := NewPrompter(r)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.ReadInt(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestPrompter_ReadError(t *testing.T) {
	p := NewPrompter(failingReader{})
	defer p.Close()

	_, err := p.ReadInt(context.Background())
	if err == nil || errors.Is(err, ErrInputClosed) || !strings.Contains(err.Error(), "tty gone") {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}
