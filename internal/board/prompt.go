package board

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
)

var (
	// ErrInputClosed is returned once the input stream is exhausted.
	ErrInputClosed = errors.New("input closed")

	// ErrNotInteger is returned for a token that is not a whole number.
	ErrNotInteger = errors.New("not an integer")
)

// Prompter reads whitespace-separated tokens from an input stream on a
// background goroutine so reads can be abandoned through a context.
type Prompter struct {
	tokens chan string
	done   chan struct{}

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

func NewPrompter(r io.Reader) *Prompter {
	p := &Prompter{
		tokens: make(chan string),
		done:   make(chan struct{}),
	}
	go p.scan(r)
	return p
}

func (p *Prompter) scan(r io.Reader) {
	defer close(p.tokens)

	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		select {
		case p.tokens <- sc.Text():
		case <-p.done:
			return
		}
	}

	p.mu.Lock()
	p.err = sc.Err()
	p.mu.Unlock()
}

// ReadInt returns the next token as an int. Malformed tokens yield an error
// wrapping ErrNotInteger; the token is consumed either way.
func (p *Prompter) ReadInt(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case tok, ok := <-p.tokens:
		if !ok {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.err != nil {
				return 0, fmt.Errorf("read input: %w", p.err)
			}
			return 0, ErrInputClosed
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", tok, ErrNotInteger)
		}
		return n, nil
	}
}

// Close stops the reader goroutine at its next token. A read blocked on the
// underlying stream is not interrupted.
func (p *Prompter) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}
