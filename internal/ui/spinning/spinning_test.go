package spinning

import (
	"bytes"
	"context"
	"github.com/stretchr/testify/assert"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinning(t *testing.T) {
	Theme = ThemeAscii
	Interval = time.Millisecond
	var out syncBuffer
	s := NewWithWriter(context.Background(), &out)
	time.Sleep(20 * time.Millisecond)
	s.Done()
	s.Done() // Calling it twice is ok.
	text := out.String()
	assert.True(t, strings.HasPrefix(text, "\033[?25l"))
	assert.True(t, strings.HasSuffix(text, "\b\b\033[?25h"))
	assert.Contains(t, text, "|")

	// Cancelling the context also stops it.
	ctx, cancel := context.WithCancel(context.Background())
	s = NewWithWriter(ctx, &out)
	cancel()
	s.wg.Wait()
}

func TestSafeInterrupt(t *testing.T) {
	ctx, cancel := SafeInterrupt(context.Background(), time.Second)
	assert.NoError(t, ctx.Err())
	cancel()
	assert.Error(t, ctx.Err())
}
