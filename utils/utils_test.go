package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"png header", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}},
		{"one byte", []byte{0}},
		{"two bytes", []byte{0xff, 0xfe}},
		{"all values", func() []byte {
			b := make([]byte, 256)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base64.StdEncoding.DecodeString(EncodeBinary(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestFirstSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want []string
	}{
		{"split", "One. Two! Three? Four.", 3, []string{"One.", "Two!", "Three?"}},
		{"trailing fragment", "One. and more", 4, []string{"One.", "and more"}},
		{"empty", "   ", 2, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstSentences(tt.text, tt.n))
		})
	}
}

func TestFitImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	src.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := FitImage(buf.Bytes(), 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	var thumb bytes.Buffer
	res, err := CreateThumb(50, bytes.NewReader(buf.Bytes()), &thumb)
	require.NoError(t, err)
	assert.Equal(t, uint16(400), res.OldX)
	assert.Equal(t, uint16(50), res.NewX)
	assert.Positive(t, res.ThumbSize)
}

func TestPool_Bounded(t *testing.T) {
	p := NewPool(2)
	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak, int32(2))
	assert.Equal(t, 2, p.Size())
}

func TestRun(t *testing.T) {
	p := NewPool(0)
	v, err := Run(context.Background(), p, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.sem.Acquire(context.Background(), 1))
	_, err = Run(ctx, p, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
}
