package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCodesAreUniqueUnderConcurrency(t *testing.T) {
	src := NewULIDSource()
	now := time.Now()

	const workers, perWorker = 8, 500
	codes := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				codes <- src.QRCode(now)
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]struct{}, workers*perWorker)
	for c := range codes {
		require.True(t, strings.HasPrefix(c, "QR"))
		require.Len(t, c, 28)
		_, dup := seen[c]
		require.False(t, dup, "duplicate code %s", c)
		seen[c] = struct{}{}
	}
}

func TestSnowflake(t *testing.T) {
	_, err := NewSnowflake(-1)
	assert.ErrorIs(t, err, ErrInvalidNode)
	_, err = NewSnowflake(1024)
	assert.ErrorIs(t, err, ErrInvalidNode)

	sf, err := NewSnowflake(3)
	require.NoError(t, err)
	seen := map[string]bool{}
	for range 5000 {
		id := sf.Generate()
		require.False(t, seen[id])
		seen[id] = true
	}
}
