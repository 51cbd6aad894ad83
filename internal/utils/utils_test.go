package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "NGN 5,500.00", FormatNaira(5500))
	assert.Equal(t, "NGN 500.00", FormatNaira(500))
	assert.Equal(t, "NGN 1,234,567.50", FormatNaira(1234567.5))
}

func TestParseSchedule(t *testing.T) {
	loc := time.FixedZone("WAT", 3600)
	at, err := ParseSchedule("2026-03-01", "09:15:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 8, at.UTC().Hour())

	_, err = ParseSchedule("01/03/2026", "09:15", loc)
	assert.Error(t, err)
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	var km KeyedMutex
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("b1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, km.Len(), "entries are released")
}

func TestSafeFilenamePart(t *testing.T) {
	assert.Equal(t, "NACO-AB12_x", SafeFilenamePart("NACO-AB12/x"))
	assert.Equal(t, "NA", SafeFilenamePart("  "))
}
