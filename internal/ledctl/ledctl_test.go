package ledctl

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDriver struct {
	mu     sync.Mutex
	paints []Event
	offs   int
}

func (d *recordingDriver) Paint(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paints = append(d.paints, e)
}

func (d *recordingDriver) Off() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offs++
}

func (d *recordingDriver) snapshot() ([]Event, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.paints...), d.offs
}

func TestControllerPaintsAndTurnsOff(t *testing.T) {
	driver := &recordingDriver{}
	c := New(driver)
	stop := make(chan struct{})

	go c.Run(stop)
	c.Signal(BleNew)

	require.Eventually(t, func() bool {
		paints, offs := driver.snapshot()
		return len(paints) == 1 && paints[0] == BleNew && offs == 1
	}, time.Second, 5*time.Millisecond)

	close(stop)
}

func TestSignalNeverBlocksWhenQueueFull(t *testing.T) {
	driver := &recordingDriver{}
	c := New(driver)
	// Run is never started; the channel can only hold eventQueueLen items
	// before Signal must start dropping instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < eventQueueLen*4; i++ {
			c.Signal(TcpOk)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Signal blocked despite a full, undrained queue")
	}
}

func TestControllerCoalescesDuringHold(t *testing.T) {
	driver := &recordingDriver{}
	c := New(driver)
	stop := make(chan struct{})
	go c.Run(stop)

	c.Signal(BleNew)
	time.Sleep(5 * time.Millisecond) // well within MinHold
	c.Signal(TcpOk)

	require.Eventually(t, func() bool {
		paints, _ := driver.snapshot()
		if len(paints) == 0 {
			return false
		}
		return paints[len(paints)-1] == TcpOk
	}, time.Second, 5*time.Millisecond)

	close(stop)

	paints, _ := driver.snapshot()
	assert.LessOrEqual(t, len(paints), 3) // superseded event is not repainted after the hold
}
