package timesync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestAnchorScenario reproduces spec.md §8 scenario 5: t1=100ms,
// T_srv=1_700_000_000_000ms, t2=140ms yields delta=20ms, anchor
// (ref_local=120, ref_wall=1_700_000_000_020), and a sample at local
// 220ms stamps to wall 1_700_000_000_120.
func TestAnchorScenario(t *testing.T) {
	epoch := time.Unix(0, 0)
	t1 := epoch.Add(100 * time.Millisecond)
	t2 := epoch.Add(140 * time.Millisecond)
	const srvWallMS = 1_700_000_000_000

	anchor := New(t1, t2, srvWallMS)

	assert.Equal(t, epoch.Add(120*time.Millisecond), anchor.refLocal)
	assert.EqualValues(t, 1_700_000_000_020, anchor.refWallMS)

	sample := epoch.Add(220 * time.Millisecond)
	assert.EqualValues(t, 1_700_000_000_120, anchor.Stamp(sample))
}

func TestAnchorStampSaturatesAtZero(t *testing.T) {
	epoch := time.Unix(0, 0)
	anchor := New(epoch, epoch, 0) // ref_wall = 0, ref_local = epoch

	before := epoch.Add(-10 * time.Second)
	assert.EqualValues(t, 0, anchor.Stamp(before))
}

func TestAnchorStampTime(t *testing.T) {
	epoch := time.Unix(0, 0)
	anchor := New(epoch, epoch, 1_000)
	got := anchor.StampTime(epoch)
	assert.Equal(t, int64(1_000), got.UnixMilli())
}
