// Package tt implements the search's transposition table: a fixed-size,
// bucketed hash table shared across worker goroutines without a mutex.
// Each slot is guarded by the classic XOR trick (the stored key is the
// Zobrist hash XORed with the packed data word) so a reader that observes
// a torn write sees a key/data mismatch and treats the slot as a miss
// rather than returning garbage.
package tt

import (
	"sync/atomic"

	"github.com/hailam/shogi-usi/internal/shogi"
)

// Bound records which side of the search window a stored score is exact
// for: the principal-variation value, a fail-high lower bound, or a
// fail-low upper bound.
type Bound uint8

const (
	BoundNone  Bound = iota // reserved: a zero data word means "empty slot", never stored
	BoundExact
	BoundLower
	BoundUpper
)

// MateValue is the score magnitude used to signal forced mate, biased by
// ply-to-mate so that shorter mates sort above longer ones.
const MateValue = 32000

// MaxPly bounds the ply-distance adjustment applied to mate scores when
// they cross the table boundary; it must exceed the deepest search depth
// actually reached.
const MaxPly = 128

// bucketSlots is the number of entries probed together on every lookup.
// Four slots keep a bucket within a single 64-byte cache line (2 x
// uint64 per slot) while giving the replacement policy enough rivals to
// choose from.
const bucketSlots = 4

// Replacement-policy tuning: how strongly generation distance and exact
// bounds weigh against raw depth when picking a victim slot.
const (
	generationPenalty = 2
	exactBonus        = 4
)

const generationMask = 0x3F // 6-bit generation counter, wraps at 64

type slot struct {
	key  atomic.Uint64
	data atomic.Uint64
}

type bucket struct {
	slots [bucketSlots]slot
}

// Table is a lock-free, bucketed transposition table shared by every
// search worker. The zero value is not usable; construct with New.
type Table struct {
	buckets    []bucket
	mask       uint64
	generation atomic.Uint32

	probes atomic.Uint64
	hits   atomic.Uint64
}

// Entry is the unpacked result of a successful Probe.
type Entry struct {
	Move       shogi.Move
	Score      int
	StaticEval int
	Depth      int
	Bound      Bound
	PV         bool
	Generation uint8
}

// New allocates a table sized to fit within sizeMB megabytes, rounding
// the bucket count down to the nearest power of two.
func New(sizeMB int) *Table {
	const bucketBytes = bucketSlots * 16 // two uint64 words per slot
	budget := uint64(sizeMB) * 1024 * 1024
	numBuckets := roundDownToPowerOf2(budget / bucketBytes)
	if numBuckets == 0 {
		numBuckets = 1
	}
	return newTable(int(numBuckets))
}

func newTable(numBuckets int) *Table {
	return &Table{
		buckets: make([]bucket, numBuckets),
		mask:    uint64(numBuckets) - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// NewSearch advances the generation counter at the start of a root
// search, marking every previously stored entry as one generation older.
func (t *Table) NewSearch() {
	t.generation.Add(1)
}

func (t *Table) generationNow() uint8 {
	return uint8(t.generation.Load() & generationMask)
}

// Clear zeroes every slot and resets statistics and generation.
func (t *Table) Clear() {
	for i := range t.buckets {
		b := &t.buckets[i]
		for j := range b.slots {
			b.slots[j].key.Store(0)
			b.slots[j].data.Store(0)
		}
	}
	t.generation.Store(0)
	t.probes.Store(0)
	t.hits.Store(0)
}

// Probe looks up hash and, on a hit, returns the stored entry with its
// score already adjusted from mate-in-tree-distance to mate-in-root
// distance using ply.
func (t *Table) Probe(hash uint64, ply int) (Entry, bool) {
	t.probes.Add(1)
	b := &t.buckets[hash&t.mask]
	for i := range b.slots {
		s := &b.slots[i]
		key := s.key.Load()
		data := s.data.Load()
		if data == 0 && key == 0 {
			continue
		}
		if key^data != hash {
			continue
		}
		move, score, staticEval, depth, bound, pv, gen := unpackData(data)
		t.hits.Add(1)
		return Entry{
			Move:       move,
			Score:      AdjustScoreFromTT(score, ply),
			StaticEval: staticEval,
			Depth:      depth,
			Bound:      bound,
			PV:         pv,
			Generation: gen,
		}, true
	}
	return Entry{}, false
}

// Store writes a search result into hash's bucket. score is adjusted to
// mate-in-tree-distance before storage; callers pass the raw search score
// at ply.
func (t *Table) Store(hash uint64, depth int, bound Bound, score, staticEval int, ttPV bool, move shogi.Move, ply int) {
	if depth < 0 {
		depth = 0
	}
	if depth > 0x7F {
		depth = 0x7F
	}
	gen := t.generationNow()
	b := &t.buckets[hash&t.mask]

	var victim *slot
	bestPriority := 0
	found := false
	for i := range b.slots {
		s := &b.slots[i]
		key := s.key.Load()
		data := s.data.Load()

		if data == 0 && key == 0 {
			victim = s
			found = true
			break
		}
		if key^data == hash {
			victim = s
			found = true
			break
		}

		_, _, _, d, bnd, _, g := unpackData(data)
		priority := d - genDistance(gen, g)*generationPenalty
		if bnd == BoundExact {
			priority += exactBonus
		}
		if !found || priority < bestPriority {
			bestPriority = priority
			victim = s
			found = true
		}
	}

	storedScore := AdjustScoreToTT(score, ply)
	packed := packData(move, storedScore, staticEval, depth, bound, ttPV, gen)
	victim.data.Store(packed)
	victim.key.Store(hash ^ packed)
}

func genDistance(current, old uint8) int {
	return int((current - old) & generationMask)
}

// HashFull reports table occupancy in parts-per-thousand, sampled from
// the table's current generation over its first 1000 slots.
func (t *Table) HashFull() int {
	gen := t.generationNow()
	total := len(t.buckets) * bucketSlots
	sample := 1000
	if sample > total {
		sample = total
	}
	used := 0
	for i := 0; i < sample; i++ {
		b := &t.buckets[i/bucketSlots]
		s := &b.slots[i%bucketSlots]
		data := s.data.Load()
		if data == 0 {
			continue
		}
		_, _, _, _, _, _, g := unpackData(data)
		if g == gen {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return (used * 1000) / sample
}

// HitRate returns the cumulative probe hit rate as a percentage.
func (t *Table) HitRate() float64 {
	probes := t.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(t.hits.Load()) / float64(probes) * 100
}

// Buckets returns the number of buckets allocated.
func (t *Table) Buckets() int {
	return len(t.buckets)
}

// AdjustScoreFromTT converts a stored mate score (distance measured from
// the table entry's own subtree) into a score measured from the search
// root, given the current ply.
func AdjustScoreFromTT(score, ply int) int {
	switch {
	case score >= MateValue-MaxPly:
		return score - ply
	case score <= -MateValue+MaxPly:
		return score + ply
	default:
		return score
	}
}

// AdjustScoreToTT is the inverse of AdjustScoreFromTT, applied before a
// mate score is written so it is independent of the storing node's ply.
func AdjustScoreToTT(score, ply int) int {
	switch {
	case score >= MateValue-MaxPly:
		return score + ply
	case score <= -MateValue+MaxPly:
		return score - ply
	default:
		return score
	}
}
