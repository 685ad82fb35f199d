package shogi

// Hand holds the captured-piece counts available for one side to drop,
// indexed densely via handIndex (Pawn,Lance,Knight,Silver,Gold,Bishop,Rook).
type Hand [7]uint8

// Count returns how many of pt are held (0 if pt is not hand-eligible).
func (h Hand) Count(pt PieceType) int {
	i := handIndex(pt)
	if i < 0 {
		return 0
	}
	return int(h[i])
}

// Add increments the count of pt, clamped to its maximum.
func (h Hand) Add(pt PieceType) Hand {
	i := handIndex(pt)
	if i < 0 {
		return h
	}
	if int(h[i]) < HandMax(pt) {
		h[i]++
	}
	return h
}

// Remove decrements the count of pt (no-op if already zero).
func (h Hand) Remove(pt PieceType) Hand {
	i := handIndex(pt)
	if i < 0 || h[i] == 0 {
		return h
	}
	h[i]--
	return h
}

// IsEmpty reports whether the hand holds no pieces at all.
func (h Hand) IsEmpty() bool {
	for _, c := range h {
		if c != 0 {
			return false
		}
	}
	return true
}

// String renders the hand in SFEN piece-count order, e.g. "2Pb".
func (h Hand) String(c Color) string {
	if h.IsEmpty() {
		return ""
	}
	out := make([]byte, 0, 16)
	for _, pt := range HandOrder {
		n := h.Count(pt)
		if n == 0 {
			continue
		}
		if n > 1 {
			out = appendInt(out, n)
		}
		ch := pt.USIChar()
		if c == White {
			ch = ch + ('a' - 'A')
		}
		out = append(out, ch)
	}
	return string(out)
}

func appendInt(dst []byte, n int) []byte {
	if n == 0 {
		return append(dst, '0')
	}
	start := len(dst)
	for n > 0 {
		dst = append(dst, byte('0'+n%10))
		n /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(dst)-1; i < j; i, j = i+1, j-1 {
		dst[i], dst[j] = dst[j], dst[i]
	}
	return dst
}
