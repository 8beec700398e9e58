package pixelcanvas

import "errors"

// ErrQuotaExhausted is returned when no extra-pixel allowance remains.
var ErrQuotaExhausted = errors.New("pixelcanvas: extra pixel quota exhausted")

// StagedPixel is an extra pixel painted locally and awaiting a batch commit.
type StagedPixel struct {
	X, Y    int
	ColorID int
}

// Cell returns the staged pixel's cell.
func (p StagedPixel) Cell() Cell { return Cell{X: p.X, Y: p.Y} }

// Staging tracks the extra-pixel allowance and the staged pixels in the order
// they were placed. len(Staged()) == Used() <= Quota() always holds.
type Staging struct {
	quota       int
	basePixelUp bool
	staged      []StagedPixel
}

// NewStaging creates a staging area with the given allowance.
func NewStaging(quota int, basePixelUp bool) *Staging {
	if quota < 0 {
		quota = 0
	}
	return &Staging{quota: quota, basePixelUp: basePixelUp}
}

// Quota returns the allowance.
func (s *Staging) Quota() int { return s.quota }

// Used returns how many extra pixels are staged.
func (s *Staging) Used() int { return len(s.staged) }

// Remaining returns the unused allowance.
func (s *Staging) Remaining() int { return s.quota - len(s.staged) }

// BasePixelUp reports whether the primary placement is currently available.
func (s *Staging) BasePixelUp() bool { return s.basePixelUp }

// Staged returns a copy of the staged pixels.
func (s *Staging) Staged() []StagedPixel {
	out := make([]StagedPixel, len(s.staged))
	copy(out, s.staged)
	return out
}

// SetQuota replaces the allowance. Staged pixels beyond a reduced quota are
// dropped from the end and returned so the caller can clear them.
func (s *Staging) SetQuota(quota int, basePixelUp bool) []StagedPixel {
	if quota < 0 {
		quota = 0
	}
	s.quota = quota
	s.basePixelUp = basePixelUp
	if len(s.staged) <= quota {
		return nil
	}
	dropped := append([]StagedPixel(nil), s.staged[quota:]...)
	s.staged = s.staged[:quota]
	return dropped
}

// Applicable reports whether clicks with a color should stage extra pixels
// rather than place the primary pixel. baseAllowance is reserved for the
// primary placement while the base pixel is up.
func (s *Staging) Applicable(baseAllowance int) bool {
	reserved := 0
	if s.basePixelUp {
		reserved = baseAllowance
	}
	return s.quota > reserved
}

// Index returns the index of the staged pixel at cell, or -1.
func (s *Staging) Index(cell Cell) int {
	for i, p := range s.staged {
		if p.X == cell.X && p.Y == cell.Y {
			return i
		}
	}
	return -1
}

// At returns the staged pixel at cell, if any.
func (s *Staging) At(cell Cell) (StagedPixel, bool) {
	if i := s.Index(cell); i >= 0 {
		return s.staged[i], true
	}
	return StagedPixel{}, false
}

// Stage appends a pixel. A cell that is already staged is recolored in place
// without consuming allowance; otherwise ErrQuotaExhausted is returned when
// no allowance remains.
func (s *Staging) Stage(cell Cell, colorID int) error {
	if i := s.Index(cell); i >= 0 {
		s.staged[i].ColorID = colorID
		return nil
	}
	if len(s.staged) >= s.quota {
		return ErrQuotaExhausted
	}
	s.staged = append(s.staged, StagedPixel{X: cell.X, Y: cell.Y, ColorID: colorID})
	return nil
}

// Remove deletes the staged pixel at cell. Reports whether one was removed.
func (s *Staging) Remove(cell Cell) bool {
	i := s.Index(cell)
	if i < 0 {
		return false
	}
	s.staged = append(s.staged[:i], s.staged[i+1:]...)
	return true
}
