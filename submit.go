package pixelcanvas

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"math/big"
)

// Ledger entrypoints.
const (
	EntrypointPlacePixel       = "place_pixel"
	EntrypointPlaceExtraPixels = "place_extra_pixels"
)

var (
	// ErrMissingWallet is returned when a placement is requested without an
	// active account or ledger binding. Nothing is painted or sent.
	ErrMissingWallet = errors.New("pixelcanvas: no account or ledger target bound")
	// ErrPlacementPending is returned by a primary commit while another is in
	// flight and SerializePlacements is on, and by an extra-pixel commit while
	// an earlier batch is in flight.
	ErrPlacementPending = errors.New("pixelcanvas: placement already in flight")
)

// PlacementRequest is a single primary placement, built at commit time.
type PlacementRequest struct {
	Position  int
	ColorID   int
	Timestamp int64 // unix seconds
}

// ExtraPlacement is one pixel of a batched extra-pixel commit.
type ExtraPlacement struct {
	Position int
	ColorID  int
}

// Call is an entrypoint invocation addressed to a ledger target.
type Call struct {
	Entrypoint string
	Calldata   []*big.Int
}

// LedgerTarget is a ledger contract that accepts placement calls. The global
// canvas and the worlds contract are both LedgerTargets; they differ only in
// addressing, which BuildPlacementCall encodes.
type LedgerTarget interface {
	EstimateFee(ctx context.Context, call Call) (*big.Int, error)
	Invoke(ctx context.Context, call Call, feeCeiling *big.Int) (string, error)
}

// LedgerTargets selects a LedgerTarget per scope.
type LedgerTargets struct {
	Global LedgerTarget
	Worlds LedgerTarget
}

// For returns the target for scope, or nil if none is bound.
func (t LedgerTargets) For(scope Scope) LedgerTarget {
	if _, ok := scope.WorldID(); ok {
		return t.Worlds
	}
	return t.Global
}

// Submitter delivers placements to a backend. Implementations are chosen at
// construction: LedgerSubmitter, DevnetClient or OfflineSubmitter.
type Submitter interface {
	PlacePixel(ctx context.Context, scope Scope, req PlacementRequest) error
	PlaceExtraPixels(ctx context.Context, scope Scope, pixels []ExtraPlacement, timestamp int64) error
}

// ReadyChecker is implemented by submitters that can tell, before anything
// is painted, that a placement cannot be sent.
type ReadyChecker interface {
	Ready(scope Scope) error
}

// SubmissionError reports a failed fee estimate or invocation.
type SubmissionError struct {
	Stage      string // "estimate" or "invoke"
	Entrypoint string
	Scope      Scope
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("pixelcanvas: %s (%s) %s: %v", e.Entrypoint, e.Scope, e.Stage, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// BuildPlacementCall encodes a place_pixel call. Global calldata is
// [position, color, timestamp]; world calldata is prefixed with the world id.
func BuildPlacementCall(scope Scope, req PlacementRequest) Call {
	data := make([]*big.Int, 0, 4)
	if id, ok := scope.WorldID(); ok {
		data = append(data, big.NewInt(int64(id)))
	}
	data = append(data,
		big.NewInt(int64(req.Position)),
		big.NewInt(int64(req.ColorID)),
		big.NewInt(req.Timestamp),
	)
	return Call{Entrypoint: EntrypointPlacePixel, Calldata: data}
}

// BuildExtraPixelsCall encodes a place_extra_pixels call:
// [count, pos1..posN, color1..colorN, timestamp], world id first for worlds.
func BuildExtraPixelsCall(scope Scope, pixels []ExtraPlacement, timestamp int64) Call {
	data := make([]*big.Int, 0, 2*len(pixels)+3)
	if id, ok := scope.WorldID(); ok {
		data = append(data, big.NewInt(int64(id)))
	}
	data = append(data, big.NewInt(int64(len(pixels))))
	for _, p := range pixels {
		data = append(data, big.NewInt(int64(p.Position)))
	}
	for _, p := range pixels {
		data = append(data, big.NewInt(int64(p.ColorID)))
	}
	data = append(data, big.NewInt(timestamp))
	return Call{Entrypoint: EntrypointPlaceExtraPixels, Calldata: data}
}

// FeeCeiling scales a suggested fee by m using integer arithmetic, truncating
// toward zero.
func FeeCeiling(suggested *big.Int, m Ratio) *big.Int {
	if suggested == nil || m.Den == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(suggested, big.NewInt(m.Num))
	return out.Quo(out, big.NewInt(m.Den))
}

// Account identifies the connected wallet account.
type Account interface {
	Address() string
}

// LedgerSubmitter submits placements straight to ledger targets: estimate the
// fee, scale it by FeeMultiplier, then invoke with that ceiling.
type LedgerSubmitter struct {
	Targets       LedgerTargets
	Account       Account
	FeeMultiplier Ratio
	Logger        *log.Logger
}

// NewLedgerSubmitter creates a ledger submitter using cfg's fee multiplier
// and logger.
func NewLedgerSubmitter(cfg Config, account Account, targets LedgerTargets) *LedgerSubmitter {
	return &LedgerSubmitter{
		Targets:       targets,
		Account:       account,
		FeeMultiplier: cfg.FeeMultiplier,
		Logger:        cfg.logger(),
	}
}

// Ready reports ErrMissingWallet when no account or target is bound for scope.
func (s *LedgerSubmitter) Ready(scope Scope) error {
	if s.Account == nil || s.Account.Address() == "" || s.Targets.For(scope) == nil {
		return ErrMissingWallet
	}
	return nil
}

// PlacePixel sends a place_pixel call.
func (s *LedgerSubmitter) PlacePixel(ctx context.Context, scope Scope, req PlacementRequest) error {
	return s.send(ctx, scope, BuildPlacementCall(scope, req))
}

// PlaceExtraPixels sends a place_extra_pixels call.
func (s *LedgerSubmitter) PlaceExtraPixels(ctx context.Context, scope Scope, pixels []ExtraPlacement, timestamp int64) error {
	return s.send(ctx, scope, BuildExtraPixelsCall(scope, pixels, timestamp))
}

func (s *LedgerSubmitter) send(ctx context.Context, scope Scope, call Call) error {
	if err := s.Ready(scope); err != nil {
		return err
	}
	target := s.Targets.For(scope)

	fee, err := target.EstimateFee(ctx, call)
	if err != nil {
		return &SubmissionError{Stage: "estimate", Entrypoint: call.Entrypoint, Scope: scope, Err: err}
	}
	m := s.FeeMultiplier
	if m.Den == 0 {
		m = Ratio{Num: 15, Den: 10}
	}
	result, err := target.Invoke(ctx, call, FeeCeiling(fee, m))
	if err != nil {
		return &SubmissionError{Stage: "invoke", Entrypoint: call.Entrypoint, Scope: scope, Err: err}
	}
	if s.Logger != nil {
		s.Logger.Printf("pixelcanvas: %s (%s) accepted: %s", call.Entrypoint, scope, result)
	}
	return nil
}

// OfflineSubmitter bypasses placement entirely. Optimistic paint still
// happens; nothing is sent.
type OfflineSubmitter struct{}

// PlacePixel does nothing.
func (OfflineSubmitter) PlacePixel(context.Context, Scope, PlacementRequest) error { return nil }

// PlaceExtraPixels does nothing.
func (OfflineSubmitter) PlaceExtraPixels(context.Context, Scope, []ExtraPlacement, int64) error {
	return nil
}

// Reconciliation is the host's decision after a failed placement.
type Reconciliation uint8

const (
	KeepOptimistic   Reconciliation = iota // leave the optimistic paint in place
	RevertOptimistic                       // restore the prior pixel unless a later placement painted over it
	RetryOnce                              // resubmit the same request one more time
)

// PlacementFailure describes a failed primary placement.
type PlacementFailure struct {
	Request  PlacementRequest
	Scope    Scope
	Cell     Cell
	Previous color.RGBA
	Attempt  int
	Err      error
}

// Reconciler decides what to do with the optimistic paint of a failed
// placement. A nil Reconciler keeps it.
type Reconciler func(PlacementFailure) Reconciliation

// Placement tracks one in-flight submission. Done is closed, and Err becomes
// valid, during the Engine.Update that applies the result.
type Placement struct {
	Request PlacementRequest
	Extras  []ExtraPlacement
	Scope   Scope

	done chan struct{}
	err  error
}

func newPlacement(scope Scope) *Placement {
	return &Placement{Scope: scope, done: make(chan struct{})}
}

// Done returns a channel closed when the submission has finished.
func (p *Placement) Done() <-chan struct{} { return p.done }

// Err returns the final error. Only valid after Done is closed.
func (p *Placement) Err() error { return p.err }

// Wait blocks until the placement finishes or ctx ends. Another goroutine
// must be pumping Engine.Update.
func (p *Placement) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Placement) finish(err error) {
	p.err = err
	close(p.done)
}
