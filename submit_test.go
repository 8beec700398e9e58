package pixelcanvas

import (
	"context"
	"errors"
	"math/big"
	"testing"
)

func ints(data []*big.Int) []int64 {
	out := make([]int64, len(data))
	for i, v := range data {
		out[i] = v.Int64()
	}
	return out
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildPlacementCall(t *testing.T) {
	req := PlacementRequest{Position: 515, ColorID: 3, Timestamp: 1700000000}
	tests := []struct {
		name  string
		scope Scope
		want  []int64
	}{
		{"global", Global, []int64{515, 3, 1700000000}},
		{"world", World(7), []int64{7, 515, 3, 1700000000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := BuildPlacementCall(tt.scope, req)
			if call.Entrypoint != EntrypointPlacePixel {
				t.Errorf("Entrypoint = %q", call.Entrypoint)
			}
			if got := ints(call.Calldata); !equalInts(got, tt.want) {
				t.Errorf("Calldata = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildExtraPixelsCall(t *testing.T) {
	pixels := []ExtraPlacement{{Position: 10, ColorID: 1}, {Position: 20, ColorID: 2}}
	call := BuildExtraPixelsCall(Global, pixels, 99)
	want := []int64{2, 10, 20, 1, 2, 99}
	if got := ints(call.Calldata); !equalInts(got, want) {
		t.Errorf("Calldata = %v, want %v", got, want)
	}
	if call.Entrypoint != EntrypointPlaceExtraPixels {
		t.Errorf("Entrypoint = %q", call.Entrypoint)
	}
}

func TestFeeCeiling(t *testing.T) {
	tests := []struct {
		fee  int64
		m    Ratio
		want int64
	}{
		{1000, Ratio{15, 10}, 1500},
		{1001, Ratio{15, 10}, 1501},
		{1, Ratio{15, 10}, 1},
		{7, Ratio{2, 1}, 14},
		{7, Ratio{1, 0}, 0},
	}
	for _, tt := range tests {
		if got := FeeCeiling(big.NewInt(tt.fee), tt.m); got.Int64() != tt.want {
			t.Errorf("FeeCeiling(%d, %v) = %v, want %d", tt.fee, tt.m, got, tt.want)
		}
	}
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	want, _ := new(big.Int).SetString("185185183518518518351851851835", 10)
	if got := FeeCeiling(huge, Ratio{15, 10}); got.Cmp(want) != 0 {
		t.Errorf("FeeCeiling(huge) = %v, want %v", got, want)
	}
}

type fakeTarget struct {
	calls    []Call
	ceilings []*big.Int
	fee      int64
	estErr   error
	invErr   error
}

func (f *fakeTarget) EstimateFee(_ context.Context, call Call) (*big.Int, error) {
	if f.estErr != nil {
		return nil, f.estErr
	}
	return big.NewInt(f.fee), nil
}

func (f *fakeTarget) Invoke(_ context.Context, call Call, ceiling *big.Int) (string, error) {
	f.calls = append(f.calls, call)
	f.ceilings = append(f.ceilings, ceiling)
	if f.invErr != nil {
		return "", f.invErr
	}
	return "0xabc", nil
}

type fakeAccount string

func (a fakeAccount) Address() string { return string(a) }

func TestLedgerSubmitterRoutesByScope(t *testing.T) {
	global := &fakeTarget{fee: 200}
	worlds := &fakeTarget{fee: 300}
	s := NewLedgerSubmitter(DefaultConfig(), fakeAccount("0x1"), LedgerTargets{Global: global, Worlds: worlds})
	s.Logger = nil

	req := PlacementRequest{Position: 1, ColorID: 2, Timestamp: 3}
	if err := s.PlacePixel(context.Background(), Global, req); err != nil {
		t.Fatal(err)
	}
	if err := s.PlacePixel(context.Background(), World(5), req); err != nil {
		t.Fatal(err)
	}
	if len(global.calls) != 1 || len(worlds.calls) != 1 {
		t.Fatalf("calls global=%d worlds=%d, want 1 each", len(global.calls), len(worlds.calls))
	}
	if global.ceilings[0].Int64() != 300 || worlds.ceilings[0].Int64() != 450 {
		t.Errorf("ceilings = %v, %v, want 300, 450", global.ceilings[0], worlds.ceilings[0])
	}
	if got := ints(worlds.calls[0].Calldata); got[0] != 5 {
		t.Errorf("world calldata = %v, want world id first", got)
	}
}

func TestLedgerSubmitterErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		target *fakeTarget
		stage  string
	}{
		{"estimate", &fakeTarget{estErr: boom}, "estimate"},
		{"invoke", &fakeTarget{invErr: boom}, "invoke"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLedgerSubmitter(DefaultConfig(), fakeAccount("0x1"), LedgerTargets{Global: tt.target})
			err := s.PlacePixel(context.Background(), Global, PlacementRequest{})
			var se *SubmissionError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SubmissionError", err)
			}
			if se.Stage != tt.stage || !errors.Is(err, boom) {
				t.Errorf("SubmissionError = %+v", se)
			}
			if tt.stage == "estimate" && len(tt.target.calls) != 0 {
				t.Error("invoked after failed estimate")
			}
		})
	}
}

func TestLedgerSubmitterReady(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		targets LedgerTargets
		scope   Scope
		want    error
	}{
		{"no account", nil, LedgerTargets{Global: &fakeTarget{}}, Global, ErrMissingWallet},
		{"empty address", fakeAccount(""), LedgerTargets{Global: &fakeTarget{}}, Global, ErrMissingWallet},
		{"no world target", fakeAccount("0x1"), LedgerTargets{Global: &fakeTarget{}}, World(1), ErrMissingWallet},
		{"ready", fakeAccount("0x1"), LedgerTargets{Global: &fakeTarget{}}, Global, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLedgerSubmitter(DefaultConfig(), tt.account, tt.targets)
			if err := s.Ready(tt.scope); !errors.Is(err, tt.want) {
				t.Errorf("Ready = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlacementWait(t *testing.T) {
	pl := newPlacement(Global)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pl.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
	boom := errors.New("boom")
	pl.finish(boom)
	if err := pl.Wait(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Wait = %v, want boom", err)
	}
}
