package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestBitset(t *testing.T) {
	testcases := []struct {
		size int
		set  []int
	}{
		{size: 3, set: []int{0, 2}},
		{size: 8, set: []int{7}},
		{size: 16, set: []int{4, 5, 6, 7, 8, 10, 14, 15}},
		{size: 64, set: []int{0, 1, 33, 63}},
	}
	for pos, tc := range testcases {
		t.Run(fmt.Sprintf("case#%d", pos), func(t *testing.T) {
			bitset := NewBitset(tc.size)
			if bitset.Size() < tc.size {
				t.Fatalf("failed Size control, %d < %d", bitset.Size(), tc.size)
			}
			want := map[int]bool{}
			for _, bit := range tc.set {
				want[bit] = true
				if err := bitset.SetBit(bit); nil != err {
					t.Fatalf("failed SetBit(%d), got error %v", bit, err)
				}
			}
			for bit := range tc.size {
				got, err := bitset.GetBit(bit)
				if nil != err {
					t.Fatalf("failed GetBit(%d), got error %v", bit, err)
				}
				if got != want[bit] {
					t.Errorf("failed bit #%d control, %v != %v", bit, got, want[bit])
				}
			}
		})
	}
}

func TestBitsetTestAndSet(t *testing.T) {
	bitset := NewBitset(10)
	wasSet, err := bitset.TestAndSet(9)
	if nil != err {
		t.Fatalf("failed TestAndSet, got error %v", err)
	}
	if wasSet {
		t.Error("Oops, fresh bit reported as set")
	}
	wasSet, _ = bitset.TestAndSet(9)
	if !wasSet {
		t.Error("Oops, second TestAndSet did not report the bit as set")
	}
}

func TestBitsetRange(t *testing.T) {
	bitset := NewBitset(8)
	for _, pos := range []int{-1, 8, 100} {
		if err := bitset.SetBit(pos); !errors.Is(err, ErrRange) {
			t.Errorf("SetBit(%d): expected ErrRange, got %v", pos, err)
		}
		if _, err := bitset.GetBit(pos); !errors.Is(err, ErrRange) {
			t.Errorf("GetBit(%d): expected ErrRange, got %v", pos, err)
		}
	}
}
