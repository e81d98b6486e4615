package portaudio

import "testing"

func TestFrameChunkDecodesLittleEndianSamples(t *testing.T) {
	out := make([]int16, 2)

	if err := frameChunk([]byte{0x01, 0x00, 0xFF, 0x7F}, out); err != nil {
		t.Fatalf("unexpected error framing chunk: %v", err)
	}
	if out[0] != 1 || out[1] != 32767 {
		t.Fatalf("expected samples [1 32767], got %v", out)
	}
}

func TestFrameChunkZeroPadsAShortFinalChunk(t *testing.T) {
	out := []int16{-1, -1, -1, -1}

	if err := frameChunk([]byte{0x02, 0x00}, out); err != nil {
		t.Fatalf("unexpected error framing chunk: %v", err)
	}
	if out[0] != 2 {
		t.Fatalf("expected the first sample to be 2, got %v", out[0])
	}
	for i, sample := range out[1:] {
		if sample != 0 {
			t.Fatalf("expected silence in padded sample %d, got %v", i+1, sample)
		}
	}
}
