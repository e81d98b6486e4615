package transcripts

import (
	"math"
	"testing"
)

func TestValidateAcceptsBothChannels(t *testing.T) {
	for _, channel := range []Channel{ChannelRaw, ChannelCorrected} {
		segment := NewSegment(channel, "hello", 1.5)
		if err := segment.Validate(); err != nil {
			t.Fatalf("expected valid segment on channel %q, got %v", channel, err)
		}
	}
}

func TestValidateRejectsUnknownChannel(t *testing.T) {
	segment := NewSegment(Channel("interim"), "hello", 1.5)
	if err := segment.Validate(); err == nil {
		t.Fatalf("expected unknown channel to be rejected")
	}
}

func TestValidateRejectsEmptyText(t *testing.T) {
	segment := NewSegment(ChannelRaw, "", 1.5)
	if err := segment.Validate(); err == nil {
		t.Fatalf("expected empty text to be rejected")
	}
}

func TestValidateRejectsInvalidEndTimes(t *testing.T) {
	for _, endTime := range []float64{-0.1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		segment := NewSegment(ChannelRaw, "hello", endTime)
		if err := segment.Validate(); err == nil {
			t.Fatalf("expected end time %v to be rejected", endTime)
		}
	}
}

func TestValidateAcceptsZeroEndTime(t *testing.T) {
	segment := NewSegment(ChannelCorrected, "hello", 0)
	if err := segment.Validate(); err != nil {
		t.Fatalf("expected zero end time to be valid, got %v", err)
	}
}
