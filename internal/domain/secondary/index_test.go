package secondary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/xpid/internal/domain/structure"
)

func TestBuildIndex_Lookup(t *testing.T) {
	s := &structure.Structure{
		Helices: []structure.Helix{
			{ChainName: "A", StartSeq: 5, EndSeq: 12, Class: 1},
			{ChainName: "A", StartSeq: 20, EndSeq: 24, Class: 5},
			{ChainName: "B", StartSeq: 3, EndSeq: 8, Class: 3},
		},
		Strands: []structure.Strand{
			{ChainName: "A", StartSeq: 30, EndSeq: 35},
			{ChainName: "B", StartSeq: 15, EndSeq: 18},
		},
	}
	ix := BuildIndex(s)

	tests := []struct {
		name   string
		chain  string
		seq    int
		ssType string
		id     int
	}{
		{"alpha helix interior", "A", 8, TypeAlpha, 1},
		{"alpha helix start boundary", "A", 5, TypeAlpha, 1},
		{"alpha helix end boundary", "A", 12, TypeAlpha, 1},
		{"3/10 helix from class 5", "A", 22, Type310, 2},
		{"pi helix from class 3", "B", 4, TypePi, 3},
		{"strand ids continue after helices", "A", 31, TypeStrand, 4},
		{"strand on second chain", "B", 16, TypeStrand, 5},
		{"gap between regions is coil", "A", 15, TypeCoil, NoRegion},
		{"unknown chain is coil", "C", 8, TypeCoil, NoRegion},
		{"before first region is coil", "A", 1, TypeCoil, NoRegion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ssType, id := ix.Lookup(tt.chain, tt.seq)
			assert.Equal(t, tt.ssType, ssType)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestBuildIndex_OverlapFirstMatchWins(t *testing.T) {
	s := &structure.Structure{
		Helices: []structure.Helix{
			{ChainName: "A", StartSeq: 10, EndSeq: 20, Class: 1},
		},
		Strands: []structure.Strand{
			// Overlaps the helix; the helix was indexed first and wins.
			{ChainName: "A", StartSeq: 18, EndSeq: 25},
		},
	}
	ix := BuildIndex(s)

	ssType, id := ix.Lookup("A", 19)
	assert.Equal(t, TypeAlpha, ssType)
	assert.Equal(t, 1, id)

	ssType, id = ix.Lookup("A", 23)
	assert.Equal(t, TypeStrand, ssType)
	assert.Equal(t, 2, id)
}

func TestBuildIndex_Empty(t *testing.T) {
	ix := BuildIndex(&structure.Structure{})
	ssType, id := ix.Lookup("A", 1)
	assert.Equal(t, TypeCoil, ssType)
	assert.Equal(t, NoRegion, id)

	ix = BuildIndex(nil)
	ssType, id = ix.Lookup("A", 1)
	assert.Equal(t, TypeCoil, ssType)
	assert.Equal(t, NoRegion, id)
}
