package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUnitNumber(t *testing.T) {
	tests := []struct {
		path string
		want *int
	}{
		{"OS/UNIT 3/scheduling.pdf", intPtr(3)},
		{"OS/unit2/scheduling.pdf", intPtr(2)},
		{"DSA/sorting unit4.pdf", intPtr(4)},
		{"CN/M2_transport layer.pptx", intPtr(2)},
		{"CN/lectures/m5 routing.pdf", intPtr(5)},
		{"JAVA/Chap-5_threads.pdf", intPtr(5)},
		{"JAVA/chap7.pdf", intPtr(7)},
		{"DBMS/Chap-1_intro.pdf", intPtr(1)},
		{"MAD/android basics.pdf", nil},
		{"WT/intro.pdf", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractUnitNumber(tt.path))
		})
	}
}

func TestExtractUnitNumberPrefersUnitFolder(t *testing.T) {
	assert.Equal(t, intPtr(1), ExtractUnitNumber("CN/UNIT 1/M3 Chap-4.pdf"))
}

func TestGenerateTitle(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"_$Chap-1_Introduction_to_networks.pdf", "Introduction To Networks"},
		{"Unit 2 - process management.pptx", "Process Management"},
		{"unit3-memory.pdf", "Memory"},
		{"M3 Deadlocks.pdf", "Deadlocks"},
		{"OS notes (1).pdf", "OS Notes"},
		{"data--link__layer.docx", "Data Link Layer"},
		{"___.pdf", "___"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateTitle(tt.name))
		})
	}
}

func TestIsNoteFile(t *testing.T) {
	assert.True(t, IsNoteFile("a.PDF"))
	assert.True(t, IsNoteFile("deck.pptx"))
	assert.True(t, IsNoteFile("old.doc"))
	assert.False(t, IsNoteFile("cover.png"))
	assert.False(t, IsNoteFile("README"))
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "Course material", Description(nil))
	assert.Equal(t, "Unit 4 material", Description(intPtr(4)))
}

func intPtr(n int) *int { return &n }
