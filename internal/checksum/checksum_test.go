package checksum

import (
	"testing"

	"github.com/starford/orgblog/internal/models"
)

func sampleContent() []models.Block {
	return []models.Block{
		models.Paragraph("First paragraph."),
		models.Heading("Section", 2),
		{Kind: models.BlockFenced, Fence: models.FenceSource, Args: "go", Lines: []string{"fmt.Println(1)"}},
		{Kind: models.BlockImage, Image: &models.ImageLink{
			Filename:   "2024-01-01 cat.png",
			Attributes: map[string]string{"width": "300", "align": "left", "alt": "cat"},
		}},
	}
}

func TestSum(t *testing.T) {
	if got := Sum([]byte("")); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Sum(\"\") = %q", got)
	}
}

func TestEntry_Stable(t *testing.T) {
	first, err := Entry("Title", sampleContent())
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := Entry("Title", sampleContent())
		if err != nil {
			t.Fatalf("Entry: %v", err)
		}
		if again != first {
			t.Fatalf("checksum changed between identical inputs: %q vs %q", first, again)
		}
	}
}

func TestEntry_DetectsEdits(t *testing.T) {
	base, _ := Entry("Title", sampleContent())

	edited := sampleContent()
	edited[0].Text = "First paragraph!"
	if cs, _ := Entry("Title", edited); cs == base {
		t.Error("paragraph edit not detected")
	}

	if cs, _ := Entry("Other title", sampleContent()); cs == base {
		t.Error("title edit not detected")
	}

	reordered := sampleContent()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	if cs, _ := Entry("Title", reordered); cs == base {
		t.Error("block reordering not detected")
	}
}
