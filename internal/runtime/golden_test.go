package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// goldenTest runs a .java file and compares its output to a .expected file.
func goldenTest(t *testing.T, name string) {
	t.Helper()

	javaPath := filepath.Join("..", "..", "testdata", name+".java")
	expectedPath := filepath.Join("..", "..", "testdata", name+".expected")

	source, err := os.ReadFile(javaPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", javaPath, err)
	}

	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	got, err := runSource(string(source))
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}

	expectedStr := strings.TrimRight(string(expected), "\n")
	gotStr := strings.TrimRight(got, "\n")

	if gotStr != expectedStr {
		expectedLines := strings.Split(expectedStr, "\n")
		gotLines := strings.Split(gotStr, "\n")

		t.Errorf("output mismatch for %s", name)
		maxLines := len(expectedLines)
		if len(gotLines) > maxLines {
			maxLines = len(gotLines)
		}
		for i := 0; i < maxLines; i++ {
			exp, g := "<missing>", "<missing>"
			if i < len(expectedLines) {
				exp = expectedLines[i]
			}
			if i < len(gotLines) {
				g = gotLines[i]
			}
			prefix := "  "
			if exp != g {
				prefix = "! "
			}
			t.Logf("%sline %d: expected=%q got=%q", prefix, i+1, exp, g)
		}
	}
}

func TestGoldenInput(t *testing.T) {
	goldenTest(t, "Input")
}

func TestGoldenMain(t *testing.T) {
	goldenTest(t, "Main")
}

func TestGoldenFeatures(t *testing.T) {
	goldenTest(t, "Features")
}
