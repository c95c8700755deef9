package out_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	playbackout "keyloop/internal/modules/playback/adapter/out"
	"keyloop/internal/platform/logging"
)

func TestPluginSynthIntegrationPrintSynth(t *testing.T) {
	binPath := buildPrintSynth(t)
	outPath := filepath.Join(t.TempDir(), "triggers.txt")
	t.Setenv("KEYLOOP_PRINTSYNTH_OUT", outPath)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	synth, err := playbackout.NewPluginSynth(ctx, binPath, logging.Nop())
	if err != nil {
		t.Fatalf("start plugin synth: %v", err)
	}
	defer synth.Close()
	if synth.Name() != "printsynth" {
		t.Fatalf("unexpected plugin name %q", synth.Name())
	}

	synth.TriggerAttackRelease("C4", 0.5, 0, 0.8)
	synth.TriggerAttackRelease("G4", 0.25, 1, 1)
	synth.SetVolume(50)

	lines := waitForLines(t, outPath, 3)
	if lines[0] != "trigger C4 0.500 0.000 0.80" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "trigger G4 0.250 1.000 1.00" {
		t.Fatalf("unexpected second line %q", lines[1])
	}
	if lines[2] != "volume 50 -15.0dB" {
		t.Fatalf("unexpected volume line %q", lines[2])
	}
}

func waitForLines(t *testing.T, path string, want int) []string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(path)
		if err == nil {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) >= want && lines[0] != "" {
				return lines
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("plugin wrote %q, want %d lines", string(data), want)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func buildPrintSynth(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "printsynth")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/printsynth")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build printsynth plugin: %v\n%s", err, string(out))
	}
	return binPath
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
