package out_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	scoreout "keyloop/internal/modules/score/adapter/out"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

const ticksPerQuarter = 960

func writeSMF(t *testing.T, tracks ...smf.Track) []byte {
	t.Helper()
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	for _, tr := range tracks {
		if err := file.Add(tr); err != nil {
			t.Fatalf("add track: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		t.Fatalf("write smf: %v", err)
	}
	return buf.Bytes()
}

func conductor(bpm float64, num, denom uint8) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(bpm))
	tr.Add(0, smf.MetaMeter(num, denom))
	tr.Close(0)
	return tr
}

func melody(name string, key uint8, count int) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	for i := 0; i < count; i++ {
		tr.Add(0, midi.NoteOn(0, key, 100))
		tr.Add(ticksPerQuarter, midi.NoteOff(0, key))
	}
	tr.Close(0)
	return tr
}

func TestDecodeReadsTempoMeterAndNotes(t *testing.T) {
	t.Parallel()
	data := writeSMF(t, conductor(90, 3, 4), melody("Left", 48, 3), melody("Right", 72, 4))

	song, err := scoreout.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if math.Abs(song.TempoBPM-90) > 0.01 {
		t.Fatalf("expected tempo 90, got %v", song.TempoBPM)
	}
	if song.BeatsPerMeasure != 3 || song.BeatType != 4 {
		t.Fatalf("expected 3/4, got %d/%d", song.BeatsPerMeasure, song.BeatType)
	}
	if len(song.Tracks) != 3 {
		t.Fatalf("tracks must stay positional, got %d", len(song.Tracks))
	}
	if len(song.Tracks[0].Notes) != 0 || len(song.Tracks[1].Notes) != 3 || len(song.Tracks[2].Notes) != 4 {
		t.Fatalf("unexpected note counts %d/%d/%d", len(song.Tracks[0].Notes), len(song.Tracks[1].Notes), len(song.Tracks[2].Notes))
	}
	first := song.Tracks[1].Notes[0]
	if first.PitchName != "C3" || first.MIDI != 48 || first.TrackIndex != 1 {
		t.Fatalf("unexpected first note %+v", first)
	}
	beat := 60.0 / 90
	if math.Abs(first.Duration-beat) > 1e-3 {
		t.Fatalf("expected duration %v, got %v", beat, first.Duration)
	}
	second := song.Tracks[1].Notes[1]
	if math.Abs(second.StartTime-beat) > 1e-3 {
		t.Fatalf("expected second note at %v, got %v", beat, second.StartTime)
	}
	if math.Abs(first.Velocity-100.0/127) > 1e-9 {
		t.Fatalf("velocity must be normalised, got %v", first.Velocity)
	}
	if math.Abs(song.Duration-4*beat) > 1e-3 {
		t.Fatalf("duration is the latest note end, got %v", song.Duration)
	}
	info := song.TrackInfo()
	if len(info) != 2 || info[0].Name != "Left" || info[0].HandGuess != "left" || info[1].HandGuess != "right" {
		t.Fatalf("unexpected track info %+v", info)
	}
}

func TestDecodeDefaultsTempoAndMeter(t *testing.T) {
	t.Parallel()
	song, err := scoreout.Decode(writeSMF(t, melody("", 60, 2)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if song.Tempo() != 120 || song.Beats() != 4 {
		t.Fatalf("expected defaults 120 and 4, got %v and %d", song.Tempo(), song.Beats())
	}
	if song.TrackInfo()[0].Name != "Track 0" {
		t.Fatalf("expected fallback track name, got %q", song.TrackInfo()[0].Name)
	}
}

func TestDecodeWithoutNotesIsNoTracks(t *testing.T) {
	t.Parallel()
	_, err := scoreout.Decode(writeSMF(t, conductor(120, 4, 4)))
	if !errors.Is(err, apperrors.ErrNoTracks) {
		t.Fatalf("expected no tracks error, got %v", err)
	}
}

func TestDecodeGarbageIsParseError(t *testing.T) {
	t.Parallel()
	for _, data := range [][]byte{nil, []byte("definitely not midi"), []byte("MThd\x00\x00\x00\x06\x00")} {
		if _, err := scoreout.Decode(data); !errors.Is(err, apperrors.ErrParse) {
			t.Fatalf("expected parse error for %q, got %v", data, err)
		}
	}
}

func TestLoadFromDisk(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "song.mid")
	if err := os.WriteFile(path, writeSMF(t, melody("Piano", 64, 5)), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	source := scoreout.NewSMFNoteSource(logging.Nop())
	song, err := source.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if song.NoteCount() != 5 {
		t.Fatalf("expected 5 notes, got %d", song.NoteCount())
	}
	if _, err := source.Load(context.Background(), filepath.Join(t.TempDir(), "missing.mid")); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
