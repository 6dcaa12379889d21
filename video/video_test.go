package video

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/TwoX-In/GenAI-Hackathon/config"
	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testSession(t *testing.T) *db.Session {
	remote := storage.NewDiskStorage(&storage.Bucket{
		Name:        "state",
		StorageType: storage.StorageTypeFile,
		Path:        t.TempDir(),
		LocalDir:    t.TempDir(),
	})
	store := db.NewStore(remote, "app.db", db.PublishSnapshot, nil)
	t.Cleanup(func() { _ = store.Close() })
	return store.NewSession()
}

// fakeSynth fails for every voice not in good and records the attempts
type fakeSynth struct {
	mu       sync.Mutex
	good     map[string]bool
	attempts []string
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string, voice config.Voice) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, voice.Name)
	if !f.good[voice.Name] {
		return nil, errors.New("quota exceeded")
	}
	return []byte("audio-from-" + voice.Name), nil
}

// fakeTools stands in for ffmpeg and exiftool: ffmpeg writes its last argument,
// exiftool answers from durations by file name
type fakeTools struct {
	durations map[string]string
	failOn    string // ffmpeg fails when this argument is present
	calls     [][]string
}

func (f *fakeTools) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	file := args[len(args)-1]
	if name == "exiftool" {
		for suffix, d := range f.durations {
			if strings.HasSuffix(file, suffix) {
				return []byte(d + "\n"), nil
			}
		}
		return []byte("-\n"), nil
	}
	for _, a := range args {
		if a == f.failOn {
			return nil, errors.New("encoder crashed")
		}
	}
	return nil, os.WriteFile(file, []byte("encoded:"+file[strings.LastIndex(file, "/")+1:]), 0600)
}

func (f *fakeTools) ffmpegCall(flag string) []string {
	for _, c := range f.calls {
		if c[0] != "ffmpeg" {
			continue
		}
		for _, a := range c {
			if a == flag {
				return c
			}
		}
	}
	return nil
}

func voices(names ...string) []config.Voice {
	result := make([]config.Voice, 0, len(names))
	for _, n := range names {
		result = append(result, config.Voice{Name: n, LanguageCode: "en-IN", SpeakingRate: 1})
	}
	return result
}

func newTestEngine(t *testing.T, synth Synthesizer, tools *fakeTools, names ...string) (*Engine, string) {
	tmp := t.TempDir()
	e := NewEngine(synth, voices(names...), nil, tmp)
	e.run = tools.run
	return e, tmp
}

func seed(t *testing.T, session *db.Session, uid uint32, video []byte, story string) {
	err := session.Write(context.Background(), func(tx *gorm.DB) error {
		if video != nil {
			if err := models.SetVideo(tx, uid, models.VideoRaw, video); err != nil {
				return err
			}
		}
		if story != "" {
			return models.SetStory(tx, uid, story)
		}
		return nil
	})
	require.NoError(t, err)
}

func editedVideo(t *testing.T, session *db.Session, uid uint32) []byte {
	var data []byte
	err := session.Read(context.Background(), func(tx *gorm.DB) (err error) {
		data, err = models.GetVideo(tx, uid, models.VideoEdited)
		return
	})
	require.NoError(t, err)
	return data
}

func assertEmptyDir(t *testing.T, dir string) {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPlanAlignment(t *testing.T) {
	tests := []struct {
		name  string
		video float64
		audio float64
		want  alignment
	}{
		{"narration longer", 10, 15, alignment{Loops: 2, Duration: 15}},
		{"exact multiple", 5, 15, alignment{Loops: 3, Duration: 15}},
		{"narration shorter", 20, 12.5, alignment{Loops: 1, Duration: 12.5}},
		{"same length", 8, 8, alignment{Loops: 1, Duration: 8}},
		{"barely longer", 10, 10.01, alignment{Loops: 2, Duration: 10.01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, planAlignment(tt.video, tt.audio))
		})
	}
}

func TestSynthesize_FallbackOrder(t *testing.T) {
	synth := &fakeSynth{good: map[string]bool{"C": true}}
	e, _ := newTestEngine(t, synth, &fakeTools{}, "A", "B", "C", "D")

	audio, err := e.synthesize(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-from-C"), audio)
	assert.Equal(t, []string{"A", "B", "C"}, synth.attempts)
}

func TestSynthesize_AllVoicesFail(t *testing.T) {
	synth := &fakeSynth{}
	e, _ := newTestEngine(t, synth, &fakeTools{}, "A", "B")

	_, err := e.synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoVoice)
	assert.Equal(t, []string{"A", "B"}, synth.attempts)

	e.voices = nil
	_, err = e.synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoVoice)
}

func TestAttach_LoopsAndTrimsToNarration(t *testing.T) {
	session := testSession(t)
	seed(t, session, 1, []byte("raw video"), "A lamp glows.")
	tools := &fakeTools{durations: map[string]string{"silent.mp4": "10.0", "narration.mp3": "15.0"}}
	e, tmp := newTestEngine(t, &fakeSynth{good: map[string]bool{"B": true}}, tools, "A", "B")

	outcome, err := e.Attach(context.Background(), session, 1)
	require.NoError(t, err)
	assert.Equal(t, Attached, outcome)

	align := tools.ffmpegCall("-stream_loop")
	require.NotNil(t, align)
	assert.Contains(t, strings.Join(align, " "), "-stream_loop 1 -i")
	assert.Contains(t, strings.Join(align, " "), "-t 15.000")

	mux := tools.ffmpegCall("1:a:0")
	require.NotNil(t, mux)
	assert.Contains(t, strings.Join(mux, " "), "-t 15.000")

	assert.Equal(t, []byte("encoded:output.mp4"), editedVideo(t, session, 1))
	assertEmptyDir(t, tmp)
}

func TestAttach_TrimOnly(t *testing.T) {
	session := testSession(t)
	seed(t, session, 2, []byte("raw video"), "Short story.")
	tools := &fakeTools{durations: map[string]string{"silent.mp4": "30", "narration.mp3": "12.25"}}
	e, _ := newTestEngine(t, &fakeSynth{good: map[string]bool{"A": true}}, tools, "A")

	outcome, err := e.Attach(context.Background(), session, 2)
	require.NoError(t, err)
	assert.Equal(t, Attached, outcome)
	assert.Contains(t, strings.Join(tools.ffmpegCall("-stream_loop"), " "), "-stream_loop 0 -i")
	assert.Contains(t, strings.Join(tools.ffmpegCall("-stream_loop"), " "), "-t 12.250")
}

func TestAttach_Skipped(t *testing.T) {
	tests := []struct {
		name  string
		video []byte
		story string
	}{
		{"no video", nil, "A story."},
		{"no story", []byte("raw"), ""},
		{"nothing", nil, ""},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := testSession(t)
			uid := uint32(10 + i)
			seed(t, session, uid, tt.video, tt.story)
			tools := &fakeTools{}
			e, tmp := newTestEngine(t, &fakeSynth{good: map[string]bool{"A": true}}, tools, "A")

			outcome, err := e.Attach(context.Background(), session, uid)
			require.NoError(t, err)
			assert.Equal(t, Skipped, outcome)
			assert.Empty(t, tools.calls)
			assertEmptyDir(t, tmp)
		})
	}
}

func TestAttach_FailuresCleanUpAndStoreNothing(t *testing.T) {
	tests := []struct {
		name  string
		tools *fakeTools
		synth *fakeSynth
	}{
		{
			name:  "encode error",
			tools: &fakeTools{durations: map[string]string{"silent.mp4": "10", "narration.mp3": "15"}, failOn: "libx264"},
			synth: &fakeSynth{good: map[string]bool{"A": true}},
		},
		{
			name:  "voices exhausted",
			tools: &fakeTools{durations: map[string]string{"silent.mp4": "10", "narration.mp3": "15"}},
			synth: &fakeSynth{},
		},
		{
			name:  "unknown duration",
			tools: &fakeTools{durations: map[string]string{"narration.mp3": "15"}},
			synth: &fakeSynth{good: map[string]bool{"A": true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := testSession(t)
			seed(t, session, 3, []byte("raw video"), "A story.")
			e, tmp := newTestEngine(t, tt.synth, tt.tools, "A")

			outcome, err := e.Attach(context.Background(), session, 3)
			assert.Error(t, err)
			assert.Equal(t, Failed, outcome)
			assert.Nil(t, editedVideo(t, session, 3))
			assertEmptyDir(t, tmp)
		})
	}
}

func TestNarrationText(t *testing.T) {
	text := NarrationText("  The weaver sat by the loom.  ")
	assert.True(t, strings.HasPrefix(text, "Namaste! Let me tell you about this beautiful artisan creation. The weaver sat by the loom. This masterpiece"))
	assert.True(t, strings.HasSuffix(text, "Experience the authentic beauty of Indian craftsmanship!"))
}

func TestEngine_MediaToolsWaitForPool(t *testing.T) {
	tools := &fakeTools{durations: map[string]string{"clip.mp4": "10.0"}}
	e, _ := newTestEngine(t, &fakeSynth{}, tools, "A")

	busy := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = e.pool.Do(context.Background(), func() error {
			close(busy)
			<-done
			return nil
		})
	}()
	<-busy

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := e.duration(ctx, "clip.mp4")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	err = e.ffmpeg(ctx, "-y", "-i", "clip.mp4", "out.mp4")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, tools.calls)

	close(done)
	d, err := e.duration(context.Background(), "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, 10.0, d)
}
