package viz

import (
	"context"
	"image/gif"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/logging"
	"github.com/san-kum/gridsearch/internal/playback"
	"github.com/san-kum/gridsearch/internal/session"
)

func smallGraph(w, h int) config.GraphConfig {
	return config.GraphConfig{
		TileSize:       config.Size{X: 2, Y: 3},
		GridSize:       config.Size{X: w, Y: h},
		StepsPerSecond: 60,
	}
}

func TestCanvas_SetAndClear(t *testing.T) {
	c := NewCanvas(smallGraph(3, 2))
	c.SetCellColour(grid.Coordinate{X: 0, Y: 0}, playback.Explored)
	c.SetCellColour(grid.Coordinate{X: 1, Y: 0}, playback.Frontier)
	c.SetCellColour(grid.Coordinate{X: 1, Y: 0}, playback.Frontier)
	c.SetCellColour(grid.Coordinate{X: 9, Y: 9}, playback.Explored)

	if got, want := c.String(), "#@.\n...\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if counts := c.Counts(); counts[playback.Unvisited] != 4 || counts[playback.Frontier] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}

	c.ClearAll()
	if got := c.String(); strings.ContainsAny(got, "#@") {
		t.Errorf("expected cleared canvas, got %q", got)
	}
}

func TestCanvas_ApplyConfigResizes(t *testing.T) {
	c := NewCanvas(smallGraph(2, 2))
	c.SetCellColour(grid.Coordinate{X: 1, Y: 1}, playback.Explored)
	c.ApplyConfig(smallGraph(4, 1))
	if c.Width != 4 || c.Height != 1 {
		t.Fatalf("expected 4x1, got %dx%d", c.Width, c.Height)
	}
	if got := c.String(); got != "....\n" {
		t.Errorf("expected blank canvas, got %q", got)
	}
}

func TestCanvas_RenderPacksTwoRowsPerLine(t *testing.T) {
	c := NewCanvas(smallGraph(4, 5))
	lines := strings.Split(strings.TrimSuffix(c.Render(ThemeClassic), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 lines for 5 rows, got %d", len(lines))
	}
}

func TestNextRate(t *testing.T) {
	tests := []struct {
		rate, dir, want int
	}{
		{60, 1, 70},
		{60, -1, 50},
		{10, 1, 20},
		{10, -1, 9},
		{100, 1, 200},
		{100, -1, 90},
		{1, -1, 1},
		{1000, 1, 1000},
		{5, 1, 6},
	}
	for _, tt := range tests {
		if got := nextRate(tt.rate, tt.dir); got != tt.want {
			t.Errorf("nextRate(%d, %d) = %d, want %d", tt.rate, tt.dir, got, tt.want)
		}
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "classic" {
		t.Error("unknown theme should fall back to classic")
	}
	seen := map[string]bool{}
	th := ThemeClassic
	for range Themes {
		seen[th.Name] = true
		th = NextTheme(th)
	}
	if len(seen) != len(Themes) || th.Name != ThemeClassic.Name {
		t.Errorf("cycling should visit every theme once, saw %v", seen)
	}
}

func TestRecorder_SavesGIF(t *testing.T) {
	c := NewCanvas(smallGraph(3, 3))
	rec := NewRecorder(ThemeClassic)
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := rec.Save(path); err == nil {
		t.Error("expected error for empty recording")
	}

	rec.Capture(c)
	c.SetCellColour(grid.Coordinate{X: 1, Y: 1}, playback.Frontier)
	rec.Capture(c)
	if rec.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", rec.Frames())
	}
	if rec.frames[1].ColorIndexAt(2, 3) != uint8(playback.Frontier) {
		t.Error("tile for (1,1) should start at pixel (2,3)")
	}
	if b := rec.frames[1].Bounds(); b.Dx() != 6 || b.Dy() != 9 {
		t.Errorf("expected 6x9 frame, got %v", b)
	}

	if err := rec.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected gif on disk: %v", err)
	}
}

func TestRecorder_FramesAcrossResize(t *testing.T) {
	c := NewCanvas(smallGraph(4, 4))
	rec := NewRecorder(ThemeClassic)

	c.SetCellColour(grid.Coordinate{X: 3, Y: 3}, playback.Explored)
	rec.Capture(c)
	c.ApplyConfig(smallGraph(8, 8))
	c.SetCellColour(grid.Coordinate{X: 7, Y: 7}, playback.Frontier)
	rec.Capture(c)
	c.ApplyConfig(smallGraph(2, 2))
	rec.Capture(c)

	path := filepath.Join(t.TempDir(), "resize.gif")
	if err := rec.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(anim.Image))
	}
	if anim.Config.Width != 16 || anim.Config.Height != 24 {
		t.Errorf("expected 16x24 canvas, got %dx%d", anim.Config.Width, anim.Config.Height)
	}
	if got := anim.Image[1].ColorIndexAt(14, 21); got != uint8(playback.Frontier) {
		t.Errorf("expected frontier at the far tile of the 8x8 frame, got index %d", got)
	}
	for i, d := range anim.Disposal {
		if d != gif.DisposalBackground {
			t.Errorf("frame %d: disposal %d", i, d)
		}
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Graph = smallGraph(4, 4)
	canvas := NewCanvas(cfg.Graph)
	sess, err := session.New(context.Background(), cfg, canvas, session.Options{
		Rand:   rand.New(rand.NewSource(1)),
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sess.Controller().WaitTrace(ctx); err != nil {
		t.Fatal(err)
	}
	return NewModel(sess, canvas, ThemeClassic, logging.Discard())
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_KeysDrivePlayback(t *testing.T) {
	m := newTestModel(t)

	m = update(m, key("]"))
	m = update(m, TickMsg(time.Now()))
	m = update(m, key("]"))
	m = update(m, TickMsg(time.Now()))
	if got := m.sess.Status().Cursor; got != 2 {
		t.Fatalf("expected cursor 2, got %d", got)
	}
	if counts := m.canvas.Counts(); counts[playback.Frontier] != 1 || counts[playback.Explored] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}

	m = update(m, key(" "))
	m = update(m, TickMsg(time.Now()))
	if st := m.sess.Status(); st.State != playback.PlayingForward || st.Cursor != 3 {
		t.Errorf("expected forward play at 3, got %s at %d", st.State, st.Cursor)
	}

	m = update(m, key("r"))
	m = update(m, TickMsg(time.Now()))
	if st := m.sess.Status(); st.State != playback.Paused || st.Cursor != 0 {
		t.Errorf("expected restart to pause at 0, got %s at %d", st.State, st.Cursor)
	}
	if len(m.progress) != 4 {
		t.Errorf("expected one progress sample per tick, got %d", len(m.progress))
	}
	if !strings.Contains(m.View(), "Cursor") {
		t.Error("view should include the status panel")
	}
}

func TestModel_HeldKeyBetweenTicks(t *testing.T) {
	m := newTestModel(t)

	done := make(chan Model, 1)
	go func() {
		mm := m
		for i := 0; i < 200; i++ {
			mm = update(mm, key("]"))
		}
		done <- mm
	}()
	select {
	case m = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("key handling stalled while no tick ran")
	}
	if !strings.Contains(m.notice, "queue full") {
		t.Errorf("expected a queue-full notice, got %q", m.notice)
	}

	m = update(m, TickMsg(time.Now()))
	if got := m.sess.Status().Cursor; got != 1 {
		t.Errorf("queued steps collapse to one per tick, got cursor %d", got)
	}
	m = update(m, key("]"))
	if m.notice != "" {
		t.Errorf("notice should clear once the queue drains, got %q", m.notice)
	}
}

func TestModel_RateKeys(t *testing.T) {
	m := newTestModel(t)
	m = update(m, key("+"))
	m = update(m, TickMsg(time.Now()))
	if got := m.sess.Status().Config.StepsPerSecond; got != 70 {
		t.Errorf("expected 70/s, got %d", got)
	}
}

func TestModel_OptionsForm(t *testing.T) {
	m := newTestModel(t)
	m = update(m, key("o"))
	if m.options == nil {
		t.Fatal("expected options form")
	}

	// grid_x: select, type a new value, apply
	m = update(m, key("j"))
	m = update(m, key("j"))
	m = update(m, key("enter"))
	m.options.editBuf = ""
	m = update(m, key("7"))
	m = update(m, key("enter"))
	m = update(m, key("s"))
	if m.options != nil {
		t.Fatalf("form should close on apply, err %v", m.options.err)
	}
	m = update(m, TickMsg(time.Now()))
	if m.canvas.Width != 7 || m.sess.Status().Config.GridSize.X != 7 {
		t.Errorf("expected a 7 wide grid, got canvas %d", m.canvas.Width)
	}

	m = update(m, key("o"))
	m.options.values["steps_per_second"] = 0
	m = update(m, key("s"))
	if m.options == nil || m.options.err == nil {
		t.Error("invalid options should keep the form open with an error")
	}
	m = update(m, key("esc"))
	if m.options != nil {
		t.Error("esc should close the form")
	}
}

func TestProgressBar_Fill(t *testing.T) {
	tests := []struct {
		pct          float64
		filled, rest int
	}{
		{0, 0, 10},
		{0.5, 5, 5},
		{1, 10, 0},
		{1.7, 10, 0},
		{-1, 0, 10},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.pct, 10, ThemeClassic)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("pct %.1f: filled %d, want %d", tt.pct, got, tt.filled)
		}
		if got := strings.Count(bar, "░"); got != tt.rest {
			t.Errorf("pct %.1f: rest %d, want %d", tt.pct, got, tt.rest)
		}
	}
}

func TestGradientText_KeepsRunes(t *testing.T) {
	if GradientText("", ThemeClassic.Primary, ThemeClassic.Accent) != "" {
		t.Error("empty text should render empty")
	}
	out := GradientText("GRID▸", ThemeClassic.Primary, "not-a-colour")
	for _, r := range "GRID▸" {
		if !strings.ContainsRune(out, r) {
			t.Errorf("rune %q missing from %q", r, out)
		}
	}
}
