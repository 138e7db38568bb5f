package scripts

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"ropebot/internal/config"
	"ropebot/internal/input"
	"ropebot/internal/logger"
)

type recordingBackend struct {
	name   string
	events []string
}

func (b *recordingBackend) Name() string { return b.name }

func (b *recordingBackend) KeyDown(key string) error {
	b.events = append(b.events, "down:"+key)
	return nil
}

func (b *recordingBackend) KeyUp(key string) error {
	b.events = append(b.events, "up:"+key)
	return nil
}

func newTestEnv(t *testing.T, in string) (*Env, *bytes.Buffer, *recordingBackend) {
	t.Helper()
	var out bytes.Buffer
	log := logger.Discard()
	backend := &recordingBackend{name: "recording"}

	kb := input.NewKeyboard(backend, log)
	kb.SetSleep(func(time.Duration) {})

	cfg := config.Default()
	cfg.Agent.Countdown = 2
	return &Env{
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Logger:     log,
		In:         bufio.NewReader(strings.NewReader(in)),
		Out:        &out,
		Sleep:      func(time.Duration) {},
		Keyboard:   kb,
		Backends:   []input.Backend{backend},
	}, &out, backend
}

func TestModesMenuOrder(t *testing.T) {
	modes := Modes()
	if len(modes) != 11 {
		t.Fatalf("modes = %d, want 11", len(modes))
	}
	for i, m := range modes {
		if m.Key != strconv.Itoa(i+1) {
			t.Errorf("mode %d key = %q", i, m.Key)
		}
		if m.Run == nil {
			t.Errorf("mode %s has no handler", m.Command)
		}
	}
	if modes[10].Command != "run" {
		t.Errorf("last mode = %q, want run", modes[10].Command)
	}
}

func TestParseChoice(t *testing.T) {
	cases := []struct {
		in      string
		command string
	}{
		{"1", "keytest"},
		{" 11 \n", "run"},
		{"descent-debug", "descent-debug"},
		{"DETECT", "detect"},
	}
	for _, tc := range cases {
		m, err := ParseChoice(tc.in)
		if err != nil {
			t.Errorf("ParseChoice(%q): %v", tc.in, err)
			continue
		}
		if m.Command != tc.command {
			t.Errorf("ParseChoice(%q) = %s, want %s", tc.in, m.Command, tc.command)
		}
	}

	for _, bad := range []string{"", "0", "12", "fly"} {
		if _, err := ParseChoice(bad); !errors.Is(err, ErrUnknownMode) {
			t.Errorf("ParseChoice(%q) err = %v, want ErrUnknownMode", bad, err)
		}
	}
}

func TestParseThreshold(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"0.55", 0.55, true},
		{"0,65", 0.65, true},
		{" 0.8\n", 0.8, true},
		{"5", 1.0, true},
		{"0.01", 0.1, true},
		{"abc", 0.7, false},
		{"NaN", 0.7, false},
		{"-inf", 0.1, true},
		{"", 0.7, false},
	}
	for _, tc := range cases {
		got, valid := ParseThreshold(tc.in)
		if got != tc.want || valid != tc.valid {
			t.Errorf("ParseThreshold(%q) = %v, %v; want %v, %v", tc.in, got, valid, tc.want, tc.valid)
		}
	}
}

func TestPrompt(t *testing.T) {
	env, out, _ := newTestEnv(t, "  2 \nlast")

	if got := env.Prompt("? "); got != "2" {
		t.Errorf("first = %q", got)
	}
	if got := env.Prompt("? "); got != "last" {
		t.Errorf("without newline = %q", got)
	}
	if got := env.Prompt("? "); got != "" {
		t.Errorf("after EOF = %q", got)
	}
	if strings.Count(out.String(), "? ") != 3 {
		t.Errorf("prompts = %q", out.String())
	}
}

func TestCountdown(t *testing.T) {
	env, out, _ := newTestEnv(t, "")
	var slept []time.Duration
	env.Sleep = func(d time.Duration) { slept = append(slept, d) }

	if err := env.Countdown(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if len(slept) != 3 {
		t.Errorf("slept = %v", slept)
	}
	if !strings.Contains(out.String(), "  1...") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCountdownCancelled(t *testing.T) {
	env, _, _ := newTestEnv(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	env.Sleep = func(time.Duration) {
		calls++
		cancel()
	}

	if err := env.Countdown(ctx, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("sleeps = %d, want 1", calls)
	}
}

func TestKeyTestSequence(t *testing.T) {
	env, _, backend := newTestEnv(t, "")

	if err := KeyTest(context.Background(), env); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"down:x", "up:x",
		"down:left", "up:left",
		"down:right", "up:right",
		"down:up", "up:up",
		"down:down", "up:down",
		"down:space", "up:space",
	}
	if !reflect.DeepEqual(backend.events, want) {
		t.Errorf("events = %v\nwant %v", backend.events, want)
	}
}

func TestKeyCompareReportsEachBackend(t *testing.T) {
	env, out, primary := newTestEnv(t, "")
	second := &recordingBackend{name: "second"}
	env.Backends = append(env.Backends, second)

	if err := KeyCompare(context.Background(), env); err != nil {
		t.Fatal(err)
	}
	if len(primary.events) != 8 || len(second.events) != 8 {
		t.Errorf("events: primary %v, second %v", primary.events, second.events)
	}
	if !strings.Contains(out.String(), "✅ second") {
		t.Errorf("output = %q", out.String())
	}
}

func TestConfigureStrategyPersists(t *testing.T) {
	env, _, _ := newTestEnv(t, "2\n")

	if err := ConfigureStrategy(context.Background(), env); err != nil {
		t.Fatal(err)
	}
	if env.Config.Agent.Strategy != config.StrategySmart {
		t.Errorf("strategy = %q", env.Config.Agent.Strategy)
	}

	saved, err := config.InitConfig(env.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Agent.Strategy != config.StrategySmart {
		t.Errorf("saved strategy = %q", saved.Agent.Strategy)
	}
}

func TestConfigureStrategyInvalidChoiceKeepsFile(t *testing.T) {
	env, out, _ := newTestEnv(t, "7\n")

	if err := ConfigureStrategy(context.Background(), env); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(env.ConfigPath); !os.IsNotExist(err) {
		t.Errorf("config file must not be written, stat err = %v", err)
	}
	if env.Config.Agent.Strategy != config.StrategySimple {
		t.Errorf("strategy = %q", env.Config.Agent.Strategy)
	}
	if !strings.Contains(out.String(), "остается simple") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRecommendStrategy(t *testing.T) {
	cases := []struct {
		effective []string
		want      string
	}{
		{nil, config.StrategySimple},
		{[]string{"down"}, config.StrategySimple},
		{[]string{"down", "left_jump"}, config.StrategySimple},
		{[]string{"left_jump", "right_jump"}, config.StrategySmart},
		{[]string{"right_jump"}, config.StrategySimple},
	}
	for _, tc := range cases {
		if got := RecommendStrategy(tc.effective); got != tc.want {
			t.Errorf("RecommendStrategy(%v) = %s, want %s", tc.effective, got, tc.want)
		}
	}
}

func TestMenuUnknownChoice(t *testing.T) {
	env, out, _ := newTestEnv(t, "42\n")

	if err := Menu(context.Background(), env); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(out.String(), "11. Автоматическая охота (run)") {
		t.Errorf("menu not printed: %q", out.String())
	}
}
