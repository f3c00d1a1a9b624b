package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"tinymid/config"
	"tinymid/debug"
	"tinymid/inspect"
	"tinymid/midi"
	"tinymid/player"
	"tinymid/theme"
	"tinymid/tui"
)

func main() {
	debugFlag := flag.Bool("d", false, "show the full event dump (debug verbosity)")
	noColor := flag.Bool("no-color", false, "disable colored output")
	useTUI := flag.Bool("tui", false, "browse events interactively")
	play := flag.Bool("play", false, "play the file through a MIDI output port")
	port := flag.String("port", "", "output port for -play (substring match)")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad config: %v\n", err)
		os.Exit(1)
	}

	th := loadTheme(cfg)
	debug.EnableColor(cfg.UI.Color && !*noColor, th)
	debug.SetLevel(verbosity(cfg.UI.Verbosity))
	if *debugFlag {
		debug.SetLevel(debug.LevelDebug)
	}

	if flag.NArg() == 1 && flag.Arg(0) == "ports" {
		listPorts()
		return
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	f, err := midi.ReadFile(path)
	if err != nil {
		debug.Error("%v", err)
		os.Exit(1)
	}
	debug.Debug("%s file format", f.Format)
	if f.Division > 0 {
		debug.Debug("division given in ticks per beat")
	} else {
		debug.Debug("division given in SMPTE format")
	}
	if err := f.DecodeTracks(); err != nil {
		debug.Error("%v", err)
		os.Exit(1)
	}

	cfg.UI.LastFile = path
	if err := cfg.Save(); err != nil {
		debug.Warn("could not save config: %v", err)
	}

	switch {
	case *useTUI:
		runTUI(f, path, th)
	case *play:
		runPlayback(f, cfg, *port)
	default:
		dump(f)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "tinymid - a command line MIDI viewer")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  tinymid [flags] <file.mid>")
	fmt.Fprintln(os.Stderr, "  tinymid ports    - list MIDI output ports")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
}

func loadTheme(cfg *config.Config) *theme.Theme {
	palette := theme.Default()
	if cfg.UI.Palette != "" {
		p, err := theme.LoadGPL(cfg.UI.Palette)
		if err != nil {
			fmt.Fprintf(os.Stderr, "palette: %v\n", err)
		} else {
			palette = p
		}
	}
	return theme.New(palette)
}

func verbosity(s string) debug.Level {
	switch s {
	case "debug":
		return debug.LevelDebug
	case "warn":
		return debug.LevelWarn
	case "error":
		return debug.LevelError
	}
	return debug.LevelStatus
}

// dump prints every decoded event as a diagnostic row.
func dump(f *midi.File) {
	ins := inspect.New(inspect.DefaultColumns, func(line string) {
		debug.Debug("%s", line)
	})
	for i, track := range f.Tracks {
		label := fmt.Sprintf("track %d", i)
		if track.Name != "" {
			label += " " + track.Name
		}
		debug.Status("%s: %d events", label, len(track.Events))
		for _, ev := range track.Events {
			ins.Print(ev, f.Window(ev.Offset, ev.Length))
		}
	}
}

func runTUI(f *midi.File, path string, th *theme.Theme) {
	m := tui.NewModel(f, path, th)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPlayback(f *midi.File, cfg *config.Config, portFlag string) {
	name := portFlag
	if name == "" {
		name = cfg.Playback.PortName
	}
	p, err := player.New(name)
	if err != nil {
		debug.Error("%v", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := p.Play(ctx, f); err != nil && ctx.Err() == nil {
		debug.Error("%v", err)
		os.Exit(1)
	}
}

func listPorts() {
	ports, err := player.OutPorts()
	if err != nil {
		debug.Error("%v", err)
		os.Exit(1)
	}
	if len(ports) == 0 {
		debug.Status("no MIDI output ports")
		return
	}
	for i, name := range ports {
		debug.Status("%d: %s", i, name)
	}
}
