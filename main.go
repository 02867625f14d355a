package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/platter/internal/audio"
	"github.com/llehouerou/platter/internal/cache"
	"github.com/llehouerou/platter/internal/config"
	"github.com/llehouerou/platter/internal/errmsg"
	"github.com/llehouerou/platter/internal/httpapi"
	"github.com/llehouerou/platter/internal/library"
	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/mpris"
	"github.com/llehouerou/platter/internal/notify"
	"github.com/llehouerou/platter/internal/playback"
	"github.com/llehouerou/platter/internal/playqueue"
	"github.com/llehouerou/platter/internal/state"
	"github.com/llehouerou/platter/internal/stderr"
	"github.com/llehouerou/platter/internal/transcode"
	"github.com/llehouerou/platter/internal/ui/albumart"
	"github.com/llehouerou/platter/internal/ui/nowplaying"
)

type options struct {
	configPath string
	scan       bool
	shuffle    bool
	reset      bool
	paused     bool
	headless   bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("platter", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "extra config file, loaded last")
	fs.BoolVarP(&opts.scan, "scan", "s", false, "scan library_sources before playing")
	fs.BoolVar(&opts.shuffle, "shuffle", false, "rebuild the play queue as a new shuffle")
	fs.BoolVar(&opts.reset, "reset", false, "drop and recreate the database")
	fs.BoolVar(&opts.paused, "paused", false, "start paused")
	fs.BoolVar(&opts.headless, "headless", false, "no terminal UI; log to stderr")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	log, closeLog, err := openLogger(cfg, opts.headless)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer closeLog.Close()

	// C audio libraries write to fd 2; keep that off the TUI.
	var capture *stderr.Capture
	if !opts.headless {
		if capture, err = stderr.Start(log); err != nil {
			log.Warn("stderr capture unavailable", "error", err)
		}
		defer capture.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStoreOpen, err))
	}
	st, err := state.Open(dbPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStoreOpen, err))
	}
	defer st.Close()

	if opts.reset {
		if err := st.Reset(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpStoreReset, err))
		}
		log.Info("database reset", "path", st.Path())
	}

	if opts.scan {
		if err := scanSources(ctx, library.New(st.DB(), log, nil), cfg.LibrarySources); err != nil {
			return err
		}
	}

	queue := playqueue.New(st.DB())
	name := cfg.QueueName()
	if err := ensureQueue(queue, name, opts.shuffle, log); err != nil {
		return errors.New(errmsg.Format(errmsg.OpQueueShuffle, err))
	}

	cacheCfg := cfg.GetCacheConfig()
	c, err := cache.New(newTranscoder(cfg.GetTranscoderConfig(), cacheCfg, log), cache.Options{
		Depth:      cacheCfg.Depth,
		ScratchDir: cacheCfg.ScratchDir,
	}, log)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpCacheCreate, err))
	}
	defer c.Close()

	engineCfg := cfg.GetEngineConfig()
	sink, err := audio.OpenSpeaker(engineCfg.FrameSize, audio.DefaultQueuedBlocks)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpAudioOpen, err))
	}
	defer sink.Close()

	engine := playback.New(queue, c, sink, playback.Options{
		Queue:       name,
		FrameSize:   engineCfg.FrameSize,
		StartPaused: opts.paused,
	}, log)
	defer engine.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.HasHTTPConfig() {
		h := httpapi.NewHandler(engine, queue, name, log).Routes()
		g.Go(func() error {
			if err := httpapi.Serve(gctx, cfg.HTTP.Addr, h, log); err != nil {
				return errors.New(errmsg.Format(errmsg.OpHTTPServe, err))
			}
			return nil
		})
	}

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(engine, cfg.CoverDir(), log)
		if err != nil {
			log.Warn(errmsg.Format(errmsg.OpMPRISStart, err))
		} else {
			defer adapter.Close()
		}
	}

	if cfg.Notifications {
		n := notify.New(notify.DefaultTimeout)
		sub := engine.Subscribe()
		thumbs := notify.NewThumbnailer(filepath.Join(cfg.CoverDir(), "thumbs"), notify.DefaultThumbnailSize)
		g.Go(func() error {
			notify.Watch(gctx, sub, n, thumbs, log)
			return nil
		})
	}

	var program *tea.Program
	if !opts.headless {
		var art *albumart.Renderer
		if albumart.Supported() {
			art = albumart.New(10, 5)
		}
		program = tea.NewProgram(nowplaying.New(engine, art), tea.WithAltScreen(), tea.WithContext(gctx))
	}

	// Every surface has subscribed; start producing events.
	g.Go(func() error {
		if err := engine.Run(gctx); err != nil {
			return errors.New(errmsg.Format(errmsg.OpPlaybackStart, err))
		}
		return nil
	})

	if program != nil {
		g.Go(func() error {
			defer cancel()
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// openLogger logs to a file while the TUI owns the terminal.
func openLogger(cfg *config.Config, headless bool) (*logger.Logger, io.Closer, error) {
	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if headless {
		return logger.New(logCfg, os.Stderr), io.NopCloser(nil), nil
	}
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	return logger.OpenFile(logCfg, path)
}

func scanSources(ctx context.Context, lib *library.Library, sources []string) error {
	if len(sources) == 0 {
		fmt.Println("no library_sources configured, nothing to scan")
		return nil
	}
	for _, src := range sources {
		report, err := lib.Scan(ctx, src)
		if err != nil {
			return errors.New(errmsg.FormatWith(errmsg.OpLibraryScan, src, err))
		}
		fmt.Printf("%s: %s files, %s added, %s already indexed, %d warnings\n",
			src,
			humanize.Comma(int64(report.Files)),
			humanize.Comma(int64(report.Added)),
			humanize.Comma(int64(report.Duplicates)),
			len(report.Warnings))
	}
	return nil
}

// ensureQueue shuffles when asked to or when the queue does not exist yet.
func ensureQueue(q *playqueue.Store, name string, reshuffle bool, log *logger.Logger) error {
	if !reshuffle {
		_, err := q.Position(name)
		if err == nil {
			return nil
		}
		if !errors.Is(err, playqueue.ErrQueryEmptyResult) {
			return err
		}
	}
	n, err := q.Shuffle(name)
	if err != nil {
		return err
	}
	log.Info("queue shuffled", "queue", name, "tracks", n)
	return nil
}

// newTranscoder falls back to the native decoders when ffmpeg is missing.
func newTranscoder(tc config.TranscoderConfig, cc config.CacheConfig, log *logger.Logger) transcode.Transcoder {
	if tc.Backend == config.BackendFFmpeg {
		ff := transcode.NewFFmpeg(tc.FFmpegPath, cc.DecodeTimeout)
		if err := ff.Available(); err == nil {
			return ff
		}
		log.Warn("ffmpeg not found, using native decoders", "path", tc.FFmpegPath)
	}
	return transcode.NewNative(cc.DecodeTimeout)
}
