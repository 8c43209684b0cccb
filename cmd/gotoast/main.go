package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ezchuang/gotoast/internal/backend/beeep"
	"github.com/ezchuang/gotoast/internal/backend/freedesktop"
	"github.com/ezchuang/gotoast/internal/backend/memory"
	"github.com/ezchuang/gotoast/internal/backend/powershell"
	"github.com/ezchuang/gotoast/internal/config"
	"github.com/ezchuang/gotoast/internal/core"
	"github.com/ezchuang/gotoast/internal/logging"
	"github.com/ezchuang/gotoast/internal/ui"
	"github.com/ezchuang/gotoast/platform"
	"github.com/ezchuang/gotoast/toast"
	"github.com/ezchuang/gotoast/toaster"
)

const usage = `usage: gotoast [flags] <command> [command flags]

commands:
  show             show a toast
  schedule         show a toast later
  unschedule       cancel a scheduled toast by tag
  progress         show a toast and step its progress bar
  remove           remove a shown toast by tag
  remove-group     remove every shown toast of a group
  clear            remove every shown toast
  clear-scheduled  cancel every scheduled toast
  demo             interactive progress toast

flags:
`

type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	toaster toaster.Toaster
	dryRun  bool
	close   func()
}

func main() {
	backend := flag.String("backend", "", "backend: auto, powershell, dbus, beeep or memory")
	variant := flag.String("toaster", "", "toaster: basic or interactable")
	dryRun := flag.Bool("dry-run", false, "print the toast XML and use the in-memory backend")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *variant != "" {
		cfg.Toaster = *variant
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *dryRun {
		cfg.Backend = config.BackendMemory
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(cfg.Log)
	toast.SetLogger(logger.WithComponent("toast").Logger)

	a, err := newApp(cfg, logger, *dryRun)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("command failed", "command", flag.Arg(0), "error", err)
		a.close()
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logger *logging.Logger, dryRun bool) (*app, error) {
	p, closeFn, err := newPlatform(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []toaster.Option{
		toaster.WithPlatform(p),
		toaster.WithLogger(logger.WithComponent("toaster").Logger),
	}
	var tr toaster.Toaster
	if cfg.Toaster == config.ToasterBasic {
		tr, err = toaster.NewBasic(cfg.AppName, opts...)
	} else {
		if cfg.AUMID != "" {
			opts = append(opts, toaster.WithAUMID(cfg.AUMID))
		}
		tr, err = toaster.NewInteractable(cfg.AppName, opts...)
	}
	if err != nil {
		closeFn()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, toaster: tr, dryRun: dryRun, close: closeFn}, nil
}

func newPlatform(cfg *config.Config, logger *logging.Logger) (platform.Platform, func(), error) {
	l := logger.WithComponent("backend").Logger
	noop := func() {}
	switch cfg.Backend {
	case config.BackendPowerShell:
		return powershell.New(powershell.WithExecutable(cfg.PowerShellPath), powershell.WithLogger(l)), noop, nil
	case config.BackendDBus:
		p, err := freedesktop.New(freedesktop.WithLogger(l))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to notification server: %w", err)
		}
		return p, p.Close, nil
	case config.BackendBeeep:
		return beeep.New(beeep.WithLogger(l)), noop, nil
	case config.BackendMemory:
		return memory.New(), noop, nil
	default:
		p := toaster.DefaultPlatform(l)
		if c, ok := p.(interface{ Close() }); ok {
			return p, c.Close, nil
		}
		return p, noop, nil
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "show":
		return a.show(ctx, args)
	case "schedule":
		return a.schedule(ctx, args)
	case "unschedule":
		return a.unschedule(ctx, args)
	case "progress":
		return a.progress(ctx, args)
	case "remove":
		return a.remove(ctx, args)
	case "remove-group":
		return a.removeGroup(ctx, args)
	case "clear":
		return a.toaster.Clear(ctx)
	case "clear-scheduled":
		return a.toaster.ClearScheduled(ctx)
	case "demo":
		return a.demo(args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	c := bindContent(fs)
	wait := fs.Duration("wait", 0, "wait this long for the toast to be clicked or dismissed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := c.toast()
	if err != nil {
		return err
	}

	done := make(chan struct{}, 1)
	if *wait > 0 {
		t.OnActivated = func(ev toast.Activated) {
			fmt.Printf("activated: %q %v\n", ev.Arguments, ev.Inputs)
			done <- struct{}{}
		}
		t.OnDismissed = func(ev toast.Dismissed) {
			fmt.Printf("dismissed: %s\n", ev.Reason)
			done <- struct{}{}
		}
		t.OnFailed = func(ev toast.Failed) {
			fmt.Printf("failed: code %d\n", ev.ErrorCode)
			done <- struct{}{}
		}
	}

	if err := a.printXML(t, true); err != nil {
		return err
	}
	if err := a.toaster.Show(ctx, t); err != nil {
		return err
	}
	fmt.Println(t.Tag)

	if *wait > 0 {
		select {
		case <-done:
		case <-time.After(*wait):
			a.logger.Info("no response", "tag", t.Tag, "waited", *wait)
		case <-ctx.Done():
		}
	}
	return nil
}

func (a *app) schedule(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	c := bindContent(fs)
	in := fs.Duration("in", time.Minute, "delay before delivery")
	at := fs.String("at", "", "delivery time (RFC 3339), overrides -in")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := c.toast()
	if err != nil {
		return err
	}

	when := time.Now().Add(*in)
	if *at != "" {
		when, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
	}

	if err := a.printXML(t, false); err != nil {
		return err
	}
	if err := a.toaster.Schedule(ctx, t, when); err != nil {
		return err
	}
	fmt.Printf("%s scheduled %s\n", t.Tag, humanize.Time(when))
	return nil
}

func (a *app) unschedule(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("unschedule", flag.ContinueOnError)
	tag := fs.String("tag", "", "tag printed by schedule")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tag == "" {
		return errors.New("-tag is required")
	}
	t := toast.New()
	t.Tag = *tag
	return a.toaster.Unschedule(ctx, t)
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	tag := fs.String("tag", "", "tag printed by show")
	group := fs.String("group", "", "group the toast was shown in")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tag == "" {
		return errors.New("-tag is required")
	}
	t := toast.New(toast.WithGroup(*group))
	t.Tag = *tag
	return a.toaster.Remove(ctx, t)
}

func (a *app) removeGroup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove-group", flag.ContinueOnError)
	group := fs.String("group", "", "group to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *group == "" {
		return errors.New("-group is required")
	}
	return a.toaster.RemoveGroup(ctx, *group)
}

// progress shows a toast and pushes every engine step to it until done.
func (a *app) progress(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("progress", flag.ContinueOnError)
	c := bindContent(fs)
	steps := fs.Int("steps", 10, "number of steps")
	interval := fs.Duration("interval", time.Second, "time between steps")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := c.toast()
	if err != nil {
		return err
	}
	t.ProgressBar = &toast.ProgressBar{Status: "Starting", Progress: toast.Percent(0)}

	engine := core.New(core.Config{Steps: *steps, Interval: *interval})
	advances := make(chan core.State, 1)
	engine.SetOnAdvance(func(st core.State) {
		select {
		case advances <- st:
		default:
		}
	})

	if err := a.printXML(t, true); err != nil {
		return err
	}
	if err := a.toaster.Show(ctx, t); err != nil {
		return err
	}
	engine.Start()
	defer engine.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-advances:
			t.ProgressBar.Progress = toast.Percent(st.Fraction())
			t.ProgressBar.Status = fmt.Sprintf("Step %d of %d", st.Step, st.Steps)
			if st.Phase == core.PhaseDone {
				t.ProgressBar.Status = "Done"
			}
			ok, err := a.toaster.Update(ctx, t)
			if err != nil {
				return err
			}
			if !ok {
				a.logger.Info("toast is gone, stopping", "tag", t.Tag)
				return nil
			}
			if st.Phase == core.PhaseDone {
				return nil
			}
		}
	}
}

func (a *app) demo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	steps := fs.Int("steps", 20, "number of steps")
	interval := fs.Duration("interval", 2*time.Second, "time between steps")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t := toast.New(
		toast.WithText("gotoast demo", "Watch the progress bar move"),
		toast.WithActions(&toast.Button{Content: "Open", Arguments: "open"}),
	)
	m := ui.NewModel(core.New(core.Config{Steps: *steps, Interval: *interval}), a.toaster, t)
	return ui.Run(m)
}

func (a *app) printXML(t *toast.Toast, dynamic bool) error {
	if !a.dryRun {
		return nil
	}
	xml, err := a.toaster.BuildDocument(t, dynamic).XML()
	if err != nil {
		return err
	}
	fmt.Println(xml)
	return nil
}

// listFlag collects a repeated string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type contentFlags struct {
	texts       listFlag
	buttons     listFlag
	images      listFlag
	hero        *string
	logo        *string
	circle      *bool
	reply       *string
	audio       *string
	audioFile   *string
	loop        *bool
	silent      *bool
	scenario    *string
	duration    *string
	group       *string
	tag         *string
	attribution *string
	launch      *string
	expire      *time.Duration
	quiet       *bool
}

func bindContent(fs *flag.FlagSet) *contentFlags {
	c := &contentFlags{}
	fs.Var(&c.texts, "text", "text line, repeatable; the first is the title")
	fs.Var(&c.buttons, "button", "button as label or label=arguments, repeatable")
	fs.Var(&c.images, "image", "inline image path, repeatable")
	c.hero = fs.String("hero", "", "hero image path")
	c.logo = fs.String("logo", "", "app logo image path")
	c.circle = fs.Bool("circle", false, "crop the app logo to a circle")
	c.reply = fs.String("reply", "", "add a reply box with this placeholder")
	c.audio = fs.String("audio", "", "built-in sound, e.g. IM, Mail or Looping.Alarm")
	c.audioFile = fs.String("audio-file", "", "custom sound file")
	c.loop = fs.Bool("loop", false, "loop the sound")
	c.silent = fs.Bool("silent", false, "no sound")
	c.scenario = fs.String("scenario", "", "alarm, reminder, incomingCall or urgent")
	c.duration = fs.String("duration", "", "short or long")
	c.group = fs.String("group", "", "toast group")
	c.tag = fs.String("tag", "", "toast tag, generated when empty")
	c.attribution = fs.String("attribution", "", "attribution text")
	c.launch = fs.String("launch", "", "launch arguments or protocol URI")
	c.expire = fs.Duration("expire", 0, "remove from the action center after this long")
	c.quiet = fs.Bool("quiet", false, "only put the toast in the action center")
	return c
}

func (c *contentFlags) toast() (*toast.Toast, error) {
	texts := []string(c.texts)
	if len(texts) == 0 {
		texts = []string{"gotoast"}
	}
	t := toast.New(
		toast.WithText(texts...),
		toast.WithGroup(*c.group),
		toast.WithScenario(toast.Scenario(*c.scenario)),
		toast.WithDuration(toast.Duration(*c.duration)),
		toast.WithAttribution(*c.attribution),
		toast.WithSuppressPopup(*c.quiet),
	)
	if *c.tag != "" {
		t.Tag = *c.tag
	}
	if *c.launch != "" {
		t.SetLaunchAction(*c.launch)
	}
	if *c.expire > 0 {
		t.ExpirationTime = time.Now().Add(*c.expire)
	}

	for _, path := range c.images {
		if err := c.addImage(t, path, toast.PlacementInline); err != nil {
			return nil, err
		}
	}
	if *c.hero != "" {
		if err := c.addImage(t, *c.hero, toast.PlacementHero); err != nil {
			return nil, err
		}
	}
	if *c.logo != "" {
		if err := c.addImage(t, *c.logo, toast.PlacementAppLogo); err != nil {
			return nil, err
		}
	}

	switch {
	case *c.audioFile != "":
		t.Audio = toast.AudioFromFile(*c.audioFile)
	case *c.audio != "":
		t.Audio = toast.NewAudio(toast.AudioSource(*c.audio))
	case *c.silent || *c.loop:
		t.Audio = toast.NewAudio(toast.AudioDefault)
	}
	if t.Audio != nil {
		t.Audio.Looping = *c.loop
		t.Audio.Silent = *c.silent
	}

	var reply *toast.TextBox
	if *c.reply != "" {
		reply = &toast.TextBox{ID: "reply", Placeholder: *c.reply}
		t.AddInput(reply)
	}
	for _, b := range c.buttons {
		label, args, ok := strings.Cut(b, "=")
		if !ok {
			args = label
		}
		btn := &toast.Button{Content: label, Arguments: args}
		if reply != nil {
			btn.RelatedInput = reply
		}
		t.AddAction(btn)
	}
	return t, nil
}

func (c *contentFlags) addImage(t *toast.Toast, path string, placement toast.ImagePlacement) error {
	img, err := toast.DisplayImageFromPath(path, "", placement, placement == toast.PlacementAppLogo && *c.circle)
	if err != nil {
		return err
	}
	t.AddImage(img)
	return nil
}
