// ABOUTME: Main application orchestration
// ABOUTME: Wires provider, output device, player, voice commands, and live mode
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Stillwave-Audio/stillwave-go/internal/capture"
	"github.com/Stillwave-Audio/stillwave-go/internal/command"
	"github.com/Stillwave-Audio/stillwave-go/internal/config"
	"github.com/Stillwave-Audio/stillwave-go/internal/discovery"
	"github.com/Stillwave-Audio/stillwave-go/internal/live"
	"github.com/Stillwave-Audio/stillwave-go/internal/output"
	"github.com/Stillwave-Audio/stillwave-go/internal/player"
	"github.com/Stillwave-Audio/stillwave-go/internal/provider"
	"github.com/Stillwave-Audio/stillwave-go/internal/session"
	"github.com/Stillwave-Audio/stillwave-go/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// App coordinates one run of the client, in either player or live mode.
// The output device is exclusive: whichever mode runs holds it alone.
type App struct {
	cfg    config.Config
	svc    provider.Service
	device *output.Device

	tuiProg   *tea.Program
	transport *ui.Transport

	theme string
	voice string
}

// New wires the application from configuration.
func New(cfg config.Config) *App {
	var svc provider.Service
	if cfg.Provider.Mock {
		svc = provider.NewMock()
	} else {
		svc = provider.NewClient(cfg.Provider.BaseURL, cfg.APIKey(),
			provider.WithPolling(
				time.Duration(cfg.Provider.VideoPollSeconds)*time.Second,
				cfg.Provider.VideoPollMax))
	}

	return &App{
		cfg:    cfg,
		svc:    svc,
		device: output.NewDevice(cfg.Playback.SampleRate, cfg.Playback.Channels),
		theme:  cfg.Defaults.Theme,
		voice:  cfg.Defaults.Voice,
	}
}

// SetDefaults overrides the starting theme and voice.
func (a *App) SetDefaults(theme, voice string) {
	if theme != "" {
		a.theme = theme
	}
	if voice != "" {
		a.voice = voice
	}
}

// AttachTUI connects a running TUI program and its transport.
func (a *App) AttachTUI(prog *tea.Program, t *ui.Transport) {
	a.tuiProg = prog
	a.transport = t
}

// GenerateSession produces a complete session: script, narration, visual.
func (a *App) GenerateSession(ctx context.Context) (*session.Session, error) {
	sess := session.New(a.theme, a.voice)

	scr, err := a.svc.GenerateScript(ctx, a.theme)
	if err != nil {
		return nil, fmt.Errorf("generate session: %w", err)
	}
	sess.Script = scr

	speech, err := a.svc.GenerateSpeech(ctx, scr.FullText, a.voice)
	if err != nil {
		return nil, fmt.Errorf("generate session: %w", err)
	}
	sess.Audio = speech.Payload
	sess.AudioMime = speech.MimeType

	imageRef, err := a.svc.GenerateImage(ctx, a.visualPrompt(), "1024", "16:9")
	if err != nil {
		// A missing visual degrades the session, it does not fail it.
		log.Printf("Visual generation failed: %v", err)
	} else {
		sess.ImageRef = imageRef
	}

	log.Printf("Generated session %s: %q (%s, %s)", sess.ID, scr.Title, a.theme, a.voice)
	return sess, nil
}

// RunPlayer plays a session until the context ends or the user quits.
func (a *App) RunPlayer(ctx context.Context, sess *session.Session) error {
	sink, err := a.device.Acquire("player")
	if err != nil {
		return fmt.Errorf("run player: %w", err)
	}
	defer a.device.Release("player")

	p := player.New(sink)
	if err := p.Load(sess); err != nil {
		return fmt.Errorf("run player: %w", err)
	}
	defer p.Stop()

	p.OnProgress(func(prog player.Progress) {
		a.send(ui.ProgressMsg(prog))
	})
	a.send(ui.SessionMsg{Title: sess.Script.Title, Theme: sess.Theme, Voice: sess.Voice})

	voice := command.NewSession(a.svc, capture.NewExecSource(a.cfg.Capture.Command, a.cfg.Capture.SampleRate))

	if err := p.Play(0); err != nil {
		return fmt.Errorf("run player: %w", err)
	}

	if a.transport == nil {
		// Headless: play through to the end.
		return a.waitHeadless(ctx, p)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.transport.Quit:
			return nil
		case cmd := <-a.transport.Commands:
			a.handleCommand(ctx, cmd, p, voice, sess)
		}
	}
}

// waitHeadless ticks until playback finishes.
func (a *App) waitHeadless(ctx context.Context, p *player.Player) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if p.State() == player.StateStopped {
				return nil
			}
			log.Printf("Playing %.1f/%.1fs: %s", p.Elapsed(), p.Duration(), p.Caption())
		}
	}
}

func (a *App) handleCommand(ctx context.Context, cmd ui.Command, p *player.Player, voice *command.Session, sess *session.Session) {
	switch cmd {
	case ui.CmdToggle:
		switch p.State() {
		case player.StatePlaying:
			if err := p.Pause(); err != nil {
				log.Printf("Pause failed: %v", err)
			}
		case player.StatePaused:
			if err := p.Resume(); err != nil {
				log.Printf("Resume failed: %v", err)
			}
		default:
			if err := p.Play(0); err != nil {
				log.Printf("Play failed: %v", err)
			}
		}

	case ui.CmdStop:
		p.Stop()

	case ui.CmdVoiceStart:
		if err := voice.Recorder().Start(); err != nil {
			log.Printf("Voice capture failed: %v", err)
			a.send(ui.NoticeMsg("voice capture unavailable"))
			a.send(ui.RecordingMsg(false))
			return
		}
		a.send(ui.RecordingMsg(true))

	case ui.CmdVoiceStop:
		a.send(ui.RecordingMsg(false))
		pcm, err := voice.Recorder().Stop()
		if err != nil {
			log.Printf("Voice capture stop: %v", err)
			return
		}
		go a.interpretVoice(ctx, pcm, voice, p, sess)
	}
}

// interpretVoice resolves an utterance and applies its intent. Playback
// actions route through the one-shot latch so they fire exactly once.
func (a *App) interpretVoice(ctx context.Context, pcm []byte, voice *command.Session, p *player.Player, sess *session.Session) {
	intent, err := voice.Interpret(ctx, pcm)
	if err != nil {
		log.Printf("Voice command failed: %v", err)
		a.send(ui.NoticeMsg("voice command failed"))
		return
	}

	if intent.Transcript != "" {
		a.send(ui.NoticeMsg("heard: " + intent.Transcript))
	}
	if intent.Theme != "" {
		a.theme = intent.Theme
	}
	if intent.Voice != "" {
		a.voice = intent.Voice
	}

	if action, ok := voice.Latch().Take(); ok {
		switch action {
		case command.ActionPlay:
			if p.State() == player.StatePaused {
				p.Resume()
			} else if p.State() != player.StatePlaying {
				p.Play(0)
			}
		case command.ActionPause:
			p.Pause()
		case command.ActionStop:
			p.Stop()
		}
	}

	switch intent.Action {
	case command.ActionGenerateImage:
		a.generateVisual(ctx, sess)
	case command.ActionGenerateVideo:
		a.generateVideo(ctx, sess)
	}
}

func (a *App) generateVisual(ctx context.Context, sess *session.Session) {
	var ref string
	var err error
	if sess.ImageRef != "" {
		ref, err = a.svc.EditImage(ctx, sess.ImageRef, a.visualPrompt())
	} else {
		ref, err = a.svc.GenerateImage(ctx, a.visualPrompt(), "1024", "16:9")
	}
	if err != nil {
		log.Printf("Visual generation failed: %v", err)
		a.send(ui.NoticeMsg("image generation failed"))
		return
	}
	sess.ImageRef = ref
	a.send(ui.NoticeMsg("image ready"))
}

func (a *App) generateVideo(ctx context.Context, sess *session.Session) {
	a.send(ui.NoticeMsg("generating video..."))
	ref, err := a.svc.GenerateVideo(ctx, a.visualPrompt(), sess.ImageRef)
	if err != nil {
		log.Printf("Video generation failed: %v", err)
		a.send(ui.NoticeMsg("video generation failed"))
		return
	}
	sess.VideoRef = ref
	a.send(ui.NoticeMsg("video ready"))
}

func (a *App) visualPrompt() string {
	return fmt.Sprintf("A serene %s scene, soft light, calming atmosphere", a.theme)
}

// RunLive runs the duplex voice session until it ends or the context is
// cancelled.
func (a *App) RunLive(ctx context.Context) error {
	url := a.cfg.Live.GatewayURL
	if url == "" {
		if !a.cfg.Live.Discover {
			return fmt.Errorf("run live: no gateway URL configured")
		}
		gw, err := a.discoverGateway(ctx)
		if err != nil {
			return fmt.Errorf("run live: %w", err)
		}
		url = gw.URL()
	}

	sink, err := a.device.Acquire("live")
	if err != nil {
		return fmt.Errorf("run live: %w", err)
	}
	defer a.device.Release("live")

	ch, err := live.Dial(url)
	if err != nil {
		return fmt.Errorf("run live: %w", err)
	}

	src := capture.NewExecSource(a.cfg.Capture.Command, a.cfg.Capture.SampleRate)
	sess := live.NewSession(ch, sink, src)
	if err := sess.Open(); err != nil {
		return fmt.Errorf("run live: %w", err)
	}
	defer sess.Close()

	select {
	case <-ctx.Done():
		return nil
	case err := <-sess.Err():
		return fmt.Errorf("run live: %w", err)
	case <-sess.Done():
		return nil
	}
}

func (a *App) discoverGateway(ctx context.Context) (*discovery.GatewayInfo, error) {
	mgr := discovery.NewManager()
	mgr.Browse()
	defer mgr.Stop()

	select {
	case gw := <-mgr.Gateways():
		return gw, nil
	case <-time.After(10 * time.Second):
		return nil, fmt.Errorf("no live gateway found after 10s")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close releases the output device.
func (a *App) Close() {
	a.device.Close()
	if a.tuiProg != nil {
		a.tuiProg.Quit()
	}
}

func (a *App) send(msg tea.Msg) {
	if a.tuiProg != nil {
		a.tuiProg.Send(msg)
	}
}
