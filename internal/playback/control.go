package playback

// Command is a request from a control surface. Commands are queued and
// applied by the engine at its next iteration.
type Command int

const (
	CmdPlay Command = iota
	CmdPause
	CmdToggle
	CmdNext
	CmdPrev
)

func (c Command) String() string {
	switch c {
	case CmdPlay:
		return "play"
	case CmdPause:
		return "pause"
	case CmdToggle:
		return "toggle"
	case CmdNext:
		return "next"
	case CmdPrev:
		return "prev"
	default:
		return "unknown"
	}
}

// Controller is the surface display layers drive playback through. Every
// call returns immediately.
type Controller interface {
	Play()
	Pause()
	Toggle()
	RequestNext()
	RequestPrev()

	State() State
	CurrentTrack() *Track
	NextTrack() *Track
	Subscribe() *Subscription
}

var _ Controller = (*Engine)(nil)

func (e *Engine) Play()        { e.send(CmdPlay) }
func (e *Engine) Pause()       { e.send(CmdPause) }
func (e *Engine) Toggle()      { e.send(CmdToggle) }
func (e *Engine) RequestNext() { e.send(CmdNext) }
func (e *Engine) RequestPrev() { e.send(CmdPrev) }

func (e *Engine) send(cmd Command) {
	select {
	case e.commands <- cmd:
	default:
		e.log.Warn("command queue full, dropping", "command", cmd.String())
	}
}

// apply runs on the engine goroutine.
func (e *Engine) apply(cmd Command) {
	switch cmd {
	case CmdPlay:
		e.resume()
	case CmdPause:
		e.setPaused(true)
	case CmdToggle:
		if e.paused {
			e.resume()
		} else {
			e.setPaused(true)
		}
	case CmdNext:
		e.nextPending = true
	case CmdPrev:
		e.prevPending = true
	}
}

func (e *Engine) resume() {
	if e.current == nil {
		e.log.Debug("nothing to play")
		return
	}
	e.setPaused(false)
}
