package app

import (
	"log"

	"github.com/ayusman/soulfree/internal/config"
	"github.com/ayusman/soulfree/internal/gesture"
	"github.com/ayusman/soulfree/internal/interaction"
	"github.com/ayusman/soulfree/internal/journal"
)

// Snapshot is the observable outcome of the latest tick.
type Snapshot struct {
	Frame    gesture.Frame     `json:"frame"`
	State    interaction.State `json:"state"`
	Status   string            `json:"status"`
	Tracking bool              `json:"tracking"`
	Session  string            `json:"session,omitempty"`
	Ticks    uint64            `json:"ticks"`
}

// Tick is the per-display-frame callback. It processes at most one new
// camera frame, updates the interaction state and advances the animation.
// Tick must not be called concurrently with itself.
func (a *App) Tick() Snapshot {
	a.tickMu.Lock()
	defer a.tickMu.Unlock()

	cfg := a.tunables.Snapshot()
	fresh := a.observe(cfg)

	state, transitions := a.machine.Update(a.current, a.anim)
	a.record(transitions)
	a.anim.Step(state, cfg, a.config.Now().Sub(a.started))

	a.mu.Lock()
	snap := Snapshot{
		Frame:    a.current,
		State:    state,
		Status:   a.status,
		Tracking: a.tracking,
		Session:  a.session,
		Ticks:    a.snapshot.Ticks + 1,
	}
	a.snapshot = snap
	var listeners []func(Snapshot)
	if fresh {
		listeners = append(listeners, a.frameListeners...)
	}
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

// observe runs detection on the newest frame if its timestamp has not been
// seen. It reports whether a new observation replaced the current one.
func (a *App) observe(cfg config.Render) bool {
	a.mu.RLock()
	feed, d := a.feed, a.detector
	a.mu.RUnlock()
	if feed == nil || d == nil {
		if len(a.current.Hands) == 0 {
			return false
		}
		a.current = gesture.Frame{}
		a.haveFrame = false
		return true
	}

	ts, ok := feed.LatestTimestamp()
	if !ok || (a.haveFrame && ts == a.lastTimestamp) {
		return false
	}
	frame, ok := feed.Latest()
	if !ok {
		return false
	}
	defer frame.Close()

	a.lastTimestamp = frame.Timestamp
	a.haveFrame = true

	if moved, _ := a.motion.Detect(frame.Mat); !moved {
		return false
	}

	hands, err := d.Detect(frame.Mat)
	if err != nil {
		if !a.detectFailing {
			log.Printf("Detection failed: %v", err)
			a.detectFailing = true
		}
		hands = nil
	} else if a.detectFailing {
		log.Println("Detection recovered")
		a.detectFailing = false
	}

	a.current = gesture.ClassifyFrame(frame.Timestamp, hands, cfg.PinchSensitivity)
	if len(a.current.Hands) > 0 {
		a.setStatus(StatusHand)
	} else {
		a.setStatus(StatusNoHand)
	}
	return true
}

func (a *App) record(transitions []interaction.Transition) {
	if len(transitions) == 0 {
		return
	}
	session := a.SessionID()
	for _, t := range transitions {
		log.Printf("Transition: %s", t)
		if a.journal == nil || session == "" {
			continue
		}
		e := &journal.Entry{
			SessionID: session,
			Kind:      string(t.Kind),
			From:      string(t.From),
			To:        string(t.To),
			CardID:    t.CardID,
			Frame:     a.current.Timestamp,
		}
		if err := a.journal.Transitions().Append(e); err != nil {
			log.Printf("Error recording transition: %v", err)
		}
	}
}

// Snapshot returns the outcome of the latest tick.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.snapshot
	s.Status = a.status
	s.Tracking = a.tracking
	return s
}

// OnFrame registers fn to be called after every tick that processed a new
// observation.
func (a *App) OnFrame(fn func(Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frameListeners = append(a.frameListeners, fn)
}
