package app

import "log"

// Status strings published on the status channel.
const (
	StatusInitializing  = "Initializing..."
	StatusLoadingModels = "Loading models..."
	StatusModelsLoaded  = "Models loaded. Starting camera..."
	StatusCameraReady   = "Camera ready. Detecting hands..."
	StatusHand          = "Hand Detected"
	StatusNoHand        = "No Hand Detected"
	StatusModelError    = "Error loading models."
	StatusCameraDenied  = "Webcam access denied."
	StatusStopped       = "Stopped."
)

// setStatus publishes a status string. Listeners run outside the lock and
// only when the status actually changes.
func (a *App) setStatus(status string) {
	a.mu.Lock()
	if a.status == status {
		a.mu.Unlock()
		return
	}
	a.status = status
	session := a.session
	listeners := append([]func(string){}, a.statusListeners...)
	a.mu.Unlock()

	log.Printf("Status: %s", status)

	if a.journal != nil && session != "" {
		if err := a.journal.Sessions().SetStatus(session, status); err != nil {
			log.Printf("Error recording status: %v", err)
		}
	}

	for _, fn := range listeners {
		fn(status)
	}
}

// Status returns the current status string.
func (a *App) Status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// OnStatus registers fn to be called on every status change.
func (a *App) OnStatus(fn func(status string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statusListeners = append(a.statusListeners, fn)
}
