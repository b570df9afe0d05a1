package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/soulfree/internal/capture"
)

// StreamInterval paces the MJPEG preview at about 15 FPS.
const StreamInterval = 66 * time.Millisecond

// Previewer returns a copy of the newest camera frame.
type Previewer interface {
	Preview() (capture.Frame, error)
}

// StreamHandler serves MJPEG frames from the camera preview.
type StreamHandler struct {
	source Previewer
}

// NewStreamHandler creates a new StreamHandler over the given preview source.
func NewStreamHandler(source Previewer) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams MJPEG frames to connected clients. Frames already sent
// are skipped.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	var last time.Duration
	sent := false
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame, err := h.source.Preview()
		if err != nil {
			continue
		}
		if sent && frame.Timestamp == last {
			frame.Close()
			continue
		}

		buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame.Mat)
		frame.Close()
		if err != nil {
			continue
		}
		last, sent = frame.Timestamp, true

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
