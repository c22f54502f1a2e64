package docker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// message is one JSON line of a daemon build or pull stream.
type message struct {
	Stream string `json:"stream"`
	Status string `json:"status"`
	ID     string `json:"id"`
	Error  string `json:"error"`
}

// streamBuild copies build output to out, turning embedded daemon
// errors into a returned error.
func streamBuild(r io.Reader, out io.Writer) error {
	dec := json.NewDecoder(r)
	for {
		var m message
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode build output: %w", err)
		}
		if m.Error != "" {
			return fmt.Errorf("build failed: %s", m.Error)
		}
		if m.Stream != "" {
			fmt.Fprint(out, m.Stream)
		}
	}
}

// streamPull consumes pull output, driving a spinner with the layer
// status lines.
func streamPull(r io.Reader, image string) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Pulling "+image),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	defer bar.Finish()

	dec := json.NewDecoder(r)
	for {
		var m message
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode pull output: %w", err)
		}
		if m.Error != "" {
			return fmt.Errorf("pull failed: %s", m.Error)
		}
		if m.Status != "" {
			bar.Describe(fmt.Sprintf("Pulling %s: %s", image, m.Status))
		}
		_ = bar.Add(1)
	}
}
