// Command waterfall renders a spectrogram PNG or JPEG from one .cf32
// capture file, the offline counterpart to cmd/sdrconsoled's live display.
package main

import (
	"fmt"
	"os"

	"github.com/skywave-radio/console/cmd/waterfall/app"
)

func main() {
	c, err := app.NewConfigFromCLI()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Render(c); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
