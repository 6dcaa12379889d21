package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// runner runs an external tool and returns its standard output
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	output, err := exec.CommandContext(ctx, name, args...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		if len(stderr) > 500 {
			stderr = stderr[len(stderr)-500:]
		}
		return output, fmt.Errorf("%s: %w: %s", name, err, stderr)
	}
	return output, err
}
