package powershell

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"golang.org/x/text/encoding/unicode"
)

// Runner executes PowerShell scripts.
type Runner interface {
	// Run executes script and returns its standard output.
	Run(ctx context.Context, script string) ([]byte, error)
	// Start executes script in the background. Closing the returned reader
	// ends the process.
	Start(script string) (io.ReadCloser, error)
}

// ExecRunner runs scripts with a local PowerShell executable.
type ExecRunner struct {
	Executable string
}

func (r ExecRunner) args(script string) ([]string, error) {
	// -EncodedCommand takes base64 of the UTF-16LE script and avoids every
	// quoting issue of the command line.
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(script)
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	return []string{
		"-NoProfile",
		"-NonInteractive",
		"-ExecutionPolicy", "Bypass",
		"-EncodedCommand", base64.StdEncoding.EncodeToString([]byte(encoded)),
	}, nil
}

func (r ExecRunner) Run(ctx context.Context, script string) ([]byte, error) {
	args, err := r.args(script)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, r.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return out, fmt.Errorf("%s: %w: %s", r.Executable, err, bytes.TrimSpace(stderr.Bytes()))
		}
		return out, fmt.Errorf("%s: %w", r.Executable, err)
	}
	return out, nil
}

func (r ExecRunner) Start(script string) (io.ReadCloser, error) {
	args, err := r.args(script)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(r.Executable, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Executable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s: %w", r.Executable, err)
	}
	return &process{ReadCloser: stdout, cmd: cmd}, nil
}

type process struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *process) Close() error {
	_ = p.ReadCloser.Close()
	_ = p.cmd.Process.Kill()
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && !exitErr.Exited() {
		// killed after the script finished its work
		return nil
	}
	return err
}
