package consumer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// InheritedFD is the descriptor number under which worker processes find the
// shared device handle (the first entry of exec.Cmd.ExtraFiles).
const InheritedFD = 3

// ProcessSpawner runs each worker as a separate OS process by re-executing
// Path with Args followed by "--fd 3 --worker <n>". The shared device handle
// File is passed to the child, which writes one Report to stdout and exits.
type ProcessSpawner struct {
	Path string
	Args []string
	File *os.File
	// Env is appended to the parent environment.
	Env []string
	// Stderr receives the children's stderr. Defaults to os.Stderr.
	Stderr io.Writer
}

type processHandle struct {
	worker int
	cmd    *exec.Cmd
	stdout *bytes.Buffer
}

// Spawn implements Spawner. Workers are not bound to ctx once started: a
// spawned worker always runs to completion.
func (s *ProcessSpawner) Spawn(ctx context.Context, worker int) (Handle, error) {
	if s.File == nil {
		return nil, errors.New("no device handle to share")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		path = exe
	}
	args := append(append([]string{}, s.Args...), "--fd", strconv.Itoa(InheritedFD), "--worker", strconv.Itoa(worker))
	cmd := exec.Command(path, args...)
	cmd.ExtraFiles = []*os.File{s.File}
	cmd.Env = append(os.Environ(), s.Env...)
	stdout := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &processHandle{worker: worker, cmd: cmd, stdout: stdout}, nil
}

// Wait reaps the child and decodes its report. A child that exits non-zero
// is a Failure even if its report claims otherwise.
func (h *processHandle) Wait() Outcome {
	waitErr := h.cmd.Wait()
	out, err := ReadReport(h.stdout)
	switch {
	case err != nil && waitErr != nil:
		out = Failure(fmt.Errorf("worker exited: %w (%v)", waitErr, err))
	case err != nil:
		out = Failure(err)
	case waitErr != nil && out.OK():
		out = Failure(fmt.Errorf("worker exited: %w", waitErr))
	}
	out.Worker = h.worker
	return out
}
