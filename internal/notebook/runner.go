// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package notebook executes Jupyter notebooks end to end and writes the executed
// document, outputs included, back to its original path.
//
// Cells run without a time limit. A failing cell aborts the run and the file on
// disk is left as it was.
package notebook

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	sferrors "sfkit/cli/internal/errors"

	"go.uber.org/zap"
)

// Executor runs every cell of a notebook with workDir as the kernel's working
// directory and returns the executed document.
type Executor interface {
	Execute(ctx context.Context, doc *Document, workDir string) (*Document, error)
}

// NbconvertExecutor executes notebooks with `jupyter nbconvert`.
type NbconvertExecutor struct {
	// Command is the jupyter executable. Defaults to "jupyter".
	Command string
}

// Execute writes doc to a hidden temporary file inside workDir, so the kernel
// starts there, and runs nbconvert on it in place.
func (e NbconvertExecutor) Execute(ctx context.Context, doc *Document, workDir string) (*Document, error) {
	command := e.Command
	if command == "" {
		command = "jupyter"
	}
	f, err := os.CreateTemp(workDir, ".sfkit-run-*.ipynb")
	if err != nil {
		return nil, fmt.Errorf("create working copy: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if err := f.Close(); err != nil {
		return nil, err
	}
	if err := doc.Save(tmp); err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, "nbconvert",
		"--to", "notebook",
		"--execute",
		"--inplace",
		"--ExecutePreprocessor.timeout=-1",
		filepath.Base(tmp))
	cmd.Dir = workDir
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s nbconvert: %w: %s", command, err, lastLines(stderr.String(), 20))
	}
	return Load(tmp)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

type runConfig struct {
	executor Executor
	workDir  string
	log      *zap.Logger
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithExecutor replaces the nbconvert executor.
func WithExecutor(e Executor) RunOption {
	return func(c *runConfig) {
		if e != nil {
			c.executor = e
		}
	}
}

// WithWorkDir sets the kernel working directory. Defaults to ".".
func WithWorkDir(dir string) RunOption {
	return func(c *runConfig) {
		if dir != "" {
			c.workDir = dir
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// Run loads the notebook at path, executes it and overwrites path with the
// executed document. Nothing is written when loading or execution fails.
func Run(ctx context.Context, path string, opts ...RunOption) error {
	cfg := runConfig{executor: NbconvertExecutor{}, workDir: ".", log: zap.NewNop()}
	for _, o := range opts {
		o(&cfg)
	}

	doc, err := Load(path)
	if err != nil {
		cfg.log.Error("load notebook", zap.String("path", path), zap.Error(err))
		return sferrors.Wrap(sferrors.NotebookFailed, "error loading notebook "+path, err)
	}
	cfg.log.Info("executing notebook", zap.String("path", path), zap.Int("cells", len(doc.Cells())))

	out, err := cfg.executor.Execute(ctx, doc, cfg.workDir)
	if err != nil {
		cfg.log.Error("execute notebook", zap.String("path", path), zap.Error(err))
		return sferrors.Wrap(sferrors.NotebookFailed, "error executing notebook "+path, err)
	}
	if err := out.Save(path); err != nil {
		cfg.log.Error("save notebook", zap.String("path", path), zap.Error(err))
		return sferrors.Wrap(sferrors.NotebookFailed, "error saving notebook "+path, err)
	}
	cfg.log.Info("notebook executed", zap.String("path", path))
	return nil
}
