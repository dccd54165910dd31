// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	sferrors "sfkit/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresentError(t *testing.T) {
	assert.Empty(t, PresentError("connect", nil))
	got := PresentError("connect", errors.New("dial postgres://u:p@h/db"))
	assert.Equal(t, "connect: dial postgres://*:*@h/db", got)
}

func TestFormatOperationErrorByKind(t *testing.T) {
	tests := []struct {
		kind sferrors.Kind
		want string
	}{
		{sferrors.ConnectFailed, "Connection Failed"},
		{sferrors.NotConnected, "No Session"},
		{sferrors.StatementFailed, "Statement Failed"},
		{sferrors.ShardIO, "File Error"},
		{sferrors.InvalidArgument, "Invalid Arguments"},
		{sferrors.ConfirmationRequired, "--yes"},
		{sferrors.NotebookFailed, "left unchanged"},
		{sferrors.NotifyFailed, "webhook URL"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			out := FormatOperationError(sferrors.New(tt.kind, "boom"))
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "boom")
		})
	}

	out := FormatOperationError(sferrors.Wrap(sferrors.ConnectFailed, "connect", errors.New("password=hunter2 rejected")))
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, FormatOperationError(errors.New("plain")), "Error")
	assert.Empty(t, FormatOperationError(nil))
}

func TestNewLoggerWritesStateFile(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(false, dir)
	require.NoError(t, err)
	log.Info("hello")
	log.Debug("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewLoggerWithoutStateDir(t *testing.T) {
	log, err := NewLogger(false, "")
	require.NoError(t, err)
	assert.NotNil(t, log)
}
