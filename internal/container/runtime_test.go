// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	onPath   map[string]bool
	succeeds map[string]bool
	piped    func(name string, args []string, stdin io.Reader, stdout io.Writer) error
	lastArgs []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if f.succeeds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (f *fakeExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.lastArgs = args
	if f.piped != nil {
		return f.piped(name, args, stdin, stdout)
	}
	return nil
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		exec     *fakeExecutor
		wantName string
		wantErr  bool
	}{
		{
			name:     "docker available",
			exec:     &fakeExecutor{onPath: map[string]bool{"docker": true}, succeeds: map[string]bool{"docker info": true}},
			wantName: "docker",
		},
		{
			name:     "podman when docker missing",
			exec:     &fakeExecutor{onPath: map[string]bool{"podman": true}, succeeds: map[string]bool{"podman info": true}},
			wantName: "podman",
		},
		{
			name:     "docker daemon down",
			exec:     &fakeExecutor{onPath: map[string]bool{"docker": true, "podman": true}, succeeds: map[string]bool{"podman info": true}},
			wantName: "podman",
		},
		{
			name:    "neither",
			exec:    &fakeExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detect(context.Background(), tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	x := &fakeExecutor{succeeds: map[string]bool{
		"docker image inspect pdftotext:latest": true,
		"podman image exists pdftotext:latest":  true,
	}}
	assert.NoError(t, newDocker(x).ImageExists(context.Background(), "pdftotext:latest"))
	assert.NoError(t, newPodman(x).ImageExists(context.Background(), "pdftotext:latest"))

	err := newDocker(x).ImageExists(context.Background(), "missing:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing:1")
}

func TestRun(t *testing.T) {
	x := &fakeExecutor{piped: func(name string, _ []string, stdin io.Reader, stdout io.Writer) error {
		data, _ := io.ReadAll(stdin)
		_, err := stdout.Write([]byte(name + ": " + string(data)))
		return err
	}}

	var out bytes.Buffer
	err := newPodman(x).Run(context.Background(), "pdftotext:latest", []string{"-", "-"}, strings.NewReader("%PDF"), &out)
	require.NoError(t, err)
	assert.Equal(t, "podman: %PDF", out.String())
	assert.Equal(t, []string{"run", "--rm", "-i", "--network", "none", "pdftotext:latest", "-", "-"}, x.lastArgs)
}

func TestRunError(t *testing.T) {
	x := &fakeExecutor{piped: func(string, []string, io.Reader, io.Writer) error {
		return errors.New("exit status 1")
	}}
	err := newDocker(x).Run(context.Background(), "pdftotext:latest", nil, strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running docker container pdftotext:latest")
}
