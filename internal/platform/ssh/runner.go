package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Runner adapts Client to the provisioning runner interface. Every host
// operation becomes a remote shell command; file transfer goes through
// stdin rather than SFTP to keep the remote requirements at /bin/sh.
type Runner struct {
	client *Client
}

// NewRunner wraps an SSH client as a provisioning runner.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client}
}

// Run executes a command on the remote host and returns its combined output.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	session, err := r.client.session(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = session.Close() }()

	command := commandLine(name, args)
	output, err := session.CombinedOutput(command)
	if err != nil {
		return output, fmt.Errorf("remote command %q failed: %w (output: %s)",
			command, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// ReadFile reads a remote file.
func (r *Runner) ReadFile(ctx context.Context, filePath string) ([]byte, error) {
	output, err := r.Run(ctx, "cat", filePath)
	if err != nil {
		return nil, fmt.Errorf("reading remote file %s: %w", filePath, err)
	}
	return output, nil
}

// WriteFile writes a remote file, creating parent directories. Content is
// streamed over stdin so arbitrary bytes survive the shell boundary.
func (r *Runner) WriteFile(ctx context.Context, filePath string, data []byte, perm fs.FileMode) error {
	session, err := r.client.session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	session.Stdin = bytes.NewReader(data)
	command := fmt.Sprintf("mkdir -p %s && cat > %s && chmod %o %s",
		shellQuote(path.Dir(filePath)), shellQuote(filePath), perm.Perm(), shellQuote(filePath))

	if output, err := session.CombinedOutput(command); err != nil {
		return fmt.Errorf("writing remote file %s: %w (output: %s)",
			filePath, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// FileExists reports whether a remote path exists.
func (r *Runner) FileExists(ctx context.Context, filePath string) (bool, error) {
	session, err := r.client.session(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = session.Close() }()

	err = session.Run("test -e " + shellQuote(filePath))
	if err == nil {
		return true, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("checking remote path %s: %w", filePath, err)
}

// LookPath resolves a binary on the remote PATH.
func (r *Runner) LookPath(ctx context.Context, name string) (string, error) {
	output, err := r.Run(ctx, "command", "-v", name)
	if err != nil {
		return "", fmt.Errorf("%s not found on remote PATH", name)
	}
	return strings.TrimSpace(string(output)), nil
}

// commandLine renders a command and its arguments as a single shell line.
func commandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(name))
	for _, arg := range args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// shellQuote single-quotes a string for /bin/sh, escaping embedded quotes.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'\\$`&|;<>(){}*?#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
