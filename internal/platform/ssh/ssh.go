// Package ssh provides a provisioning runner that executes the pipeline's
// host operations on a remote machine over SSH. Connections use key-based
// authentication and are established lazily with bounded retry, since a
// freshly created host may not accept connections immediately.
package ssh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/kubeuno/kubeuno/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 10
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds the SSH connection parameters.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout bounds the TCP handshake. Zero means defaultDialTimeout.
	DialTimeout time.Duration

	// MaxRetries and RetryDelay bound the connection retry loop.
	MaxRetries int
	RetryDelay time.Duration

	// HostKeyCallback verifies the remote host key. Nil falls back to
	// ssh.InsecureIgnoreHostKey, acceptable for hosts the operator just
	// created and controls.
	HostKeyCallback ssh.HostKeyCallback
}

// Client holds a lazily established SSH connection and runs commands
// through it.
type Client struct {
	config *Config
	signer ssh.Signer

	mu   sync.Mutex
	conn *ssh.Client
}

// NewClient validates the configuration and parses the private key. No
// connection is made until the first command runs.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ssh config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("ssh host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("ssh user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("ssh private key cannot be empty")
	}

	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh private key: %w", err)
	}

	return &Client{config: &configCopy, signer: signer}, nil
}

// Close tears down the connection if one was established.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// session returns a new session on the shared connection, dialing with
// retry on first use.
func (c *Client) session(ctx context.Context) (*ssh.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, err := c.dial(ctx)
		if err != nil {
			return nil, err
		}
		c.conn = conn
	}

	session, err := c.conn.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open ssh session on %s: %w", c.config.Host, err)
	}
	return session, nil
}

func (c *Client) dial(ctx context.Context) (*ssh.Client, error) {
	clientConfig := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	var conn *ssh.Client

	err := retry.Do(ctx, func() error {
		var dialErr error
		conn, dialErr = ssh.Dial("tcp", addr, clientConfig)
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish ssh connection to %s: %w", addr, err)
	}
	return conn, nil
}
