package sync

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/kandev/tt/internal/ingest"
)

// PullConfig names a remote host's append-only event log to pull from.
type PullConfig struct {
	Host         string
	Port         int
	User         string
	IdentityFile string
	RemotePath   string
	Timeout      time.Duration
}

const defaultSSHPort = 22

func (c PullConfig) addr() string {
	port := c.Port
	if port == 0 {
		port = defaultSSHPort
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

func (c PullConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 30 * time.Second
}

// Pull SSH-dials the remote host, opens its append-only event log
// over SFTP, and streams it through the ordinary line-oriented ingest
// path (§6.1.1), which is idempotent by event id and already skips
// malformed lines -- a remote log is just another NDJSON source.
func Pull(cfg PullConfig, in *ingest.Ingester) (ingest.Stats, error) {
	key, err := os.ReadFile(cfg.IdentityFile)
	if err != nil {
		return ingest.Stats{}, fmt.Errorf("sync.Pull: reading identity file: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return ingest.Stats{}, fmt.Errorf("sync.Pull: parsing identity file: %w", err)
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.timeout(),
	}

	conn, err := ssh.Dial("tcp", cfg.addr(), clientCfg)
	if err != nil {
		return ingest.Stats{}, fmt.Errorf("sync.Pull: dialing %s: %w", cfg.addr(), err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return ingest.Stats{}, fmt.Errorf("sync.Pull: opening sftp session: %w", err)
	}
	defer client.Close()

	remote, err := client.Open(cfg.RemotePath)
	if err != nil {
		return ingest.Stats{}, fmt.Errorf("sync.Pull: opening remote log %s: %w", cfg.RemotePath, err)
	}
	defer remote.Close()

	return in.IngestNDJSON(remote)
}
