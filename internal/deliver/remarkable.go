// Package deliver pushes the finished PDF onto the tablet over SSH,
// registering it with the device's document store so it appears in the
// UI without any companion app.
package deliver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/config"
	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
)

const (
	documentStoreDir = "/home/root/.local/share/remarkable/xochitl"
	sshPort          = "22"
	probeTimeout     = 3 * time.Second
	commandTimeout   = 20 * time.Second
)

// Uploader delivers rendered documents to one tablet, trying candidate
// hosts in order (the USB address usually comes first).
type Uploader struct {
	hosts   []string
	user    string
	keyPath string
}

func NewUploader(cfg config.DeviceConfig) *Uploader {
	return &Uploader{
		hosts:   cfg.Hosts,
		user:    cfg.User,
		keyPath: cfg.SSHKeyPath,
	}
}

// Probe returns the first host accepting TCP on the SSH port.
func (u *Uploader) Probe(ctx context.Context) (string, error) {
	d := net.Dialer{Timeout: probeTimeout}
	for _, host := range u.hosts {
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, sshPort))
		if err == nil {
			conn.Close()
			return host, nil
		}
		appLog.Warn("deliver: host unreachable", "host", host, "err", err)
	}
	return "", errors.New("no device host reachable")
}

// Upload pushes the PDF as a new document named visibleName, writing the
// store metadata alongside it and restarting the device UI to pick it up.
func (u *Uploader) Upload(ctx context.Context, pdfPath, visibleName string) error {
	host, err := u.Probe(ctx)
	if err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("deliver: read pdf: %w", err)
	}

	client, err := u.connect(host)
	if err != nil {
		return fmt.Errorf("deliver: connect %s: %w", host, err)
	}
	defer client.Close()

	docID := uuid.NewString()
	base := documentStoreDir + "/" + docID

	files := map[string][]byte{
		base + ".pdf":      pdf,
		base + ".metadata": documentMetadata(visibleName),
		base + ".content":  []byte(`{"fileType":"pdf"}`),
		base + ".pagedata": nil,
	}
	for path, data := range files {
		if err := writeRemoteFile(client, path, data); err != nil {
			return fmt.Errorf("deliver: write %s: %w", path, err)
		}
	}

	if err := runRemote(client, "systemctl restart xochitl"); err != nil {
		return fmt.Errorf("deliver: restart ui: %w", err)
	}

	appLog.Info("deliver: document uploaded", "host", host, "doc_id", docID, "name", visibleName)
	return nil
}

func (u *Uploader) connect(host string) (*ssh.Client, error) {
	keyData, err := os.ReadFile(u.keyPath)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}

	cfg := &ssh.ClientConfig{
		User: u.user,
		Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
		// The tablet regenerates its host key on factory reset and is
		// reached over a point-to-point USB network.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         commandTimeout,
	}
	return ssh.Dial("tcp", net.JoinHostPort(host, sshPort), cfg)
}

// writeRemoteFile streams data into path via a remote cat. The store
// directory always exists on a stock device.
func writeRemoteFile(client *ssh.Client, path string, data []byte) error {
	session, err := client.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	session.Stdin = strings.NewReader(string(data))
	return session.Run("cat > " + shellQuote(path))
}

func runRemote(client *ssh.Client, cmd string) error {
	session, err := client.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()
	return session.Run(cmd)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// documentMetadata builds the .metadata JSON the device UI indexes.
func documentMetadata(visibleName string) []byte {
	meta := map[string]any{
		"deleted":          false,
		"lastModified":     fmt.Sprint(time.Now().UnixMilli()),
		"metadatamodified": false,
		"modified":         false,
		"parent":           "",
		"pinned":           true,
		"synced":           false,
		"type":             "DocumentType",
		"version":          1,
		"visibleName":      visibleName,
	}
	data, _ := json.Marshal(meta)
	return data
}
