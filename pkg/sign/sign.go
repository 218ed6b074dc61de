// Package sign implements optional SSH-signature-format signing of commit
// and tag payloads, wrapping golang.org/x/crypto/ssh.
package sign

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

const signaturePrefix = "sshsig-v1"

// Signer signs a canonical object payload and returns the encoded
// signature string to store verbatim in object.Commit.GPGSig or to append
// to an annotated tag's message.
type Signer func(payload []byte) (string, error)

// NewSSHSigner loads a private key and returns a Signer plus the resolved
// key path. The key is resolved in order: keyPath if non-empty, then
// configSigningKey (a repository's core.signingkey, read via
// pkg/config.Config.Core.SigningKey), then the usual ~/.ssh candidates.
func NewSSHSigner(keyPath, configSigningKey string) (Signer, string, error) {
	resolved, err := resolveKeyPath(keyPath, configSigningKey)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("sign: read key %q: %w", resolved, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("sign: parse key %q: %w", resolved, err)
	}

	pubB64 := base64.StdEncoding.EncodeToString(signer.PublicKey().Marshal())

	sign := func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", fmt.Errorf("sign: %w", err)
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", signaturePrefix, sig.Format, pubB64, sigB64), nil
	}
	return sign, resolved, nil
}

// Verify checks an encoded signature string against payload using the
// given SSH public key (authorized_keys format).
func Verify(payload []byte, encoded string, authorizedKey []byte) error {
	parts := strings.SplitN(encoded, ":", 4)
	if len(parts) != 4 || parts[0] != signaturePrefix {
		return fmt.Errorf("sign: malformed signature %q", encoded)
	}
	format := parts[1]
	sigBlob, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return fmt.Errorf("sign: decode signature blob: %w", err)
	}

	pub, _, _, _, err := ssh.ParseAuthorizedKey(authorizedKey)
	if err != nil {
		return fmt.Errorf("sign: parse authorized key: %w", err)
	}

	sig := &ssh.Signature{Format: format, Blob: sigBlob}
	if err := pub.Verify(payload, sig); err != nil {
		return fmt.Errorf("sign: verify: %w", err)
	}
	return nil
}

func resolveKeyPath(path, configSigningKey string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		return expandUserPath(path)
	}

	configSigningKey = strings.TrimSpace(configSigningKey)
	if configSigningKey != "" {
		return expandUserPath(configSigningKey)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("sign: resolve home dir: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
	for _, candidate := range candidates {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("sign: no default SSH private key found in ~/.ssh")
}

func expandUserPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("sign: resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
