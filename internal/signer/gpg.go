package signer

import (
	"bytes"
	"crypto"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// GPGSigner implements Signer interface using OpenPGP
type GPGSigner struct {
	entity *openpgp.Entity
	config *packet.Config
}

// NewGPGSigner creates a new GPG signer from a private key file
func NewGPGSigner(keyPath, passphrase string) (*GPGSigner, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("key path is empty")
	}

	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	entity, err := readEntity(keyData)
	if err != nil {
		return nil, err
	}

	if passphrase != "" {
		if err := decryptEntity(entity, []byte(passphrase)); err != nil {
			return nil, err
		}
	}

	return NewGPGSignerFromEntity(entity), nil
}

// NewGPGSignerFromEntity creates a signer around an already decrypted entity
func NewGPGSignerFromEntity(entity *openpgp.Entity) *GPGSigner {
	return &GPGSigner{
		entity: entity,
		config: &packet.Config{DefaultHash: crypto.SHA512},
	}
}

// readEntity parses the first entity of an armored or binary key ring
func readEntity(keyData []byte) (*openpgp.Entity, error) {
	entityList, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(keyData))
	if err != nil {
		entityList, err = openpgp.ReadKeyRing(bytes.NewReader(keyData))
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entityList) == 0 {
		return nil, fmt.Errorf("no keys found in key file")
	}

	return entityList[0], nil
}

func decryptEntity(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("failed to decrypt private key: %w", err)
		}
	}

	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
			if err := subkey.PrivateKey.Decrypt(passphrase); err != nil {
				return fmt.Errorf("failed to decrypt subkey: %w", err)
			}
		}
	}

	return nil
}

// SignCleartext creates a cleartext signature of the manifest
func (s *GPGSigner) SignCleartext(data []byte) ([]byte, error) {
	var sigBuf bytes.Buffer
	err := openpgp.ArmoredDetachSignText(&sigBuf, s.entity, bytes.NewReader(data), s.config)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	return createCleartextSignature(data, sigBuf.Bytes()), nil
}

// SignDetached creates a detached signature (manifest.yaml.asc)
func (s *GPGSigner) SignDetached(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), s.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create detached signature: %w", err)
	}

	return buf.Bytes(), nil
}

// VerifyDetached checks a detached signature made by this signer's key
func (s *GPGSigner) VerifyDetached(data, signature []byte) error {
	keyring := openpgp.EntityList{s.entity}

	_, err := openpgp.CheckArmoredDetachedSignature(keyring, bytes.NewReader(data), bytes.NewReader(signature), s.config)
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}

// GetPublicKey returns the public key in armored format
func (s *GPGSigner) GetPublicKey() ([]byte, error) {
	var buf bytes.Buffer

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, err
	}

	if err := s.entity.Serialize(w); err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// createCleartextSignature creates a PGP cleartext signature format
func createCleartextSignature(message, signature []byte) []byte {
	var buf bytes.Buffer

	buf.WriteString("-----BEGIN PGP SIGNED MESSAGE-----\n")
	buf.WriteString("Hash: SHA512\n")
	buf.WriteString("\n")
	writeDashEscaped(&buf, message)
	if !bytes.HasSuffix(message, []byte("\n")) {
		buf.WriteString("\n")
	}
	buf.Write(signature)

	return buf.Bytes()
}

// writeDashEscaped escapes lines starting with a dash as RFC 4880 requires
func writeDashEscaped(w io.Writer, message []byte) {
	lines := bytes.SplitAfter(message, []byte("\n"))
	for _, line := range lines {
		if bytes.HasPrefix(line, []byte("-")) {
			w.Write([]byte("- "))
		}
		w.Write(line)
	}
}
