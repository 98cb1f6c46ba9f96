package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// PEMRSASigner implements RSASigner interface with a PEM encoded RSA key
type PEMRSASigner struct {
	privateKey *rsa.PrivateKey
}

// NewPEMRSASigner creates a new RSA signer from a private key file
func NewPEMRSASigner(keyPath, passphrase string) (*PEMRSASigner, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("key path is empty")
	}

	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	der := block.Bytes

	//nolint:staticcheck // legacy encrypted PEM keys are still produced by openssl
	if x509.IsEncryptedPEMBlock(block) {
		if passphrase == "" {
			return nil, fmt.Errorf("key is encrypted but no passphrase provided")
		}

		//nolint:staticcheck
		der, err = x509.DecryptPEMBlock(block, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt key: %w", err)
		}
	}

	privateKey, err := parseRSAPrivateKey(der)
	if err != nil {
		return nil, err
	}

	return NewRSASignerFromKey(privateKey), nil
}

// NewRSASignerFromKey creates a signer around an existing key
func NewRSASignerFromKey(key *rsa.PrivateKey) *PEMRSASigner {
	return &PEMRSASigner{privateKey: key}
}

// parseRSAPrivateKey tries to parse RSA private key in PKCS1 or PKCS8 format
func parseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS1PrivateKey(data)
	if err == nil {
		return key, nil
	}

	parsedKey, err := x509.ParsePKCS8PrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	rsaKey, ok := parsedKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key is not an RSA private key")
	}

	return rsaKey, nil
}

// SignRSA creates an RSA PKCS1v15 signature over the SHA-256 digest of data
func (s *PEMRSASigner) SignRSA(data []byte) ([]byte, error) {
	hashed := sha256.Sum256(data)

	signature, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA256, hashed[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	return signature, nil
}

// VerifyRSA checks a signature produced by SignRSA
func (s *PEMRSASigner) VerifyRSA(data, signature []byte) error {
	hashed := sha256.Sum256(data)

	if err := rsa.VerifyPKCS1v15(&s.privateKey.PublicKey, crypto.SHA256, hashed[:], signature); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}

// GetPublicKey returns the public key in PEM format
func (s *PEMRSASigner) GetPublicKey() ([]byte, error) {
	pubKeyBytes, err := x509.MarshalPKIXPublicKey(&s.privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubKeyBytes,
	}), nil
}
