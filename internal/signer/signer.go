package signer

// Signer interface for OpenPGP signing of manifests
type Signer interface {
	// SignCleartext creates a cleartext signature embedding the manifest
	SignCleartext(data []byte) ([]byte, error)

	// SignDetached creates an armored detached signature
	SignDetached(data []byte) ([]byte, error)

	// VerifyDetached checks an armored detached signature against data
	VerifyDetached(data, signature []byte) error

	// GetPublicKey returns the public key
	GetPublicKey() ([]byte, error)
}

// RSASigner interface for raw RSA manifest signatures
type RSASigner interface {
	// SignRSA creates an RSA PKCS1v15 signature
	SignRSA(data []byte) ([]byte, error)

	// VerifyRSA checks an RSA PKCS1v15 signature against data
	VerifyRSA(data, signature []byte) error

	// GetPublicKey returns the public key
	GetPublicKey() ([]byte, error)
}
