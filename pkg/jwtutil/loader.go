package jwtutil

import (
	"fmt"
	"time"
)

// LoadAndBuild reads both halves of the signing key pair.
func LoadAndBuild(cfg JWTConfig, ttl time.Duration) (*Generator, *Verifier, error) {
	priv, err := LoadRSAPrivateKeyFromPEM(cfg.PrivPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load private key from %s: %w", cfg.PrivPath, err)
	}

	pub := &priv.PublicKey
	if cfg.PubPath != "" {
		if pub, err = LoadRSAPublicKeyFromPEM(cfg.PubPath); err != nil {
			return nil, nil, fmt.Errorf("load public key from %s: %w", cfg.PubPath, err)
		}
	}

	gen := NewGenerator(priv, cfg.Issuer, cfg.Audience, cfg.KeyID, ttl)
	ver := NewVerifier(pub, cfg.Issuer, cfg.Audience, cfg.KeyID)
	return gen, ver, nil
}
