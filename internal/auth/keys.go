package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/google/uuid"
)

// SigningKeyFromSeed decodes a standard base64 Ed25519 seed.
func SigningKeyFromSeed(encoded string) (ed25519.PrivateKey, error) {
	seed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode ed25519 seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func GenerateSigningKey() (ed25519.PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return key, nil
}

// keyID is stable for a given public key so restarts with the same seed keep
// issuing tokens that resolve against previously published key sets.
func keyID(pub ed25519.PublicKey) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, pub).String()
}

func newKeySet(ctx context.Context, pub ed25519.PublicKey) (keyfunc.Keyfunc, string, error) {
	kid := keyID(pub)

	jwk, err := jwkset.NewJWKFromKey(pub, jwkset.JWKOptions{
		Metadata: jwkset.JWKMetadataOptions{
			ALG: jwkset.AlgEdDSA,
			KID: kid,
			USE: jwkset.UseSig,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("build jwk: %w", err)
	}

	storage := jwkset.NewMemoryStorage()
	if err := storage.KeyWrite(ctx, jwk); err != nil {
		return nil, "", fmt.Errorf("store jwk: %w", err)
	}

	kf, err := keyfunc.New(keyfunc.Options{
		Ctx:     context.WithoutCancel(ctx),
		Storage: storage,
	})
	if err != nil {
		return nil, "", fmt.Errorf("build keyfunc: %w", err)
	}

	return kf, kid, nil
}
